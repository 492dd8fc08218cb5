package camera

// Zoom eases the view scale (pixels per meter) toward a target over a
// fixed number of frames.
//
// A request computes a linear increment; Update applies it until the step
// budget is spent, then the zoom settles and target snaps to current.
type Zoom struct {
	Current   float64
	Target    float64
	Increment float64
	Counter   int
	Steps     int

	Min, Max float64
}

// NewZoom creates a settled zoom.
func NewZoom(current, minZoom, maxZoom float64, steps int) Zoom {
	if steps < 1 {
		steps = 1
	}
	z := Zoom{Current: current, Target: current, Steps: steps, Min: minZoom, Max: maxZoom}
	z.clamp()
	z.Target = z.Current
	return z
}

// Request starts easing toward target.
func (z *Zoom) Request(target float64) {
	z.Target = target
	z.Increment = (target - z.Current) / float64(z.Steps)
	z.Counter = 0
}

// ZoomBy multiplies the pending target by factor.
func (z *Zoom) ZoomBy(factor float64) {
	t := clamp(z.Target*factor, z.Min, z.Max)
	z.Request(t)
}

// Set jumps to zoom immediately.
func (z *Zoom) Set(zoom float64) {
	z.Current = zoom
	z.clamp()
	z.Target = z.Current
	z.Increment = 0
	z.Counter = 0
}

// Settled reports whether no easing is in progress.
func (z *Zoom) Settled() bool {
	return z.Target == z.Current
}

// Update advances easing by one frame.
func (z *Zoom) Update() {
	if z.Counter < z.Steps && z.Target != z.Current {
		z.Counter++
		if z.Counter == z.Steps {
			z.Current = z.Target
		} else {
			z.Current += z.Increment
		}
	} else {
		z.Counter = 0
		z.Target = z.Current
	}
	z.clamp()
}

func (z *Zoom) clamp() {
	z.Current = clamp(z.Current, z.Min, z.Max)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
