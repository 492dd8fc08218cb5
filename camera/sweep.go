package camera

import "math"

// Sweep is a scripted zoom that runs from min to max in log space and
// back, one step per frame.
type Sweep struct {
	logMin, logMax float64
	frames         int
}

// NewSweep creates a sweep taking frames steps from minZoom to maxZoom.
func NewSweep(minZoom, maxZoom float64, frames int) Sweep {
	return Sweep{logMin: math.Log10(minZoom), logMax: math.Log10(maxZoom), frames: max(frames, 2)}
}

// At returns the zoom for frame i.
func (s Sweep) At(i int64) float64 {
	period := int64(2 * (s.frames - 1))
	k := i % period
	if k >= int64(s.frames) {
		k = period - k
	}
	t := float64(k) / float64(s.frames-1)
	return math.Pow(10, s.logMin+(s.logMax-s.logMin)*t)
}
