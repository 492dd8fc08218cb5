package systems

import (
	"errors"
	"fmt"

	"github.com/pthm-cable/pwng/gfx"
)

// minResFactor bounds how far Direct shrinks its factor when the device
// refuses a target.
const minResFactor = 1.0 / 16

// Direct renders circles into one supersampled target and blurs it
// lightly before compositing. It replaces the pyramid at close zoom,
// where entities are large and sparse.
type Direct struct {
	requested float64
	effective float64
	pair      *gfx.Pair
}

// NewDirect creates an unallocated direct renderer.
func NewDirect(factor float64) *Direct {
	return &Direct{requested: factor, effective: factor}
}

// Factor returns the supersampling factor in use.
func (d *Direct) Factor() float64 { return d.effective }

// Requested returns the factor asked for.
func (d *Direct) Requested() float64 { return d.requested }

// SetRequested changes the requested factor; Resize applies it.
func (d *Direct) SetRequested(f float64) { d.requested = f }

// BlurIterations is int(factor+0.5)/2: none below 1.5x.
func (d *Direct) BlurIterations() int {
	return int(d.effective+0.5) / 2
}

// ClampFactor limits f so a w×h window scaled by it fits under ceiling.
func ClampFactor(f float64, w, h, ceiling int) (float64, bool) {
	limit := float64(ceiling) / float64(max(w, h))
	if f > limit {
		return limit, true
	}
	return f, false
}

// Resize reallocates the target for a w×h window. It reports whether the
// factor had to be reduced below the requested one.
func (d *Direct) Resize(dev gfx.Device, w, h, ceiling int) (bool, error) {
	d.Release(dev)

	f, clamped := ClampFactor(d.requested, w, h, ceiling)
	for {
		pair, err := gfx.NewPair(dev, gfx.Scaled(w, f), gfx.Scaled(h, f))
		if err == nil {
			d.pair = pair
			d.effective = f
			return clamped, nil
		}
		if !errors.Is(err, gfx.ErrResourceLimitExceeded) || f/2 < minResFactor {
			return clamped, fmt.Errorf("direct target at %gx: %w", f, err)
		}
		f /= 2
		clamped = true
	}
}

// Release frees the target.
func (d *Direct) Release(dev gfx.Device) {
	d.pair.Release(dev)
	d.pair = nil
}

// Target returns the current image.
func (d *Direct) Target() gfx.Target { return d.pair.Front() }

// Render draws with draw into the cleared target, blurs it and returns it.
func (d *Direct) Render(dev gfx.Device, clear gfx.Color, winW, winH int, draw func(p pass)) gfx.Target {
	p := pass{factor: d.effective, winW: winW, winH: winH, tw: d.pair.Width(), th: d.pair.Height()}
	gfx.WithTarget(dev, d.pair.Back(), func() {
		dev.Clear(clear)
		draw(p)
	})
	d.pair.Swap()
	d.pair.Blur(dev, d.BlurIterations())
	return d.pair.Front()
}
