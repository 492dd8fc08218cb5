package systems

import (
	"math"

	"github.com/pthm-cable/pwng/config"
	"github.com/pthm-cable/pwng/gfx"
)

// Temporal blends each pyramid composite with the previous smoothed frame
// to suppress flicker from sub-pixel motion:
//
//	smoothed = combined*(1-w) + previous*w
type Temporal struct {
	weight      float64
	fadeDecades float64

	pair   *gfx.Pair
	primed bool
}

// NewTemporal creates an unallocated smoother.
func NewTemporal(cfg config.TemporalConfig) *Temporal {
	return &Temporal{weight: cfg.Weight, fadeDecades: cfg.FadeDecades}
}

// Resize reallocates the history at w×h and drops it.
func (t *Temporal) Resize(dev gfx.Device, w, h int) error {
	t.Release(dev)
	pair, err := gfx.NewPair(dev, w, h)
	if err != nil {
		return err
	}
	t.pair = pair
	t.primed = false
	return nil
}

// Release frees the history.
func (t *Temporal) Release(dev gfx.Device) {
	t.pair.Release(dev)
	t.pair = nil
}

// Reset drops the history; the next frame passes through unblended.
func (t *Temporal) Reset() {
	t.primed = false
}

// Weight returns the history weight at zoom. It fades linearly to zero
// over the last fadeDecades decades below switchZoom, so the hand-off to
// the direct path does not pop.
func (t *Temporal) Weight(zoom, switchZoom float64) float64 {
	if t.fadeDecades <= 0 {
		return t.weight
	}
	d := math.Log10(switchZoom / zoom)
	if d <= 0 {
		return 0
	}
	return t.weight * math.Min(1, d/t.fadeDecades)
}

// Apply blends combined into the history and returns the smoothed image.
// combined must have the history's size.
func (t *Temporal) Apply(dev gfx.Device, combined gfx.Target, w float64) gfx.Target {
	if !t.primed {
		w = 0
		t.primed = true
	}
	prev := t.pair.Front()
	gfx.WithTarget(dev, t.pair.Back(), func() {
		dev.Blend(combined, prev, float32(w))
	})
	t.pair.Swap()
	return t.pair.Front()
}
