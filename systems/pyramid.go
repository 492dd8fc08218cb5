package systems

import (
	"fmt"
	"log/slog"
	"math"

	"github.com/pthm-cable/pwng/config"
	"github.com/pthm-cable/pwng/gfx"
)

// Level is one sub-resolution level of the pyramid.
type Level struct {
	Fraction float64 // side length relative to the window
	Weight   float64 // share of the coarser combined result
	pair     *gfx.Pair
	combined bool
}

// Front returns the level's current image.
func (l *Level) Front() gfx.Target { return l.pair.Front() }

// Raw returns the level's blurred image as rendered, before Combine
// blended the coarser levels into it.
func (l *Level) Raw() gfx.Target {
	if l.combined {
		return l.pair.Back()
	}
	return l.pair.Front()
}

// Width returns the level width in pixels.
func (l *Level) Width() int { return l.pair.Width() }

// Height returns the level height in pixels.
func (l *Level) Height() int { return l.pair.Height() }

// Pyramid renders the scene at several low resolutions, blurs each and
// recombines them coarse to fine. Sparse regions stay visible as a glow
// while dense regions keep detail.
type Pyramid struct {
	cfg    []config.PyramidLevel
	blur   int
	minLvl int

	levels []Level
	warned bool
}

// NewPyramid creates an unallocated pyramid.
func NewPyramid(cfg config.PyramidConfig) *Pyramid {
	return &Pyramid{
		cfg:    cfg.Levels,
		blur:   cfg.BlurIterations,
		minLvl: cfg.MinLevelSize,
	}
}

// Levels returns the allocated levels, finest first.
func (p *Pyramid) Levels() []Level { return p.levels }

// Resize reallocates the levels for a w×h window. Levels that would exceed
// ceiling or fall below the minimum level size are dropped from the
// ladder; the first time that happens a warning is logged.
func (p *Pyramid) Resize(dev gfx.Device, w, h, ceiling int, logger *slog.Logger) error {
	p.Release(dev)

	ladder, shrunk := planLadder(p.cfg, w, h, ceiling, p.minLvl)
	if shrunk && !p.warned {
		p.warned = true
		logger.Warn("pyramid ladder shrunk to fit",
			"configured", len(p.cfg),
			"levels", len(ladder),
			"ceiling", ceiling,
			"window_w", w,
			"window_h", h,
		)
	}

	for _, l := range ladder {
		pair, err := gfx.NewPair(dev, gfx.Scaled(w, l.Fraction), gfx.Scaled(h, l.Fraction))
		if err != nil {
			p.Release(dev)
			return fmt.Errorf("pyramid level %g: %w", l.Fraction, err)
		}
		p.levels = append(p.levels, Level{Fraction: l.Fraction, Weight: l.Weight, pair: pair})
	}
	return nil
}

// planLadder selects the configured levels that fit. It always returns at
// least one level.
func planLadder(cfg []config.PyramidLevel, w, h, ceiling, minSize int) ([]config.PyramidLevel, bool) {
	var out []config.PyramidLevel
	for _, l := range cfg {
		lw, lh := gfx.Scaled(w, l.Fraction), gfx.Scaled(h, l.Fraction)
		if lw > ceiling || lh > ceiling {
			continue
		}
		if lw < minSize && lh < minSize && len(out) > 0 {
			continue
		}
		out = append(out, l)
	}
	shrunk := len(out) != len(cfg)
	if len(out) == 0 {
		// Nothing fits under the ceiling: one level as large as allowed
		f := float64(ceiling) / float64(max(w, h))
		f = math.Min(f, cfg[0].Fraction)
		out = append(out, config.PyramidLevel{Fraction: f})
	}
	return out, shrunk
}

// Release frees every level.
func (p *Pyramid) Release(dev gfx.Device) {
	for i := range p.levels {
		p.levels[i].pair.Release(dev)
	}
	p.levels = p.levels[:0]
}

// Render draws every level with draw and blurs it. draw is called with
// the level's target bound and cleared.
func (p *Pyramid) Render(dev gfx.Device, clear gfx.Color, draw func(l *Level)) {
	for i := range p.levels {
		l := &p.levels[i]
		gfx.WithTarget(dev, l.pair.Back(), func() {
			dev.Clear(clear)
			draw(l)
		})
		l.pair.Swap()
		l.pair.Blur(dev, p.blur)
		l.combined = false
	}
}

// Combine blends the levels bottom-up:
//
//	combined[n-1] = level[n-1]
//	combined[i]   = level[i]*(1-W[i]) + combined[i+1]*W[i]
//
// and returns combined[0]. Each level's front holds its combined image
// afterwards and its back still holds the raw level.
func (p *Pyramid) Combine(dev gfx.Device) gfx.Target {
	n := len(p.levels)
	if n == 0 {
		return nil
	}
	combined := p.levels[n-1].pair.Front()
	for i := n - 2; i >= 0; i-- {
		l := &p.levels[i]
		fine, coarse := l.pair.Front(), combined
		w := float32(l.Weight)
		gfx.WithTarget(dev, l.pair.Back(), func() {
			dev.Blend(fine, coarse, w)
		})
		l.pair.Swap()
		l.combined = true
		combined = l.pair.Front()
	}
	return combined
}
