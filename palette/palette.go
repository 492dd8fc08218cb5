// Package palette maps a normalized scalar (star temperature) to a color
// through a lookup table.
package palette

import (
	"sort"

	"gonum.org/v1/gonum/interp"

	"github.com/pthm-cable/pwng/config"
	"github.com/pthm-cable/pwng/gfx"
)

type support struct {
	pos float64
	c   gfx.Color
}

// Builder collects support points before the table is baked.
type Builder struct {
	size   int
	points []support
}

// NewBuilder starts a palette of size entries anchored at first (0) and last (1).
func NewBuilder(size int, first, last gfx.Color) *Builder {
	if size < 2 {
		size = 2
	}
	return &Builder{
		size:   size,
		points: []support{{0, first}, {1, last}},
	}
}

// Add inserts a support point. pos is clipped to [0, 1]; a point at an
// existing position replaces it.
func (b *Builder) Add(pos float64, c gfx.Color) *Builder {
	pos = clip(pos)
	for i := range b.points {
		if b.points[i].pos == pos {
			b.points[i].c = c
			return b
		}
	}
	b.points = append(b.points, support{pos, c})
	return b
}

// Build bakes the lookup table by piecewise linear interpolation of
// each channel between the sorted support points.
func (b *Builder) Build() *Palette {
	pts := append([]support(nil), b.points...)
	sort.Slice(pts, func(i, j int) bool { return pts[i].pos < pts[j].pos })

	xs := make([]float64, len(pts))
	rs := make([]float64, len(pts))
	gs := make([]float64, len(pts))
	bs := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.pos
		rs[i], gs[i], bs[i] = float64(p.c.R), float64(p.c.G), float64(p.c.B)
	}
	// Positions are unique after Add, so the fits cannot fail
	var red, green, blue interp.PiecewiseLinear
	_ = red.Fit(xs, rs)
	_ = green.Fit(xs, gs)
	_ = blue.Fit(xs, bs)

	lut := make([]gfx.Color, b.size)
	for i := range lut {
		pos := float64(i) / float64(b.size-1)
		lut[i] = gfx.Color{
			R: float32(red.Predict(pos)),
			G: float32(green.Predict(pos)),
			B: float32(blue.Predict(pos)),
			A: 1,
		}
	}
	return &Palette{lut: lut}
}

// Palette is an immutable color lookup table.
type Palette struct {
	lut []gfx.Color
}

// FromConfig builds the star palette.
func FromConfig(cfg config.PaletteConfig) *Palette {
	b := NewBuilder(cfg.Size, gfx.RGB3(cfg.First), gfx.RGB3(cfg.Last))
	for _, s := range cfg.Support {
		b.Add(s.Pos, gfx.RGB3(s.Color))
	}
	return b.Build()
}

// Len returns the table size.
func (p *Palette) Len() int { return len(p.lut) }

// At returns the color for pos in [0, 1]; out-of-range positions clip
// and NaN maps to the first entry.
func (p *Palette) At(pos float64) gfx.Color {
	i := int(clip(pos)*float64(len(p.lut)-1) + 0.5)
	return p.lut[i]
}

// Temperature maps a temperature to a palette color using the configured
// normalization (T - min) / range.
func (p *Palette) Temperature(t, tMin, tRange float64) gfx.Color {
	if tRange <= 0 {
		return p.At(0)
	}
	return p.At((t - tMin) / tRange)
}

func clip(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
