package soft

import (
	"image"
	"image/color"

	"github.com/pthm-cable/pwng/gfx"
)

// Target is a float32 RGBA image. It implements draw.Image so the
// x/image/draw scalers can read and write it directly.
type Target struct {
	w, h int
	pix  []float32
}

func newTarget(w, h int) *Target {
	return &Target{w: w, h: h, pix: make([]float32, w*h*4)}
}

// Width returns the width in pixels.
func (t *Target) Width() int { return t.w }

// Height returns the height in pixels.
func (t *Target) Height() int { return t.h }

// Pixel returns the color at (x, y), clamped to the edges.
func (t *Target) Pixel(x, y int) gfx.Color {
	x = clampInt(x, 0, t.w-1)
	y = clampInt(y, 0, t.h-1)
	i := (y*t.w + x) * 4
	return gfx.Color{R: t.pix[i], G: t.pix[i+1], B: t.pix[i+2], A: t.pix[i+3]}
}

// SetPixel writes a color; out-of-range coordinates are ignored.
func (t *Target) SetPixel(x, y int, c gfx.Color) {
	if x < 0 || y < 0 || x >= t.w || y >= t.h {
		return
	}
	i := (y*t.w + x) * 4
	t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3] = c.R, c.G, c.B, c.A
}

func (t *Target) fill(c gfx.Color) {
	for i := 0; i < len(t.pix); i += 4 {
		t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// sample returns the bilinearly filtered color at normalized (u, v),
// matching GPU texture sampling with clamp-to-edge.
func (t *Target) sample(u, v float64) gfx.Color {
	fx := u*float64(t.w) - 0.5
	fy := v*float64(t.h) - 0.5
	x0, y0 := floor(fx), floor(fy)
	ax, ay := float32(fx-float64(x0)), float32(fy-float64(y0))
	c00 := t.Pixel(x0, y0)
	c10 := t.Pixel(x0+1, y0)
	c01 := t.Pixel(x0, y0+1)
	c11 := t.Pixel(x0+1, y0+1)
	top := lerp(c00, c10, ax)
	bot := lerp(c01, c11, ax)
	return lerp(top, bot, ay)
}

// ColorModel implements image.Image.
func (t *Target) ColorModel() color.Model { return color.RGBA64Model }

// Bounds implements image.Image.
func (t *Target) Bounds() image.Rectangle { return image.Rect(0, 0, t.w, t.h) }

// At implements image.Image.
func (t *Target) At(x, y int) color.Color { return t.RGBA64At(x, y) }

// RGBA64At implements image.RGBA64Image.
func (t *Target) RGBA64At(x, y int) color.RGBA64 {
	if x < 0 || y < 0 || x >= t.w || y >= t.h {
		return color.RGBA64{}
	}
	return toRGBA64(t.Pixel(x, y))
}

// Set implements draw.Image.
func (t *Target) Set(x, y int, c color.Color) {
	r, g, b, a := c.RGBA()
	t.SetRGBA64(x, y, color.RGBA64{R: uint16(r), G: uint16(g), B: uint16(b), A: uint16(a)})
}

// SetRGBA64 implements draw.RGBA64Image.
func (t *Target) SetRGBA64(x, y int, c color.RGBA64) {
	if c.A == 0 {
		t.SetPixel(x, y, gfx.Color{})
		return
	}
	a := float32(c.A) / 0xffff
	t.SetPixel(x, y, gfx.Color{
		R: float32(c.R) / 0xffff / a,
		G: float32(c.G) / 0xffff / a,
		B: float32(c.B) / 0xffff / a,
		A: a,
	})
}

func to16(v float32) uint16 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint16(v*0xffff + 0.5)
}

func lerp(a, b gfx.Color, w float32) gfx.Color {
	return gfx.Color{
		R: a.R + (b.R-a.R)*w,
		G: a.G + (b.G-a.G)*w,
		B: a.B + (b.B-a.B)*w,
		A: a.A + (b.A-a.A)*w,
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
