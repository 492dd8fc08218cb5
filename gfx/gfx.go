// Package gfx defines the drawing surface the render passes target.
//
// A Device owns render targets and knows how to draw points, circles and
// lines into the currently bound target, and how to run the blur, blend
// and copy passes between targets. renderer.Device implements it on the
// GPU through raylib; soft.Device implements it on the CPU.
package gfx

import (
	"errors"
	"fmt"
	"math"
)

// ErrResourceLimitExceeded is returned when a target would exceed the
// device's texture-size ceiling.
var ErrResourceLimitExceeded = errors.New("resource limit exceeded")

// Color is a linear RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// RGB builds an opaque color.
func RGB(r, g, b float64) Color {
	return Color{R: float32(r), G: float32(g), B: float32(b), A: 1}
}

// RGB3 builds an opaque color from a config triple.
func RGB3(c [3]float64) Color {
	return RGB(c[0], c[1], c[2])
}

// RGBA8 quantizes the color to 8-bit channels.
func (c Color) RGBA8() (r, g, b, a uint8) {
	return to8(c.R), to8(c.G), to8(c.B), to8(c.A)
}

func to8(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

// Rect is an axis-aligned rectangle in pixels of the bound target.
type Rect struct {
	X, Y, W, H float32
}

// Target is a drawable, sampleable image owned by a Device.
type Target interface {
	Width() int
	Height() int
}

// PointVertex is one pre-colored point of the galaxy mesh, in meters.
type PointVertex struct {
	X, Y  float32
	Color Color
}

// Transform maps galaxy-frame meters to pixels of the bound target:
// center + (p + offset) * scale.
type Transform struct {
	OffsetX, OffsetY float64
	Scale            float64
	CenterX, CenterY float64
}

// Apply transforms a point.
func (t Transform) Apply(x, y float64) (float64, float64) {
	return t.CenterX + (x+t.OffsetX)*t.Scale, t.CenterY + (y+t.OffsetY)*t.Scale
}

// Device is a drawing backend.
//
// Draw calls write into the bound target; binding nil selects the
// display. All methods must be called from the render goroutine.
type Device interface {
	// MaxTextureSize is the largest side a target may have.
	MaxTextureSize() int
	// NewTarget allocates a cleared target of w×h pixels.
	NewTarget(w, h int) (Target, error)
	ReleaseTarget(t Target)
	// Bind makes t the draw destination and returns the previous one.
	Bind(t Target) Target

	Clear(c Color)
	DrawPoints(pts []PointVertex, xf Transform, size float32)
	DrawCircle(x, y, r float32, segments int, c Color)
	DrawLine(x0, y0, x1, y1, thick float32, c Color)

	// Blur5 writes a 5-tap binomial blur of src along one axis. src must
	// have the size of the bound target and must not be bound.
	Blur5(src Target, horizontal bool)
	// Blend writes a*(1-w) + b*w, stretched over the bound target.
	Blend(a, b Target, w float32)
	// Draw copies src, stretched into dst.
	Draw(src Target, dst Rect)
}

// WithTarget binds t for the duration of fn and restores the previous
// binding afterwards, even if fn panics.
func WithTarget(dev Device, t Target, fn func()) {
	prev := dev.Bind(t)
	defer dev.Bind(prev)
	fn()
}

// CheckSize validates a target size against a ceiling.
func CheckSize(w, h, ceiling int) error {
	if w < 1 || h < 1 {
		return fmt.Errorf("target %dx%d: non-positive size", w, h)
	}
	if w > ceiling || h > ceiling {
		return fmt.Errorf("target %dx%d above ceiling %d: %w", w, h, ceiling, ErrResourceLimitExceeded)
	}
	return nil
}

// Scaled returns ceil(n*f), at least 1.
func Scaled(n int, f float64) int {
	v := int(math.Ceil(float64(n)*f - 1e-9))
	if v < 1 {
		return 1
	}
	return v
}
