package soft

import (
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/pwng/gfx"
)

func newTestTarget(t *testing.T, d *Device, w, h int) *Target {
	t.Helper()
	tgt, err := d.NewTarget(w, h)
	if err != nil {
		t.Fatalf("allocating target: %v", err)
	}
	return tgt.(*Target)
}

func TestNewTargetCeiling(t *testing.T) {
	d := NewDevice(64, 64, 128)
	if _, err := d.NewTarget(128, 128); err != nil {
		t.Errorf("expected target at ceiling to succeed, got %v", err)
	}
	_, err := d.NewTarget(129, 16)
	if !errors.Is(err, gfx.ErrResourceLimitExceeded) {
		t.Errorf("expected ErrResourceLimitExceeded, got %v", err)
	}
	if d.Stats.MaxTargetSide != 128 {
		t.Errorf("expected max side 128, got %d", d.Stats.MaxTargetSide)
	}
}

func TestWithTargetRestoresBinding(t *testing.T) {
	d := NewDevice(8, 8, 64)
	a := newTestTarget(t, d, 4, 4)
	b := newTestTarget(t, d, 4, 4)

	d.Bind(a)
	gfx.WithTarget(d, b, func() {
		d.Clear(gfx.RGB(1, 0, 0))
	})
	if d.dst() != a {
		t.Fatal("expected binding restored to a")
	}
	if b.Pixel(2, 2).R != 1 || a.Pixel(2, 2).R != 0 {
		t.Error("expected only b to be cleared")
	}

	d.Bind(nil)
	if d.dst() != d.Display() {
		t.Error("expected nil binding to select the display")
	}
}

func TestBlurPreservesConstant(t *testing.T) {
	d := NewDevice(8, 8, 64)
	src := newTestTarget(t, d, 16, 16)
	dst := newTestTarget(t, d, 16, 16)
	src.fill(gfx.Color{R: 0.5, G: 0.25, B: 1, A: 1})

	gfx.WithTarget(d, dst, func() { d.Blur5(src, true) })
	for _, p := range [][2]int{{0, 0}, {7, 7}, {15, 15}} {
		c := dst.Pixel(p[0], p[1])
		if math.Abs(float64(c.R-0.5)) > 1e-6 || math.Abs(float64(c.B-1)) > 1e-6 {
			t.Errorf("expected constant color preserved at %v, got %+v", p, c)
		}
	}
}

func TestBlurImpulse(t *testing.T) {
	d := NewDevice(8, 8, 64)
	src := newTestTarget(t, d, 9, 1)
	dst := newTestTarget(t, d, 9, 1)
	src.SetPixel(4, 0, gfx.Color{R: 1, A: 1})

	gfx.WithTarget(d, dst, func() { d.Blur5(src, true) })
	want := []float32{0, 0, 1.0 / 16, 4.0 / 16, 6.0 / 16, 4.0 / 16, 1.0 / 16, 0, 0}
	for x, w := range want {
		if got := dst.Pixel(x, 0).R; math.Abs(float64(got-w)) > 1e-6 {
			t.Errorf("x=%d: expected %f, got %f", x, w, got)
		}
	}
}

func TestBlendExtremes(t *testing.T) {
	d := NewDevice(8, 8, 64)
	a := newTestTarget(t, d, 4, 4)
	b := newTestTarget(t, d, 4, 4)
	out := newTestTarget(t, d, 4, 4)
	a.fill(gfx.Color{R: 0.1, G: 0.3, B: 0.7, A: 1})
	b.fill(gfx.Color{R: 0.9, G: 0.6, B: 0.2, A: 1})

	gfx.WithTarget(d, out, func() { d.Blend(a, b, 0) })
	if out.Pixel(1, 1) != a.Pixel(1, 1) {
		t.Errorf("expected weight 0 to yield a, got %+v", out.Pixel(1, 1))
	}
	gfx.WithTarget(d, out, func() { d.Blend(a, b, 1) })
	if out.Pixel(1, 1) != b.Pixel(1, 1) {
		t.Errorf("expected weight 1 to yield b, got %+v", out.Pixel(1, 1))
	}
	gfx.WithTarget(d, out, func() { d.Blend(a, b, 0.5) })
	if got := out.Pixel(1, 1).R; math.Abs(float64(got-0.5)) > 1e-6 {
		t.Errorf("expected midpoint 0.5, got %f", got)
	}
}

func TestBlendUpsamplesCoarseOperand(t *testing.T) {
	d := NewDevice(8, 8, 64)
	fine := newTestTarget(t, d, 8, 8)
	coarse := newTestTarget(t, d, 4, 4)
	out := newTestTarget(t, d, 8, 8)
	coarse.fill(gfx.Color{G: 1, A: 1})

	gfx.WithTarget(d, out, func() { d.Blend(fine, coarse, 1) })
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if math.Abs(float64(out.Pixel(x, y).G-1)) > 1e-6 {
				t.Fatalf("expected upsampled constant at (%d,%d), got %+v", x, y, out.Pixel(x, y))
			}
		}
	}
}

func TestDrawPointsAndCircles(t *testing.T) {
	d := NewDevice(32, 32, 64)
	d.Clear(gfx.Color{A: 1})

	xf := gfx.Transform{Scale: 1, CenterX: 16, CenterY: 16}
	d.DrawPoints([]gfx.PointVertex{
		{X: 0, Y: 0, Color: gfx.RGB(1, 1, 1)},
		{X: 1000, Y: 0, Color: gfx.RGB(1, 1, 1)}, // off target
	}, xf, 1)
	if d.Display().Pixel(16, 16).R != 1 {
		t.Error("expected point at the center pixel")
	}
	if d.Stats.Points != 2 {
		t.Errorf("expected 2 points counted, got %d", d.Stats.Points)
	}

	d.DrawCircle(5, 5, 3, 10, gfx.RGB(0, 1, 0))
	if d.Display().Pixel(5, 5).G != 1 {
		t.Error("expected circle to cover its center")
	}
	if d.Display().Pixel(12, 5).G != 0 {
		t.Error("expected circle not to cover far pixels")
	}
	d.DrawCircle(20.5, 20.5, 0.1, 10, gfx.RGB(0, 0, 1))
	if d.Display().Pixel(20, 20).B != 1 {
		t.Error("expected sub-pixel circle to cover the center pixel")
	}
	if d.Stats.Segments[10] != 2 {
		t.Errorf("expected 2 circles with 10 segments, got %d", d.Stats.Segments[10])
	}
}

func TestDrawStretches(t *testing.T) {
	d := NewDevice(16, 16, 64)
	src := newTestTarget(t, d, 4, 4)
	src.fill(gfx.Color{R: 1, A: 1})

	d.Draw(src, gfx.Rect{W: 16, H: 16})
	c := d.Display().Pixel(8, 8)
	if math.Abs(float64(c.R-1)) > 1e-3 || math.Abs(float64(c.A-1)) > 1e-3 {
		t.Errorf("expected stretched red, got %+v", c)
	}
}

func TestMixEndpoints(t *testing.T) {
	tests := []struct{ a, b, w, want float32 }{
		{0.1, 0.7, 0, 0.1},
		{0.1, 0.7, 1, 0.7},
		{0.3, 0.3, 0.75, 0.3},
	}
	for _, tc := range tests {
		if got := Mix(tc.a, tc.b, tc.w); got != tc.want {
			t.Errorf("Mix(%f, %f, %f): expected %f, got %f", tc.a, tc.b, tc.w, tc.want, got)
		}
	}
}

func TestDrawLineCoversQuad(t *testing.T) {
	d := NewDevice(16, 16, 64)
	d.Clear(gfx.Color{A: 1})

	d.DrawLine(2, 4.5, 10, 4.5, 1, gfx.RGB(1, 0, 0))
	if d.Display().Pixel(5, 4).R != 1 {
		t.Errorf("expected line to cover its row, got %+v", d.Display().Pixel(5, 4))
	}
	if d.Display().Pixel(5, 6).R != 0 || d.Display().Pixel(13, 4).R != 0 {
		t.Error("expected nothing drawn away from the line")
	}

	d.DrawLine(8.5, 8, 8.5, 14, 1, gfx.RGB(0, 1, 0))
	if d.Display().Pixel(8, 11).G != 1 {
		t.Errorf("expected vertical line to cover its column, got %+v", d.Display().Pixel(8, 11))
	}
}

func TestDrawCircleClipsToTarget(t *testing.T) {
	d := NewDevice(32, 32, 64)
	d.Clear(gfx.Color{A: 1})

	// Edge crosses the target near x=10; vertices lie far outside it
	d.DrawCircle(-1e6, 16, 1e6+10, 1000, gfx.RGB(0, 0, 1))
	if d.Display().Pixel(5, 16).B != 1 {
		t.Errorf("expected inside of the huge circle covered, got %+v", d.Display().Pixel(5, 16))
	}
	if d.Display().Pixel(20, 16).B != 0 {
		t.Errorf("expected outside of the huge circle clear, got %+v", d.Display().Pixel(20, 16))
	}

	d.DrawCircle(-2, 16, 6, 100, gfx.RGB(1, 0, 0))
	if d.Display().Pixel(1, 16).R != 1 {
		t.Error("expected circle straddling the left edge to cover (1,16)")
	}
	if d.Display().Pixel(10, 16).R != 0 {
		t.Error("expected circle straddling the left edge to stop before (10,16)")
	}
}

func TestDrawCircleCoveringTarget(t *testing.T) {
	d := NewDevice(8, 8, 64)
	d.Clear(gfx.Color{A: 1})
	d.DrawCircle(4, 4, 1e9, 1000, gfx.RGB(0, 1, 0))
	for _, p := range [][2]int{{0, 0}, {7, 0}, {0, 7}, {7, 7}} {
		if d.Display().Pixel(p[0], p[1]).G != 1 {
			t.Errorf("expected full coverage at %v, got %+v", p, d.Display().Pixel(p[0], p[1]))
		}
	}
}
