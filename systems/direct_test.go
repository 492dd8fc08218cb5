package systems

import (
	"testing"

	"github.com/pthm-cable/pwng/gfx"
	"github.com/pthm-cable/pwng/gfx/soft"
)

func TestDirectBlurIterations(t *testing.T) {
	tests := []struct {
		factor float64
		want   int
	}{
		{0.5, 0},
		{1, 0},
		{1.5, 1},
		{2, 1},
		{3, 1},
		{4, 2},
		{8, 4},
	}
	for _, tc := range tests {
		d := NewDirect(tc.factor)
		if got := d.BlurIterations(); got != tc.want {
			t.Errorf("factor %g: expected %d iterations, got %d", tc.factor, tc.want, got)
		}
	}
}

func TestClampFactor(t *testing.T) {
	f, clamped := ClampFactor(2, 1000, 800, 1500)
	if !clamped || f != 1.5 {
		t.Errorf("expected factor clamped to 1.5, got %g (clamped=%v)", f, clamped)
	}
	f, clamped = ClampFactor(2, 1000, 800, 4096)
	if clamped || f != 2 {
		t.Errorf("expected factor 2 unchanged, got %g (clamped=%v)", f, clamped)
	}
}

func TestDirectResizeRespectsCeiling(t *testing.T) {
	dev := soft.NewDevice(100, 100, 4096)
	d := NewDirect(64)
	clamped, err := d.Resize(dev, 100, 50, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if !clamped || d.Factor() != 10 {
		t.Errorf("expected factor clamped to 10, got %g", d.Factor())
	}
	if d.Target().Width() != 1000 || d.Target().Height() != 500 {
		t.Errorf("expected 1000x500 target, got %dx%d", d.Target().Width(), d.Target().Height())
	}
}

func TestDirectHalvesWhenDeviceRefuses(t *testing.T) {
	// Device limit below the configured ceiling
	dev := soft.NewDevice(1000, 1000, 512)
	d := NewDirect(2)
	clamped, err := d.Resize(dev, 1000, 1000, 4096)
	if err != nil {
		t.Fatal(err)
	}
	if !clamped || d.Factor() != 0.5 {
		t.Errorf("expected factor 0.5 after halving, got %g", d.Factor())
	}
	if dev.Stats.MaxTargetSide > 512 {
		t.Errorf("expected no target above 512, got %d", dev.Stats.MaxTargetSide)
	}
}

func TestDirectRenderDrawsIntoTarget(t *testing.T) {
	dev := soft.NewDevice(10, 10, 64)
	d := NewDirect(2)
	if _, err := d.Resize(dev, 10, 10, 64); err != nil {
		t.Fatal(err)
	}
	var seen pass
	out := d.Render(dev, gfx.Color{A: 1}, 10, 10, func(p pass) {
		seen = p
		dev.DrawCircle(10, 10, 4, 10, gfx.RGB(1, 1, 1))
	}).(*soft.Target)

	if seen.factor != 2 || seen.tw != 20 || seen.winW != 10 {
		t.Errorf("expected 2x pass of a 10 px window into 20 px, got %+v", seen)
	}
	if out.Pixel(10, 10).R < 0.9 {
		t.Errorf("expected circle center to stay bright after a light blur, got %+v", out.Pixel(10, 10))
	}
	if out.Pixel(0, 0).R != 0 {
		t.Errorf("expected corner to stay clear, got %+v", out.Pixel(0, 0))
	}
}
