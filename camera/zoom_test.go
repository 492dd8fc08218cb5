package camera

import "testing"

func TestZoomEasesInExactSteps(t *testing.T) {
	z := NewZoom(1.0, 1e-22, 1000, 10)
	z.Request(10.0)

	prev := z.Current
	for i := 0; i < 10; i++ {
		z.Update()
		if z.Current <= prev {
			t.Fatalf("step %d: expected zoom to increase, got %f after %f", i, z.Current, prev)
		}
		prev = z.Current
	}
	if z.Current != 10.0 {
		t.Fatalf("expected zoom 10.0 after 10 updates, got %.17g", z.Current)
	}

	for i := 0; i < 5; i++ {
		z.Update()
		if z.Current != 10.0 {
			t.Errorf("expected zoom to stay at 10.0, got %.17g", z.Current)
		}
	}
	if !z.Settled() {
		t.Error("expected zoom to be settled")
	}
}

func TestZoomMidwayRequestRestarts(t *testing.T) {
	z := NewZoom(1.0, 1e-22, 1000, 4)
	z.Request(5.0)
	z.Update()
	z.Update()
	z.Request(1.0)
	if z.Counter != 0 {
		t.Errorf("expected counter reset on request, got %d", z.Counter)
	}
	for i := 0; i < 4; i++ {
		z.Update()
	}
	if z.Current != 1.0 {
		t.Errorf("expected zoom back at 1.0, got %.17g", z.Current)
	}
}

func TestZoomClamps(t *testing.T) {
	tests := []struct {
		name   string
		target float64
		want   float64
	}{
		{"above max", 1e6, 1000},
		{"below min", 1e-30, 1e-22},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			z := NewZoom(1.0, 1e-22, 1000, 3)
			z.Request(tc.target)
			for i := 0; i < 10; i++ {
				z.Update()
				if z.Current < z.Min || z.Current > z.Max {
					t.Fatalf("zoom %g escaped [%g, %g]", z.Current, z.Min, z.Max)
				}
			}
			if z.Current != tc.want {
				t.Errorf("expected zoom %g, got %g", tc.want, z.Current)
			}
			if !z.Settled() {
				t.Error("expected zoom to settle at the bound")
			}
		})
	}
}

func TestZoomByClampsTarget(t *testing.T) {
	z := NewZoom(500, 1e-22, 1000, 2)
	z.ZoomBy(10)
	if z.Target != 1000 {
		t.Errorf("expected target clamped to 1000, got %g", z.Target)
	}
}

func TestZoomSet(t *testing.T) {
	z := NewZoom(1, 1e-22, 1000, 10)
	z.Request(100)
	z.Update()
	z.Set(42)
	if z.Current != 42 || !z.Settled() {
		t.Errorf("expected settled zoom 42, got %g (target %g)", z.Current, z.Target)
	}
	z.Update()
	if z.Current != 42 {
		t.Errorf("expected zoom unchanged after update, got %g", z.Current)
	}
}
