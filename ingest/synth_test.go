package ingest

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/pthm-cable/pwng/config"
	"github.com/pthm-cable/pwng/store"
)

func testSynthConfig() config.SynthConfig {
	cfg := config.Default().Synth
	cfg.Stars = 2500
	cfg.BatchSize = 1000
	return cfg
}

func TestGenerateChunkDeterministic(t *testing.T) {
	cfg := testSynthConfig()
	a := GenerateChunk(cfg, 3, 3000, 100)
	b := GenerateChunk(cfg, 3, 3000, 100)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("change %d differs between runs", i)
		}
	}
	if a[0].ID != 3001 || a[99].ID != 3100 {
		t.Errorf("expected ids 3001..3100, got %d..%d", a[0].ID, a[99].ID)
	}

	c := GenerateChunk(cfg, 4, 3000, 100)
	if a[0].System == c[0].System {
		t.Error("expected chunks to draw from different streams")
	}
}

func TestGenerateChunkRanges(t *testing.T) {
	cfg := testSynthConfig()
	for _, c := range GenerateChunk(cfg, 0, 0, 2000) {
		if c.Kind != KindAddStar {
			t.Fatalf("expected only stars, got %s", c.Kind)
		}
		if c.Star.Temperature < 2000 || c.Star.Temperature > 47000 {
			t.Errorf("temperature %g outside [2000, 47000]", c.Star.Temperature)
		}
		if c.Radius <= 0 {
			t.Errorf("expected positive radius, got %g", c.Radius)
		}
		// Arm radius is capped at the extent; scatter adds a few sigma at most
		if r := math.Hypot(c.System.X, c.System.Y); r > 2*cfg.Extent {
			t.Errorf("star at %g m, expected within twice the extent", r)
		}
	}
}

func TestSpectralClass(t *testing.T) {
	tests := []struct {
		temp float64
		want float64
	}{
		{40000, 0},
		{5772, 4},
		{3000, 6},
	}
	for _, tc := range tests {
		if got := SpectralClass(tc.temp); got != tc.want {
			t.Errorf("SpectralClass(%g): expected %g, got %g", tc.temp, tc.want, got)
		}
	}
}

func TestLoadFillsStore(t *testing.T) {
	cfg := testSynthConfig()
	q := NewQueue()
	src := NewSource(cfg, q, nil)
	if err := src.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	st := store.New()
	res := q.Drain(st)
	if res.Failed != 0 {
		t.Fatalf("expected no failures, got %v", res.Err)
	}
	if !res.BulkDone {
		t.Error("expected bulk done after load")
	}
	want := cfg.Stars + 1 + len(SolarSystem)
	if st.Len() != want {
		t.Errorf("expected %d entities, got %d", want, st.Len())
	}
	if n := len(st.Named()); n != 1+len(SolarSystem) {
		t.Errorf("expected %d named entities, got %d", 1+len(SolarSystem), n)
	}
}

func TestStepMovesPlanets(t *testing.T) {
	q := NewQueue()
	src := NewSource(testSynthConfig(), q, nil)
	st := store.New()
	q.Push(src.systemChanges()...)
	q.Drain(st)

	earth, ok := q.Entity(planetID(2))
	if !ok {
		t.Fatal("expected earth entity")
	}
	_, before, _ := st.Position(earth)
	src.Step()
	q.Drain(st)
	_, after, _ := st.Position(earth)

	if before == after {
		t.Error("expected earth to move after a step")
	}
	if r := math.Hypot(after.X, after.Y); math.Abs(r/1.496e11-1) > 1e-9 {
		t.Errorf("expected earth on its orbit, got radius %g", r)
	}
}

func TestLoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := testSynthConfig()
	cfg.Stars = 1_000_000
	src := NewSource(cfg, NewQueue(), nil)
	src.workers = 1

	if err := src.Load(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
