package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/pwng/config"
)

func TestParamVectorSkipsCoarsestLevel(t *testing.T) {
	cfg := config.Default()
	pv := NewParamVector(cfg)
	if pv.Dim() != len(cfg.Pyramid.Levels)-1 {
		t.Fatalf("expected %d params, got %d", len(cfg.Pyramid.Levels)-1, pv.Dim())
	}
	if pv.Specs[0].Name != "weight_1_4" {
		t.Errorf("expected first param weight_1_4, got %s", pv.Specs[0].Name)
	}
	if pv.Specs[0].Default != cfg.Pyramid.Levels[0].Weight {
		t.Errorf("expected default %g, got %g", cfg.Pyramid.Levels[0].Weight, pv.Specs[0].Default)
	}
}

func TestNormalizeRoundtrip(t *testing.T) {
	pv := NewParamVector(config.Default())
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("param %d: expected %g, got %g", i, raw[i], back[i])
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	cfg := config.Default()
	pv := NewParamVector(cfg)
	v := []float64{-0.5, 0.3, 2}
	pv.ApplyToConfig(cfg, v)

	want := []float64{0, 0.3, 0.95}
	for i, w := range want {
		if cfg.Pyramid.Levels[i].Weight != w {
			t.Errorf("level %d: expected weight %g, got %g", i, w, cfg.Pyramid.Levels[i].Weight)
		}
	}
	if d := pv.OutOfBounds(v); math.Abs(d-1.55) > 1e-12 {
		t.Errorf("expected out-of-bounds distance 1.55, got %g", d)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("tuned config should validate: %v", err)
	}
}

func TestEvaluateScoresWeights(t *testing.T) {
	cfg := config.Default()
	cfg.Synth.Stars = 2000
	cfg.Synth.BatchSize = 500
	pv := NewParamVector(cfg)

	fe, err := NewFitnessEvaluator(pv, cfg, 64, []float64{5e-19}, 4)
	if err != nil {
		t.Fatal(err)
	}
	if fe.StarCount() != 2000 {
		t.Errorf("expected 2000 stars, got %d", fe.StarCount())
	}
	mse, err := fe.Evaluate(pv.DefaultVector())
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(mse) || mse < 0 {
		t.Errorf("expected a non-negative mse, got %g", mse)
	}
	// Scoring must not leak weights into the base config
	if cfg.Pyramid.Levels[0].Weight != 0.45 {
		t.Errorf("expected base weight untouched, got %g", cfg.Pyramid.Levels[0].Weight)
	}
}
