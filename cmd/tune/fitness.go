package main

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/pwng/config"
	"github.com/pthm-cable/pwng/gfx/soft"
	"github.com/pthm-cable/pwng/ingest"
	"github.com/pthm-cable/pwng/store"
	"github.com/pthm-cable/pwng/systems"
)

// FitnessEvaluator renders a synthetic galaxy through the pyramid with
// candidate weights and scores it against a full-resolution reference.
type FitnessEvaluator struct {
	params     *ParamVector
	baseConfig *config.Config
	store      *store.Store
	size       int
	zooms      []float64
	refBlur    int
	logger     *slog.Logger

	reference [][]float64 // per zoom, RGB planes
}

// NewFitnessEvaluator generates the field and renders the references.
func NewFitnessEvaluator(params *ParamVector, baseCfg *config.Config, size int, zooms []float64, refBlur int) (*FitnessEvaluator, error) {
	fe := &FitnessEvaluator{
		params:     params,
		baseConfig: baseCfg,
		store:      store.New(),
		size:       size,
		zooms:      zooms,
		refBlur:    refBlur,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if err := fe.loadField(); err != nil {
		return nil, err
	}

	ref := fe.copyConfig()
	ref.Pyramid.Levels = []config.PyramidLevel{{Fraction: 1}}
	ref.Pyramid.BlurIterations = refBlur
	for _, z := range zooms {
		img, err := fe.render(ref, z)
		if err != nil {
			return nil, fmt.Errorf("reference at zoom %g: %w", z, err)
		}
		fe.reference = append(fe.reference, img)
	}
	return fe, nil
}

// StarCount returns the number of stars in the field.
func (fe *FitnessEvaluator) StarCount() int {
	return fe.store.Len()
}

func (fe *FitnessEvaluator) loadField() error {
	synth := fe.baseConfig.Synth
	batch := max(synth.BatchSize, 1)
	q := ingest.NewQueue()
	for c := 0; c*batch < synth.Stars; c++ {
		n := min(batch, synth.Stars-c*batch)
		q.Push(ingest.GenerateChunk(synth, c, uint64(c*batch), n)...)
	}
	res := q.Drain(fe.store)
	if res.Err != nil {
		return fmt.Errorf("loading field: %w", res.Err)
	}
	return nil
}

// Evaluate returns the mean squared error over all zooms (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) (float64, error) {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)

	var total float64
	for i, z := range fe.zooms {
		img, err := fe.render(cfg, z)
		if err != nil {
			return 0, err
		}
		d := floats.Distance(img, fe.reference[i], 2)
		total += d * d / float64(len(img))
	}
	return total / float64(len(fe.zooms)), nil
}

// render runs one pyramid frame at zoom and returns the display as RGB planes.
func (fe *FitnessEvaluator) render(cfg *config.Config, zoom float64) ([]float64, error) {
	dev := soft.NewDevice(fe.size, fe.size, cfg.Render.TextureSizeMax)
	r := systems.New(cfg, dev, fe.store, fe.logger, nil)
	defer r.Close()
	if err := r.SetWindowSize(fe.size, fe.size); err != nil {
		return nil, err
	}
	r.BuildGalaxyMesh()
	r.Camera().Zoom.Set(zoom)
	r.RenderScene()
	if f := r.LastFrame(); f.Path != systems.PathPyramid {
		return nil, fmt.Errorf("zoom %g rendered on the %s path", zoom, f.Path)
	}

	disp := dev.Display()
	n := fe.size * fe.size
	out := make([]float64, 3*n)
	for y := 0; y < fe.size; y++ {
		for x := 0; x < fe.size; x++ {
			c := disp.Pixel(x, y)
			i := y*fe.size + x
			out[i] = float64(c.R)
			out[n+i] = float64(c.G)
			out[2*n+i] = float64(c.B)
		}
	}
	return out, nil
}

// copyConfig returns a copy of the base config that can be mutated.
// Temporal smoothing is off so every frame stands alone.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Pyramid.Levels = slices.Clone(fe.baseConfig.Pyramid.Levels)
	cfg.Temporal.Weight = 0
	cfg.Render.DebugInsets = false
	return &cfg
}
