package main

import (
	"fmt"

	"github.com/pthm-cable/pwng/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the tunable pyramid weights. The coarsest level has
// nothing below it to blend, so its weight is never tuned.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates one weight parameter per combinable level of cfg's ladder.
func NewParamVector(cfg *config.Config) *ParamVector {
	levels := cfg.Pyramid.Levels
	specs := make([]ParamSpec, 0, max(len(levels)-1, 0))
	for i := 0; i < len(levels)-1; i++ {
		specs = append(specs, ParamSpec{
			Name:    fmt.Sprintf("weight_1_%g", 1/levels[i].Fraction),
			Path:    fmt.Sprintf("pyramid.levels[%d].weight", i),
			Min:     0,
			Max:     0.95,
			Default: levels[i].Weight,
		})
	}
	return &ParamVector{Specs: specs}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// OutOfBounds returns the summed distance of v outside the parameter box.
func (pv *ParamVector) OutOfBounds(v []float64) float64 {
	var d float64
	for i, spec := range pv.Specs {
		if v[i] < spec.Min {
			d += spec.Min - v[i]
		}
		if v[i] > spec.Max {
			d += v[i] - spec.Max
		}
	}
	return d
}

// ApplyToConfig writes clamped weights into cfg's ladder.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		cfg.Pyramid.Levels[i].Weight = v
	}
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i := range v {
		v[i] = cfg.Pyramid.Levels[i].Weight
	}
	return v
}
