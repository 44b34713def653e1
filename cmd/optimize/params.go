// Package main tunes solver parameters with CMA-ES against a scripted,
// headless stroke on the CPU device.
package main

import (
	"math"

	"github.com/pthm-cable/dyeflow/config"
)

// ParamSpec defines a single tunable solver parameter.
type ParamSpec struct {
	Name    string // Human-readable name
	Path    string // Config path for logging
	Min     float64
	Max     float64
	Default float64
	Integer bool // rounded before use
}

// ParamVector holds the set of tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
// Dye resolution and splat force stay fixed; they only change the look.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "pressure_dissipation", Path: "sim.pressure_dissipation", Min: 0, Max: 1, Default: 0.8},
			{Name: "pressure_iterations", Path: "sim.pressure_iterations", Min: 4, Max: 60, Default: 20, Integer: true},
			{Name: "velocity_dissipation", Path: "sim.velocity_dissipation", Min: 0.8, Max: 1, Default: 0.97},
			{Name: "curl", Path: "sim.curl", Min: 0, Max: 60, Default: 35},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, ps := range pv.Specs {
		v[i] = ps.Default
	}
	return v
}

// Normalize converts raw parameter values to the [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, ps := range pv.Specs {
		normalized[i] = (raw[i] - ps.Min) / (ps.Max - ps.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, ps := range pv.Specs {
		raw[i] = ps.Min + normalized[i]*(ps.Max-ps.Min)
	}
	return raw
}

// Clamp bounds every value and rounds integer parameters.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, ps := range pv.Specs {
		val := math.Min(math.Max(v[i], ps.Min), ps.Max)
		if ps.Integer {
			val = math.Round(val)
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig writes parameter values into sim. Order must match Specs.
func (pv *ParamVector) ApplyToConfig(sim *config.SimConfig, values []float64) {
	clamped := pv.Clamp(values)
	sim.PressureDissipation = clamped[0]
	sim.PressureIterations = int(clamped[1])
	sim.VelocityDissipation = clamped[2]
	sim.Curl = clamped[3]
}

// ExtractFromConfig reads the current parameter values from sim.
func (pv *ParamVector) ExtractFromConfig(sim config.SimConfig) []float64 {
	return []float64{
		sim.PressureDissipation,
		float64(sim.PressureIterations),
		sim.VelocityDissipation,
		sim.Curl,
	}
}
