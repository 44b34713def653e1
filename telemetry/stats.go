package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FieldStats summarizes the simulation fields over one stats window.
type FieldStats struct {
	Frame   int64   `csv:"frame"`
	SimTime float64 `csv:"sim_time"`

	// Events during window
	Splats  int `csv:"splats"`
	Resizes int `csv:"resizes"` // field reprovisions, including clears

	// Dye intensity: per texel max(r, g, b), sampled at window end
	DyeMax   float64 `csv:"dye_max"`
	DyeMean  float64 `csv:"dye_mean"`
	DyeP50   float64 `csv:"dye_p50"`
	DyeP90   float64 `csv:"dye_p90"`
	DyeTotal float64 `csv:"dye_total"`

	// Velocity magnitude in texels per second
	SpeedMax  float64 `csv:"speed_max"`
	SpeedMean float64 `csv:"speed_mean"`

	// L2 norm of the central-difference divergence of velocity
	DivergenceL2 float64 `csv:"divergence_l2"`
}

// Field is an RGBA float32 readback, bottom row first.
type Field struct {
	Pix    []float32
	Width  int
	Height int
}

// texel returns channel ch at (x, y), clamped to the edge.
func (f Field) texel(x, y, ch int) float64 {
	x = min(max(x, 0), f.Width-1)
	y = min(max(y, 0), f.Height-1)
	return float64(f.Pix[(y*f.Width+x)*4+ch])
}

// DyeIntensity returns max(r, g, b) for each texel.
func DyeIntensity(dye Field) []float64 {
	n := dye.Width * dye.Height
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		r, g, b := dye.Pix[i*4], dye.Pix[i*4+1], dye.Pix[i*4+2]
		out[i] = float64(max(r, g, b))
	}
	return out
}

// Speeds returns the velocity magnitude for each texel.
func Speeds(vel Field) []float64 {
	n := vel.Width * vel.Height
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = math.Hypot(float64(vel.Pix[i*4]), float64(vel.Pix[i*4+1]))
	}
	return out
}

// Divergence returns the central-difference divergence of vel with
// clamp-to-edge neighbors, matching the divergence pass.
func Divergence(vel Field) []float64 {
	out := make([]float64, vel.Width*vel.Height)
	for y := 0; y < vel.Height; y++ {
		for x := 0; x < vel.Width; x++ {
			r := vel.texel(x+1, y, 0)
			l := vel.texel(x-1, y, 0)
			t := vel.texel(x, y+1, 1)
			b := vel.texel(x, y-1, 1)
			out[y*vel.Width+x] = 0.5 * (r - l + t - b)
		}
	}
	return out
}

// ComputeFieldStats fills the dye, speed and divergence columns.
func ComputeFieldStats(dye, vel Field) FieldStats {
	var s FieldStats

	if dye.Width > 0 && dye.Height > 0 {
		intensity := DyeIntensity(dye)
		s.DyeMax = floats.Max(intensity)
		s.DyeMean = stat.Mean(intensity, nil)
		s.DyeTotal = floats.Sum(intensity)

		sort.Float64s(intensity)
		s.DyeP50 = stat.Quantile(0.5, stat.Empirical, intensity, nil)
		s.DyeP90 = stat.Quantile(0.9, stat.Empirical, intensity, nil)
	}

	if vel.Width > 0 && vel.Height > 0 {
		speeds := Speeds(vel)
		s.SpeedMax = floats.Max(speeds)
		s.SpeedMean = stat.Mean(speeds, nil)
		s.DivergenceL2 = floats.Norm(Divergence(vel), 2)
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s FieldStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("frame", s.Frame),
		slog.Float64("sim_time", s.SimTime),
		slog.Int("splats", s.Splats),
		slog.Int("resizes", s.Resizes),
		slog.Float64("dye_max", s.DyeMax),
		slog.Float64("dye_mean", s.DyeMean),
		slog.Float64("dye_p50", s.DyeP50),
		slog.Float64("dye_p90", s.DyeP90),
		slog.Float64("dye_total", s.DyeTotal),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("divergence_l2", s.DivergenceL2),
	)
}

// LogStats logs the field stats.
func (s FieldStats) LogStats() {
	slog.Info("fields",
		"frame", s.Frame,
		"sim_time", s.SimTime,
		"splats", s.Splats,
		"resizes", s.Resizes,
		"dye_max", s.DyeMax,
		"dye_mean", s.DyeMean,
		"dye_p90", s.DyeP90,
		"speed_max", s.SpeedMax,
		"divergence_l2", s.DivergenceL2,
	)
}
