package main

import (
	"math"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pthm-cable/dyeflow/config"
	"github.com/pthm-cable/dyeflow/device/soft"
	"github.com/pthm-cable/dyeflow/fluid"
	"github.com/pthm-cable/dyeflow/telemetry"
)

// Weights balance the fitness terms.
type Weights struct {
	Cost   float64 // per unit of pressure_iterations / max
	Motion float64 // reward for retained velocity, saturating at TargetSpeed
}

// TargetSpeed is the mean velocity magnitude (texels/s) past which a run
// stops earning the motion reward.
const TargetSpeed = 20.0

// Run geometry. Small grids keep one evaluation well under a second on
// the CPU device.
const (
	surfaceSize = 256
	simRes      = 32
	dyeRes      = 64
	dt          = 0.016
)

// runResult holds the readback from one seeded run.
type runResult struct {
	stats      telemetry.FieldStats
	cells      int
	iterations int
}

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params  *ParamVector
	frames  int
	seeds   []int64
	base    config.SimConfig
	pointer fluid.PointerOptions
	weights Weights

	mu        sync.Mutex
	lastStats telemetry.FieldStats
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, frames int, seeds []int64, baseCfg *config.Config, w Weights) *FitnessEvaluator {
	base := baseCfg.Sim
	base.SimResolution = simRes
	base.DyeResolution = dyeRes
	return &FitnessEvaluator{
		params:  params,
		frames:  frames,
		seeds:   seeds,
		base:    base,
		pointer: fluid.PointerOptionsFrom(baseCfg),
		weights: w,
	}
}

// LastStats returns the seed-averaged stats of the most recent evaluation.
func (fe *FitnessEvaluator) LastStats() telemetry.FieldStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastStats
}

// Evaluate computes fitness for raw parameter values (lower = better).
// Seeds run concurrently; a seed whose simulation cannot be built scores
// +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.base
	fe.params.ApplyToConfig(&cfg, x)

	results := make([]runResult, len(fe.seeds))
	var g errgroup.Group
	for i, seed := range fe.seeds {
		g.Go(func() error {
			r, err := fe.runSimulation(cfg, seed)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return math.Inf(1)
	}

	var total float64
	var avg telemetry.FieldStats
	for _, r := range results {
		total += fe.computeFitness(r)
		avg.DivergenceL2 += r.stats.DivergenceL2
		avg.SpeedMean += r.stats.SpeedMean
		avg.DyeMean += r.stats.DyeMean
		avg.Splats += r.stats.Splats
	}
	n := float64(len(results))
	avg.DivergenceL2 /= n
	avg.SpeedMean /= n
	avg.DyeMean /= n
	avg.Splats /= len(results)

	fe.mu.Lock()
	fe.lastStats = avg
	fe.mu.Unlock()

	return total / n
}

// runSimulation drives a circular stroke for fe.frames frames and reads
// the fields back.
func (fe *FitnessEvaluator) runSimulation(cfg config.SimConfig, seed int64) (runResult, error) {
	dev := soft.New(soft.WithNoiseSeed(seed), soft.WithWorkers(1))
	defer dev.Close()

	sim, err := fluid.New(dev, cfg, surfaceSize, surfaceSize,
		fluid.WithRand(rand.New(rand.NewSource(seed))),
		fluid.WithPointer(fe.pointer),
	)
	if err != nil {
		return runResult{}, err
	}
	defer sim.Close()

	phase := float64(seed%360) * math.Pi / 180
	for i := 0; i < fe.frames; i++ {
		t := float64(i) * dt
		x, y := circleAt(i, fe.frames, phase)
		sim.UpdatePointer(x, y, t)
		sim.ApplyInputs(t)
		sim.Step(dt)
	}

	fs := sim.Fields()
	dye, err := dev.Read(fs.Dye.Read())
	if err != nil {
		return runResult{}, err
	}
	vel, err := dev.Read(fs.Velocity.Read())
	if err != nil {
		return runResult{}, err
	}
	stats := telemetry.ComputeFieldStats(
		telemetry.Field{Pix: dye, Width: fs.Dye.Width(), Height: fs.Dye.Height()},
		telemetry.Field{Pix: vel, Width: fs.Velocity.Width(), Height: fs.Velocity.Height()},
	)
	stats.Frame = int64(fe.frames)
	stats.Splats = sim.SplatCount()

	return runResult{
		stats:      stats,
		cells:      fs.Velocity.Width() * fs.Velocity.Height(),
		iterations: cfg.PressureIterations,
	}, nil
}

// computeFitness scores one run: residual divergence relative to the flow
// speed, plus solver cost, minus retained motion.
func (fe *FitnessEvaluator) computeFitness(r runResult) float64 {
	rms := r.stats.DivergenceL2 / math.Sqrt(float64(max(r.cells, 1)))
	relDiv := rms / (r.stats.SpeedMean + 1e-6)

	maxIter := fe.params.Specs[1].Max
	cost := fe.weights.Cost * float64(r.iterations) / maxIter

	motion := fe.weights.Motion * math.Min(r.stats.SpeedMean/TargetSpeed, 1)

	return relDiv + cost - motion
}

// circleAt returns the pointer position for frame i of a stroke that
// circles the surface center once over frames.
func circleAt(i, frames int, phase float64) (x, y float64) {
	a := phase + 2*math.Pi*float64(i)/float64(max(frames, 1))
	c := surfaceSize / 2.0
	r := surfaceSize * 0.3
	return c + r*math.Cos(a), c + r*math.Sin(a)
}
