// Package fluid implements a stable-fluids solver that advects dye and
// velocity fields on a device.Device. A host drives one Simulation per
// surface with a fixed per-frame order:
//
//	sim.Resize(w, h)
//	sim.ApplyInputs(t)
//	sim.Step(dt)
//	sim.Render()
//
// Pointer samples may arrive at any point between frames through
// UpdatePointer. A Simulation is not safe for concurrent use.
package fluid

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/dyeflow/config"
	"github.com/pthm-cable/dyeflow/device"
)

// ErrClosed is returned by Reset after Close.
var ErrClosed = errors.New("fluid: simulation closed")

// PointerOptions controls how pointer samples become splats.
type PointerOptions struct {
	Color         [3]float32
	MoveThreshold float64 // minimum scaled speed that counts as movement
	SpeedScale    float64 // tracked speed -> splat speed
}

// DefaultPointerOptions returns the built-in pointer behavior: a blue dye,
// a 0.1 movement threshold and speed divided by 1000.
func DefaultPointerOptions() PointerOptions {
	return PointerOptions{
		Color:         [3]float32{0.3, 0.5, 1.0},
		MoveThreshold: 0.1,
		SpeedScale:    0.001,
	}
}

// PointerOptionsFrom converts the pointer section of a loaded config.
func PointerOptionsFrom(cfg *config.Config) PointerOptions {
	return PointerOptions{
		Color:         cfg.Derived.PointerColor,
		MoveThreshold: cfg.Pointer.MoveThreshold,
		SpeedScale:    cfg.Pointer.SpeedScale,
	}
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithRand sets the random source used for splat radii and secondary
// splat scatter. The default is seeded from the clock.
func WithRand(r RandSource) Option {
	return func(s *Simulation) {
		if r != nil {
			s.inj.rand = r
		}
	}
}

// WithPointer overrides the pointer options.
func WithPointer(p PointerOptions) Option {
	return func(s *Simulation) {
		s.pointerOpts = p
	}
}

// WithPhaseHook registers a callback invoked before each solver phase.
func WithPhaseHook(h PhaseHook) Option {
	return func(s *Simulation) {
		s.hook = h
	}
}

// Simulation owns a field set and drives the solver passes over it.
type Simulation struct {
	dev         device.Device
	cfg         config.SimConfig
	pool        *targetPool
	fields      *FieldSet
	inj         *injector
	solver      *solver
	presenter   *presenter
	pointer     Pointer
	pointerOpts PointerOptions
	hook        PhaseHook

	width, height int
	simSize       Size
	dyeSize       Size
	closed        bool
}

// New allocates the field set for a drawable of width x height pixels.
// It fails if cfg is invalid or the device cannot allocate the targets;
// in the latter case the error wraps the device's error, typically
// device.ErrUnsupported.
func New(dev device.Device, cfg config.SimConfig, width, height int, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("fluid: invalid surface size %dx%d", width, height)
	}

	s := &Simulation{
		dev:  dev,
		cfg:  cfg,
		pool: newTargetPool(dev),
		inj: &injector{
			dev:        dev,
			rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
			baseRadius: cfg.BaseRadius(),
		},
		solver:      &solver{dev: dev, cfg: cfg},
		presenter:   &presenter{dev: dev},
		pointerOpts: DefaultPointerOptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pointer.Color = s.pointerOpts.Color

	if err := s.provision(width, height); err != nil {
		return nil, fmt.Errorf("fluid: %w", err)
	}
	return s, nil
}

func (s *Simulation) provision(width, height int) error {
	simSize := Resolution(s.cfg.SimResolution, width, height)
	dyeSize := Resolution(s.cfg.DyeResolution, width, height)

	fields, err := s.pool.provision(simSize, dyeSize)
	if err != nil {
		s.fields = nil
		return err
	}
	s.fields = fields
	s.width, s.height = width, height
	s.simSize, s.dyeSize = simSize, dyeSize
	return nil
}

// Resize reprovisions every field for a new drawable size and reports
// whether it did. Field contents are discarded, not resampled. Unchanged
// or empty sizes are ignored.
func (s *Simulation) Resize(width, height int) bool {
	if s.closed || width <= 0 || height <= 0 {
		return false
	}
	if width == s.width && height == s.height && s.fields != nil {
		return false
	}
	if err := s.provision(width, height); err != nil {
		// Frames stay no-ops until a later resize succeeds.
		slog.Error("fluid resize failed", "width", width, "height", height, "error", err)
	}
	return true
}

// Reset zeroes every field at the current size.
func (s *Simulation) Reset() error {
	if s.closed {
		return ErrClosed
	}
	if err := s.provision(s.width, s.height); err != nil {
		return fmt.Errorf("fluid: %w", err)
	}
	return nil
}

// UpdatePointer records a pointer sample in surface pixels, origin
// top-left, at time t in seconds.
func (s *Simulation) UpdatePointer(x, y, t float64) {
	s.pointer.update(x, y, t, s.width, s.height, s.cfg.SplatForce, s.pointerOpts.MoveThreshold)
}

// ApplyInputs emits one multi-splat for the pointer if it moved since the
// last call.
func (s *Simulation) ApplyInputs(t float64) {
	if !s.ready() || !s.pointer.Moved {
		return
	}
	s.pointer.Moved = false

	p := &s.pointer
	s.inj.multiSplat(s.fields, s.aspect(), Splat{
		X:     p.X,
		Y:     p.Y,
		DX:    p.DX,
		DY:    p.DY,
		Color: p.Color,
		Speed: p.Speed * s.pointerOpts.SpeedScale,
		Angle: p.Angle,
		Time:  t,
	})
}

// Splat injects a single multi-splat directly, bypassing the pointer.
func (s *Simulation) Splat(sp Splat) {
	if !s.ready() {
		return
	}
	s.inj.multiSplat(s.fields, s.aspect(), sp)
}

// Step advances the simulation by dt seconds. The caller bounds dt;
// a non-positive dt does nothing.
func (s *Simulation) Step(dt float64) {
	if !s.ready() || dt <= 0 {
		return
	}
	s.solver.step(s.fields, float32(dt), s.hook)
}

// Render draws the dye field to the visible surface.
func (s *Simulation) Render() {
	if !s.ready() {
		return
	}
	s.presenter.render(s.fields, s.width, s.height)
}

// Close releases every target. The device itself stays open.
func (s *Simulation) Close() {
	if s.closed {
		return
	}
	s.pool.destroy()
	s.fields = nil
	s.closed = true
}

func (s *Simulation) ready() bool {
	return !s.closed && s.fields != nil
}

func (s *Simulation) aspect() float32 {
	return float32(s.width) / float32(s.height)
}

// Fields returns the current field set, nil after Close.
func (s *Simulation) Fields() *FieldSet { return s.fields }

// Pointer returns a copy of the pointer state.
func (s *Simulation) Pointer() Pointer { return s.pointer }

// SplatCount returns the number of single splats applied so far.
func (s *Simulation) SplatCount() int { return s.inj.count }

// SimSize returns the velocity and pressure grid size.
func (s *Simulation) SimSize() Size { return s.simSize }

// DyeSize returns the dye grid size.
func (s *Simulation) DyeSize() Size { return s.dyeSize }

// SurfaceSize returns the drawable size the fields were provisioned for.
func (s *Simulation) SurfaceSize() (width, height int) { return s.width, s.height }
