package fluid

import (
	"github.com/pthm-cable/dyeflow/config"
	"github.com/pthm-cable/dyeflow/device"
)

// Phase names one stage of a solver step, for timing hooks.
type Phase string

const (
	PhaseVorticity  Phase = "vorticity"
	PhaseProjection Phase = "projection"
	PhaseAdvection  Phase = "advection"
)

// PhaseHook is called before each solver phase begins.
type PhaseHook func(Phase)

// solver advances the fields by one time step.
type solver struct {
	dev device.Device
	cfg config.SimConfig
}

// step runs the full pass sequence: vorticity confinement, pressure
// projection, then advection of velocity and dye.
func (s *solver) step(fs *FieldSet, dt float32, hook PhaseHook) {
	if hook != nil {
		hook(PhaseVorticity)
	}
	s.confine(fs, dt)

	if hook != nil {
		hook(PhaseProjection)
	}
	s.project(fs)

	if hook != nil {
		hook(PhaseAdvection)
	}
	s.advect(fs, dt)
}

func (s *solver) confine(fs *FieldSet, dt float32) {
	texel := fs.Velocity.TexelSize()

	s.dev.Draw(fs.Curl, device.Curl{
		Velocity:  fs.Velocity.Read(),
		TexelSize: texel,
	})

	s.dev.Draw(fs.Velocity.Write(), device.Vorticity{
		Velocity:  fs.Velocity.Read(),
		Curl:      fs.Curl,
		TexelSize: texel,
		Strength:  float32(s.cfg.Curl),
		DT:        dt,
	})
	fs.Velocity.Swap()
}

// project makes the velocity field approximately divergence-free.
// Pressure from the previous step, scaled by the pressure dissipation,
// seeds the Jacobi solve.
func (s *solver) project(fs *FieldSet) {
	texel := fs.Velocity.TexelSize()

	s.dev.Draw(fs.Divergence, device.Divergence{
		Velocity:  fs.Velocity.Read(),
		TexelSize: texel,
	})

	s.dev.Draw(fs.Pressure.Write(), device.Clear{
		Source: fs.Pressure.Read(),
		Value:  float32(s.cfg.PressureDissipation),
	})
	fs.Pressure.Swap()

	for i := 0; i < s.cfg.PressureIterations; i++ {
		s.dev.Draw(fs.Pressure.Write(), device.Pressure{
			Pressure:   fs.Pressure.Read(),
			Divergence: fs.Divergence,
			TexelSize:  texel,
		})
		fs.Pressure.Swap()
	}

	s.dev.Draw(fs.Velocity.Write(), device.GradientSubtract{
		Pressure:  fs.Pressure.Read(),
		Velocity:  fs.Velocity.Read(),
		TexelSize: texel,
	})
	fs.Velocity.Swap()
}

func (s *solver) advect(fs *FieldSet, dt float32) {
	texel := fs.Velocity.TexelSize()

	s.dev.Draw(fs.Velocity.Write(), device.Advection{
		Velocity:    fs.Velocity.Read(),
		Source:      fs.Velocity.Read(),
		TexelSize:   texel,
		DT:          dt,
		Dissipation: float32(s.cfg.VelocityDissipation),
	})
	fs.Velocity.Swap()

	s.dev.Draw(fs.Dye.Write(), device.Advection{
		Velocity:    fs.Velocity.Read(),
		Source:      fs.Dye.Read(),
		TexelSize:   fs.Dye.TexelSize(),
		DT:          dt,
		Dissipation: float32(s.cfg.DensityDissipation),
	})
	fs.Dye.Swap()
}
