package fluid

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/dyeflow/device"
)

// DoubleTarget is a pair of same-shaped targets with read and write roles.
// Passes sample Read and render into Write; Swap exchanges the roles.
type DoubleTarget struct {
	read  device.Target
	write device.Target
}

// Read returns the target holding the current field.
func (d *DoubleTarget) Read() device.Target { return d.read }

// Write returns the target the next pass renders into.
func (d *DoubleTarget) Write() device.Target { return d.write }

// Swap exchanges the read and write roles without copying.
func (d *DoubleTarget) Swap() { d.read, d.write = d.write, d.read }

// Width returns the texel width of both targets.
func (d *DoubleTarget) Width() int { return d.read.Width() }

// Height returns the texel height of both targets.
func (d *DoubleTarget) Height() int { return d.read.Height() }

// TexelSize returns the UV size of one texel.
func (d *DoubleTarget) TexelSize() [2]float32 { return device.TexelSize(d.read) }

// FieldSet holds every target the solver uses.
type FieldSet struct {
	Velocity   *DoubleTarget // RGBA, sim resolution, linear
	Dye        *DoubleTarget // RGBA, dye resolution, linear
	Pressure   *DoubleTarget // R, sim resolution, nearest
	Divergence device.Target // R, sim resolution, nearest
	Curl       device.Target // R, sim resolution, nearest
}

// targetPool allocates the field set and is the only owner of its targets.
type targetPool struct {
	dev     device.Device
	created []device.Target
}

func newTargetPool(dev device.Device) *targetPool {
	return &targetPool{dev: dev}
}

func (p *targetPool) create(w, h int, format device.Format, filter device.Filter) (device.Target, error) {
	t, err := p.dev.NewTarget(w, h, format, filter)
	if err != nil {
		return nil, fmt.Errorf("creating %s target %dx%d: %w", format, w, h, err)
	}
	p.created = append(p.created, t)
	return t, nil
}

func (p *targetPool) createDouble(w, h int, format device.Format, filter device.Filter) (*DoubleTarget, error) {
	read, err := p.create(w, h, format, filter)
	if err != nil {
		return nil, err
	}
	write, err := p.create(w, h, format, filter)
	if err != nil {
		return nil, err
	}
	return &DoubleTarget{read: read, write: write}, nil
}

// provision destroys any existing targets and allocates a fresh, zeroed
// field set at the given resolutions. On failure nothing stays allocated.
func (p *targetPool) provision(sim, dye Size) (*FieldSet, error) {
	p.destroy()

	fs, err := p.allocate(sim, dye)
	if err != nil {
		p.destroy()
		return nil, err
	}

	slog.Info("fields provisioned",
		"sim_width", sim.Width, "sim_height", sim.Height,
		"dye_width", dye.Width, "dye_height", dye.Height,
		"targets", len(p.created),
	)
	return fs, nil
}

func (p *targetPool) allocate(sim, dye Size) (*FieldSet, error) {
	fs := &FieldSet{}
	var err error

	if fs.Velocity, err = p.createDouble(sim.Width, sim.Height, device.FormatRGBA, device.FilterLinear); err != nil {
		return nil, fmt.Errorf("velocity: %w", err)
	}
	if fs.Dye, err = p.createDouble(dye.Width, dye.Height, device.FormatRGBA, device.FilterLinear); err != nil {
		return nil, fmt.Errorf("dye: %w", err)
	}
	if fs.Pressure, err = p.createDouble(sim.Width, sim.Height, device.FormatR, device.FilterNearest); err != nil {
		return nil, fmt.Errorf("pressure: %w", err)
	}
	if fs.Divergence, err = p.create(sim.Width, sim.Height, device.FormatR, device.FilterNearest); err != nil {
		return nil, fmt.Errorf("divergence: %w", err)
	}
	if fs.Curl, err = p.create(sim.Width, sim.Height, device.FormatR, device.FilterNearest); err != nil {
		return nil, fmt.Errorf("curl: %w", err)
	}
	return fs, nil
}

// destroy releases every target the pool has allocated.
func (p *targetPool) destroy() {
	for _, t := range p.created {
		p.dev.DestroyTarget(t)
	}
	p.created = p.created[:0]
}
