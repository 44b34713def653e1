package telemetry

import (
	"fmt"

	"github.com/pthm-cable/dyeflow/device"
	"github.com/pthm-cable/dyeflow/fluid"
)

// Collector accumulates events within frame windows and produces
// FieldStats from a field readback at the end of each window.
type Collector struct {
	dev      device.Device
	interval int64

	windowStart   int64
	splatsAtStart int
	resizes       int
}

// NewCollector creates a collector that samples every interval frames.
// An interval of zero or less disables sampling.
func NewCollector(dev device.Device, interval int) *Collector {
	return &Collector{dev: dev, interval: int64(interval)}
}

// Enabled reports whether the collector samples at all.
func (c *Collector) Enabled() bool {
	return c != nil && c.interval > 0
}

// RecordResize records a field reprovision.
func (c *Collector) RecordResize() {
	c.resizes++
}

// ShouldFlush reports whether frame ends a window.
func (c *Collector) ShouldFlush(frame int64) bool {
	return c.Enabled() && frame-c.windowStart >= c.interval
}

// Flush reads the fields back, computes the window's stats and starts a
// new window. totalSplats is the simulation's running splat count.
func (c *Collector) Flush(fs *fluid.FieldSet, frame int64, simTime float64, totalSplats int) (FieldStats, error) {
	dye, err := c.read(fs.Dye.Read())
	if err != nil {
		return FieldStats{}, fmt.Errorf("reading dye: %w", err)
	}
	vel, err := c.read(fs.Velocity.Read())
	if err != nil {
		return FieldStats{}, fmt.Errorf("reading velocity: %w", err)
	}

	s := ComputeFieldStats(dye, vel)
	s.Frame = frame
	s.SimTime = simTime
	s.Splats = totalSplats - c.splatsAtStart
	s.Resizes = c.resizes

	c.windowStart = frame
	c.splatsAtStart = totalSplats
	c.resizes = 0
	return s, nil
}

func (c *Collector) read(t device.Target) (Field, error) {
	pix, err := c.dev.Read(t)
	if err != nil {
		return Field{}, err
	}
	return Field{Pix: pix, Width: t.Width(), Height: t.Height()}, nil
}
