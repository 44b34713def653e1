// Package soft is a CPU reference implementation of device.Device.
//
// Every pass is evaluated per destination texel with the same sampling
// rules as the GPU shaders (clamp-to-edge, nearest or bilinear), on
// float32 storage. It backs the simulation tests and the debug tooling;
// it is not meant to drive an interactive backdrop at full resolution.
package soft

import (
	"fmt"
	"runtime"

	"github.com/ojrac/opensimplex-go"

	"github.com/pthm-cable/dyeflow/device"
)

// Option configures a Device.
type Option func(*Device)

// WithWorkers sets the number of row bands rasterised in parallel.
func WithWorkers(n int) Option {
	return func(d *Device) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithNoiseSeed seeds the simplex noise used by the splat pass.
func WithNoiseSeed(seed int64) Option {
	return func(d *Device) {
		d.noise = opensimplex.New(seed)
	}
}

// Device rasterises passes on the CPU.
type Device struct {
	workers int
	noise   opensimplex.Noise
	nextID  uint32
	live    map[uint32]*target

	screen       []float32
	screenWidth  int
	screenHeight int

	draws    int
	presents int
	lastDest uint32
	closed   bool
}

var _ device.Device = (*Device)(nil)

// New creates a CPU device.
func New(opts ...Option) *Device {
	d := &Device{
		workers: runtime.GOMAXPROCS(0),
		noise:   opensimplex.New(0),
		live:    make(map[uint32]*target),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewTarget allocates a zeroed target.
func (d *Device) NewTarget(width, height int, format device.Format, filter device.Filter) (device.Target, error) {
	if d.closed {
		return nil, fmt.Errorf("soft: device closed")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("soft: invalid target size %dx%d", width, height)
	}
	d.nextID++
	t := newTarget(d.nextID, width, height, format, filter)
	d.live[t.id] = t
	return t, nil
}

// DestroyTarget releases a target. Destroying twice is a no-op.
func (d *Device) DestroyTarget(t device.Target) {
	st, ok := t.(*target)
	if !ok || st.freed {
		return
	}
	st.freed = true
	st.pix = nil
	delete(d.live, st.id)
}

// LiveTargets returns the number of allocated, not yet destroyed targets.
func (d *Device) LiveTargets() int {
	return len(d.live)
}

// Draw runs p over dst.
func (d *Device) Draw(dst device.Target, p device.Pass) {
	out := d.mustTarget(dst)
	fn := d.shaderFor(p)
	d.rasterize(out.width, out.height, fn, out.store)
	d.draws++
	d.lastDest = out.id
}

// Present runs p over the visible surface, resizing it as needed.
// The surface holds 8-bit-like values clamped to [0,1].
func (d *Device) Present(p device.Pass, width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if width != d.screenWidth || height != d.screenHeight {
		d.screen = make([]float32, width*height*4)
		d.screenWidth, d.screenHeight = width, height
	}
	fn := d.shaderFor(p)
	d.rasterize(width, height, fn, func(x, y int, c vec4) {
		i := (y*width + x) * 4
		for ch := 0; ch < 4; ch++ {
			d.screen[i+ch] = clamp01(c[ch])
		}
	})
	d.presents++
	d.lastDest = 0
}

// Screen returns the last presented surface as RGBA rows, bottom first.
func (d *Device) Screen() (pix []float32, width, height int) {
	return d.screen, d.screenWidth, d.screenHeight
}

// Draws returns how many off-screen passes have run.
func (d *Device) Draws() int { return d.draws }

// Presents returns how many passes have targeted the visible surface.
func (d *Device) Presents() int { return d.presents }

// LastDestination returns the ID of the most recent draw destination,
// 0 for the visible surface.
func (d *Device) LastDestination() uint32 { return d.lastDest }

// Read copies a target's texels.
func (d *Device) Read(t device.Target) ([]float32, error) {
	st, ok := t.(*target)
	if !ok || st.freed {
		return nil, fmt.Errorf("soft: read of unknown or destroyed target")
	}
	out := make([]float32, len(st.pix))
	copy(out, st.pix)
	return out, nil
}

// Upload replaces a target's texels.
func (d *Device) Upload(t device.Target, pixels []float32) error {
	st, ok := t.(*target)
	if !ok || st.freed {
		return fmt.Errorf("soft: upload to unknown or destroyed target")
	}
	if len(pixels) != len(st.pix) {
		return fmt.Errorf("soft: upload of %d values into %dx%d target", len(pixels), st.width, st.height)
	}
	for i := 0; i < st.width*st.height; i++ {
		st.store(i%st.width, i/st.width, vec4{pixels[i*4], pixels[i*4+1], pixels[i*4+2], pixels[i*4+3]})
	}
	return nil
}

// Close releases every live target.
func (d *Device) Close() {
	for _, t := range d.live {
		t.freed = true
		t.pix = nil
	}
	d.live = make(map[uint32]*target)
	d.closed = true
}

func (d *Device) mustTarget(t device.Target) *target {
	st, ok := t.(*target)
	if !ok {
		panic(fmt.Sprintf("soft: target %T does not belong to this device", t))
	}
	if st.freed {
		panic(fmt.Sprintf("soft: target %d used after destroy", st.id))
	}
	return st
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
