// Package device defines the render abstraction the fluid solver runs on:
// fixed-format off-screen targets and the nine typed passes that read and
// write them. Backends live in the opengl (GPU) and soft (CPU reference)
// subpackages.
package device

import "errors"

// ErrUnsupported is returned when the graphics context lacks a capability
// the simulation requires (float render targets, framebuffer support).
var ErrUnsupported = errors.New("device: required capability unavailable")

// Format is the pixel format of a render target.
type Format int

const (
	FormatR    Format = iota // one channel
	FormatRGBA               // four channels
)

// Channels returns the number of stored channels.
func (f Format) Channels() int {
	switch f {
	case FormatR:
		return 1
	default:
		return 4
	}
}

func (f Format) String() string {
	switch f {
	case FormatR:
		return "r"
	default:
		return "rgba"
	}
}

// Filter is the sampling filter of a render target.
type Filter int

const (
	FilterNearest Filter = iota
	FilterLinear
)

// Target is an off-screen texture bound to a framebuffer.
// Wrap mode is always clamp-to-edge and there is no mip chain.
type Target interface {
	// ID identifies the underlying texture. IDs are never reused while
	// the target is alive.
	ID() uint32
	Width() int
	Height() int
	Format() Format
	Filter() Filter
}

// TexelSize returns the UV size of one texel of t.
func TexelSize(t Target) [2]float32 {
	return [2]float32{1 / float32(t.Width()), 1 / float32(t.Height())}
}

// Device allocates targets and executes passes.
//
// Draw binds dst as the render destination, binds the pass's source
// targets as samplers and rasterises a full-screen quad over dst.
// Present does the same against the visible surface of the given size.
// Passes are executed in call order; a target must not be both sampled
// and written by one pass.
type Device interface {
	NewTarget(width, height int, format Format, filter Filter) (Target, error)
	DestroyTarget(t Target)

	Draw(dst Target, p Pass)
	Present(p Pass, width, height int)

	// Read returns the target contents as RGBA float32 rows, bottom row
	// first. Channels absent from the target's format read as zero.
	Read(t Target) ([]float32, error)
	// Upload replaces the target contents with RGBA float32 rows,
	// bottom row first.
	Upload(t Target, pixels []float32) error

	Close()
}
