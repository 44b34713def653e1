package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/pthm-cable/dyeflow/device"
)

type target struct {
	texture uint32
	fbo     uint32
	width   int
	height  int
	format  device.Format
	filter  device.Filter
}

func (t *target) ID() uint32            { return t.texture }
func (t *target) Width() int            { return t.width }
func (t *target) Height() int           { return t.height }
func (t *target) Format() device.Format { return t.format }
func (t *target) Filter() device.Filter { return t.filter }

func (t *target) release() {
	gl.DeleteFramebuffers(1, &t.fbo)
	gl.DeleteTextures(1, &t.texture)
	t.fbo, t.texture = 0, 0
}

// attach binds the target's texture to the given unit and returns the
// unit for use as a sampler uniform value.
func (t *target) attach(unit int32) int32 {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	return unit
}

func glFormat(f device.Format) (internal int32, format uint32) {
	switch f {
	case device.FormatR:
		return gl.R16F, gl.RED
	default:
		return gl.RGBA16F, gl.RGBA
	}
}

func glFilter(f device.Filter) int32 {
	if f == device.FilterLinear {
		return gl.LINEAR
	}
	return gl.NEAREST
}

// NewTarget allocates a half-float texture with no mip chain, clamp-to-edge
// wrapping and the given filter, attaches it to a new framebuffer and
// clears it to zero. An incomplete framebuffer means the context cannot
// render to the format and is reported as device.ErrUnsupported.
func (d *Device) NewTarget(width, height int, format device.Format, filter device.Filter) (device.Target, error) {
	if d.closed {
		return nil, fmt.Errorf("opengl: device closed")
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("opengl: invalid target size %dx%d", width, height)
	}

	t := &target{width: width, height: height, format: format, filter: filter}
	internal, pixelFormat := glFormat(format)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.GenTextures(1, &t.texture)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, glFilter(filter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, glFilter(filter))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 0)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(width), int32(height), 0, pixelFormat, gl.HALF_FLOAT, nil)

	gl.GenFramebuffers(1, &t.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.texture, 0)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
		t.release()
		return nil, fmt.Errorf("opengl: %s %dx%d framebuffer incomplete (0x%x): %w",
			format, width, height, status, device.ErrUnsupported)
	}

	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	d.live[t.texture] = t
	return t, nil
}

// DestroyTarget releases the texture and framebuffer.
func (d *Device) DestroyTarget(dt device.Target) {
	t, ok := dt.(*target)
	if !ok || t.texture == 0 {
		return
	}
	delete(d.live, t.texture)
	t.release()
}

// Read copies the target back to the CPU as RGBA float32.
func (d *Device) Read(dt device.Target) ([]float32, error) {
	t, ok := dt.(*target)
	if !ok || t.texture == 0 {
		return nil, fmt.Errorf("opengl: read of unknown or destroyed target")
	}
	pix := make([]float32, t.width*t.height*4)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.ReadPixels(0, 0, int32(t.width), int32(t.height), gl.RGBA, gl.FLOAT, gl.Ptr(pix))
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	// GL fills missing alpha with 1; report absent channels as zero.
	if n := t.format.Channels(); n < 4 {
		for i := 0; i < len(pix); i += 4 {
			for ch := n; ch < 4; ch++ {
				pix[i+ch] = 0
			}
		}
	}
	return pix, nil
}

// Upload replaces the texture contents.
func (d *Device) Upload(dt device.Target, pixels []float32) error {
	t, ok := dt.(*target)
	if !ok || t.texture == 0 {
		return fmt.Errorf("opengl: upload to unknown or destroyed target")
	}
	if len(pixels) != t.width*t.height*4 {
		return fmt.Errorf("opengl: upload of %d values into %dx%d target", len(pixels), t.width, t.height)
	}
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, t.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(t.width), int32(t.height), gl.RGBA, gl.FLOAT, gl.Ptr(pixels))
	return nil
}
