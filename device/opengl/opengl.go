// Package opengl implements device.Device on an OpenGL 3.3 core context
// with half-float render targets.
//
// The context must already be current on the calling thread (the host
// creates it through raylib). All methods must be called from that thread.
package opengl

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/pthm-cable/dyeflow/device"
)

// Device runs fluid passes as full-screen quad draws.
type Device struct {
	programs *registry

	vao, vbo, ebo uint32

	live   map[uint32]*target
	closed bool
}

var _ device.Device = (*Device)(nil)

// New loads GL function pointers, verifies that half-float targets can be
// rendered to and builds the program registry.
func New() (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initializing gl: %w: %v", device.ErrUnsupported, err)
	}

	slog.Info("opengl device",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)),
	)

	d := &Device{live: make(map[uint32]*target)}

	// Capability check: a linear-filtered RGBA16F colour attachment must be complete.
	check, err := d.NewTarget(4, 4, device.FormatRGBA, device.FilterLinear)
	if err != nil {
		return nil, err
	}
	d.DestroyTarget(check)

	d.programs, err = buildRegistry()
	if err != nil {
		return nil, fmt.Errorf("building programs: %w", err)
	}

	d.initQuad()
	return d, nil
}

// initQuad uploads the two-triangle full-screen quad shared by every pass.
func (d *Device) initQuad() {
	vertices := []float32{-1, -1, -1, 1, 1, 1, 1, -1}
	indices := []uint16{0, 1, 2, 0, 2, 3}

	gl.GenVertexArrays(1, &d.vao)
	gl.GenBuffers(1, &d.vbo)
	gl.GenBuffers(1, &d.ebo)

	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, d.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*2, gl.Ptr(indices), gl.STATIC_DRAW)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 2*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
}

// Close deletes every live target, the programs and the quad buffers.
func (d *Device) Close() {
	if d.closed {
		return
	}
	for _, t := range d.live {
		t.release()
	}
	d.live = nil
	if d.programs != nil {
		d.programs.delete()
	}
	gl.DeleteBuffers(1, &d.vbo)
	gl.DeleteBuffers(1, &d.ebo)
	gl.DeleteVertexArrays(1, &d.vao)
	d.closed = true
}
