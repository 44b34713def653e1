package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/pthm-cable/dyeflow/device"
)

func (d *Device) mustTarget(t device.Target) *target {
	gt, ok := t.(*target)
	if !ok {
		panic(fmt.Sprintf("opengl: target %T does not belong to this device", t))
	}
	return gt
}

// Draw runs p into dst with blending disabled.
func (d *Device) Draw(dst device.Target, p device.Pass) {
	t := d.mustTarget(dst)
	gl.Disable(gl.BLEND)
	d.use(p)
	gl.BindFramebuffer(gl.FRAMEBUFFER, t.fbo)
	gl.Viewport(0, 0, int32(t.width), int32(t.height))
	d.blit()
}

// Present runs p into the default framebuffer with alpha blending, then
// restores the state the host's 2D renderer expects.
func (d *Device) Present(p device.Pass, width, height int) {
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	d.use(p)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(width), int32(height))
	d.blit()

	gl.UseProgram(0)
	gl.ActiveTexture(gl.TEXTURE0)
}

func (d *Device) blit() {
	gl.BindVertexArray(d.vao)
	gl.DrawElements(gl.TRIANGLES, 6, gl.UNSIGNED_SHORT, nil)
	gl.BindVertexArray(0)
}

func vec2(loc int32, v [2]float32) {
	gl.Uniform2f(loc, v[0], v[1])
}

// use activates the pass's program and sets its uniforms and samplers.
func (d *Device) use(p device.Pass) {
	r := d.programs
	switch p := p.(type) {
	case device.Clear:
		gl.UseProgram(r.clear.id)
		gl.Uniform1i(r.clear.uTexture, d.mustTarget(p.Source).attach(0))
		gl.Uniform1f(r.clear.value, p.Value)

	case device.Display:
		gl.UseProgram(r.display.id)
		gl.Uniform1i(r.display.uTexture, d.mustTarget(p.Source).attach(0))

	case device.Splat:
		s := r.splat
		gl.UseProgram(s.id)
		gl.Uniform1i(s.uTarget, d.mustTarget(p.Base).attach(0))
		gl.Uniform1f(s.aspectRatio, p.AspectRatio)
		gl.Uniform3f(s.color, p.Color[0], p.Color[1], p.Color[2])
		vec2(s.point, p.Point)
		gl.Uniform1f(s.radius, p.Radius)
		gl.Uniform1f(s.angle, p.Angle)
		gl.Uniform1f(s.irregularity, p.Irregularity)
		gl.Uniform1f(s.time, p.Time)

	case device.Advection:
		a := r.advection
		gl.UseProgram(a.id)
		vec2(a.texelSize, p.TexelSize)
		gl.Uniform1i(a.uVelocity, d.mustTarget(p.Velocity).attach(0))
		gl.Uniform1i(a.uSource, d.mustTarget(p.Source).attach(1))
		gl.Uniform1f(a.dt, p.DT)
		gl.Uniform1f(a.dissipation, p.Dissipation)

	case device.Divergence:
		gl.UseProgram(r.divergence.id)
		vec2(r.divergence.texelSize, p.TexelSize)
		gl.Uniform1i(r.divergence.uVelocity, d.mustTarget(p.Velocity).attach(0))

	case device.Curl:
		gl.UseProgram(r.curl.id)
		vec2(r.curl.texelSize, p.TexelSize)
		gl.Uniform1i(r.curl.uVelocity, d.mustTarget(p.Velocity).attach(0))

	case device.Vorticity:
		v := r.vorticity
		gl.UseProgram(v.id)
		vec2(v.texelSize, p.TexelSize)
		gl.Uniform1i(v.uVelocity, d.mustTarget(p.Velocity).attach(0))
		gl.Uniform1i(v.uCurl, d.mustTarget(p.Curl).attach(1))
		gl.Uniform1f(v.curl, p.Strength)
		gl.Uniform1f(v.dt, p.DT)

	case device.Pressure:
		gl.UseProgram(r.pressure.id)
		vec2(r.pressure.texelSize, p.TexelSize)
		gl.Uniform1i(r.pressure.uDivergence, d.mustTarget(p.Divergence).attach(0))
		gl.Uniform1i(r.pressure.uPressure, d.mustTarget(p.Pressure).attach(1))

	case device.GradientSubtract:
		g := r.gradientSubtract
		gl.UseProgram(g.id)
		vec2(g.texelSize, p.TexelSize)
		gl.Uniform1i(g.uPressure, d.mustTarget(p.Pressure).attach(0))
		gl.Uniform1i(g.uVelocity, d.mustTarget(p.Velocity).attach(1))

	default:
		panic(fmt.Sprintf("opengl: unsupported pass %T", p))
	}
}
