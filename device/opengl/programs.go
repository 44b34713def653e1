package opengl

import (
	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/pthm-cable/dyeflow/device"
)

// uniformSet looks up resolved uniform locations. Uniforms the driver
// optimised away resolve to -1, which GL treats as a no-op target.
type uniformSet map[string]int32

func (u uniformSet) loc(name string) int32 {
	if l, ok := u[name]; ok {
		return l
	}
	return -1
}

type program struct {
	id uint32
}

type clearProgram struct {
	program
	uTexture, value int32
}

type displayProgram struct {
	program
	uTexture int32
}

type splatProgram struct {
	program
	uTarget, aspectRatio, color, point, radius, angle, irregularity, time int32
}

type advectionProgram struct {
	program
	uVelocity, uSource, texelSize, dt, dissipation int32
}

type divergenceProgram struct {
	program
	uVelocity, texelSize int32
}

type curlProgram struct {
	program
	uVelocity, texelSize int32
}

type vorticityProgram struct {
	program
	uVelocity, uCurl, texelSize, curl, dt int32
}

type pressureProgram struct {
	program
	uPressure, uDivergence, texelSize int32
}

type gradientSubtractProgram struct {
	program
	uPressure, uVelocity, texelSize int32
}

// registry holds one linked program per pass, each with its uniform
// locations resolved at link time.
type registry struct {
	clear            clearProgram
	display          displayProgram
	splat            splatProgram
	advection        advectionProgram
	divergence       divergenceProgram
	curl             curlProgram
	vorticity        vorticityProgram
	pressure         pressureProgram
	gradientSubtract gradientSubtractProgram
}

var fragmentSources = [device.NumPrograms]string{
	device.ProgramClear:            "clear.frag",
	device.ProgramDisplay:          "display.frag",
	device.ProgramSplat:            "splat.frag",
	device.ProgramAdvection:        "advection.frag",
	device.ProgramDivergence:       "divergence.frag",
	device.ProgramCurl:             "curl.frag",
	device.ProgramVorticity:        "vorticity.frag",
	device.ProgramPressure:         "pressure.frag",
	device.ProgramGradientSubtract: "gradient_subtract.frag",
}

// buildRegistry compiles the shared vertex shader and all fragment
// shaders and links the nine programs. Any failure deletes everything
// built so far and returns a *BuildError.
func buildRegistry() (*registry, error) {
	vertSrc, err := loadShaderSource("base.vert")
	if err != nil {
		return nil, err
	}
	vert, err := compileShader("base.vert", vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	defer gl.DeleteShader(vert)

	var ids [device.NumPrograms]uint32
	var locs [device.NumPrograms]uniformSet
	cleanup := func() {
		for _, id := range ids {
			if id != 0 {
				gl.DeleteProgram(id)
			}
		}
	}

	for p := device.Program(0); p < device.NumPrograms; p++ {
		fragSrc, err := loadShaderSource(fragmentSources[p])
		if err != nil {
			cleanup()
			return nil, err
		}
		frag, err := compileShader(fragmentSources[p], fragSrc, gl.FRAGMENT_SHADER)
		if err != nil {
			cleanup()
			return nil, err
		}
		id, err := linkProgram(p.String(), vert, frag)
		gl.DeleteShader(frag)
		if err != nil {
			cleanup()
			return nil, err
		}
		ids[p] = id
		locs[p] = activeUniforms(id)
	}

	r := &registry{}

	u := locs[device.ProgramClear]
	r.clear = clearProgram{
		program:  program{ids[device.ProgramClear]},
		uTexture: u.loc("uTexture"),
		value:    u.loc("value"),
	}

	u = locs[device.ProgramDisplay]
	r.display = displayProgram{
		program:  program{ids[device.ProgramDisplay]},
		uTexture: u.loc("uTexture"),
	}

	u = locs[device.ProgramSplat]
	r.splat = splatProgram{
		program:      program{ids[device.ProgramSplat]},
		uTarget:      u.loc("uTarget"),
		aspectRatio:  u.loc("aspectRatio"),
		color:        u.loc("color"),
		point:        u.loc("point"),
		radius:       u.loc("radius"),
		angle:        u.loc("angle"),
		irregularity: u.loc("irregularity"),
		time:         u.loc("time"),
	}

	u = locs[device.ProgramAdvection]
	r.advection = advectionProgram{
		program:     program{ids[device.ProgramAdvection]},
		uVelocity:   u.loc("uVelocity"),
		uSource:     u.loc("uSource"),
		texelSize:   u.loc("texelSize"),
		dt:          u.loc("dt"),
		dissipation: u.loc("dissipation"),
	}

	u = locs[device.ProgramDivergence]
	r.divergence = divergenceProgram{
		program:   program{ids[device.ProgramDivergence]},
		uVelocity: u.loc("uVelocity"),
		texelSize: u.loc("texelSize"),
	}

	u = locs[device.ProgramCurl]
	r.curl = curlProgram{
		program:   program{ids[device.ProgramCurl]},
		uVelocity: u.loc("uVelocity"),
		texelSize: u.loc("texelSize"),
	}

	u = locs[device.ProgramVorticity]
	r.vorticity = vorticityProgram{
		program:   program{ids[device.ProgramVorticity]},
		uVelocity: u.loc("uVelocity"),
		uCurl:     u.loc("uCurl"),
		texelSize: u.loc("texelSize"),
		curl:      u.loc("curl"),
		dt:        u.loc("dt"),
	}

	u = locs[device.ProgramPressure]
	r.pressure = pressureProgram{
		program:     program{ids[device.ProgramPressure]},
		uPressure:   u.loc("uPressure"),
		uDivergence: u.loc("uDivergence"),
		texelSize:   u.loc("texelSize"),
	}

	u = locs[device.ProgramGradientSubtract]
	r.gradientSubtract = gradientSubtractProgram{
		program:   program{ids[device.ProgramGradientSubtract]},
		uPressure: u.loc("uPressure"),
		uVelocity: u.loc("uVelocity"),
		texelSize: u.loc("texelSize"),
	}

	return r, nil
}

func (r *registry) delete() {
	for _, id := range []uint32{
		r.clear.id, r.display.id, r.splat.id, r.advection.id, r.divergence.id,
		r.curl.id, r.vorticity.id, r.pressure.id, r.gradientSubtract.id,
	} {
		if id != 0 {
			gl.DeleteProgram(id)
		}
	}
}
