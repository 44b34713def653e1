package opengl

import (
	"embed"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"
)

//go:embed shaders/*.vert shaders/*.frag
var shaderFS embed.FS

// BuildError reports a shader that failed to compile or a program that
// failed to link. The whole registry is torn down when one occurs.
type BuildError struct {
	Program string // program name, or the shader file for compile errors
	Stage   string // "compile" or "link"
	Log     string // driver info log
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("opengl: %s %s failed: %s", e.Program, e.Stage, e.Log)
}

func loadShaderSource(name string) (string, error) {
	src, err := shaderFS.ReadFile("shaders/" + name)
	if err != nil {
		return "", fmt.Errorf("reading shader %q: %w", name, err)
	}
	return string(src), nil
}

func compileShader(name, source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logMsg := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logMsg))
		gl.DeleteShader(shader)
		return 0, &BuildError{Program: name, Stage: "compile", Log: strings.TrimRight(logMsg, "\x00 \n")}
	}
	return shader, nil
}

func linkProgram(name string, vert, frag uint32) (uint32, error) {
	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLength)
		logMsg := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(prog, logLength, nil, gl.Str(logMsg))
		gl.DeleteProgram(prog)
		return 0, &BuildError{Program: name, Stage: "link", Log: strings.TrimRight(logMsg, "\x00 \n")}
	}

	gl.DetachShader(prog, vert)
	gl.DetachShader(prog, frag)
	return prog, nil
}

// activeUniforms enumerates the program's active uniforms once and
// returns their locations by name.
func activeUniforms(prog uint32) map[string]int32 {
	var count, maxLen int32
	gl.GetProgramiv(prog, gl.ACTIVE_UNIFORMS, &count)
	gl.GetProgramiv(prog, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)

	locs := make(map[string]int32, count)
	buf := make([]uint8, maxLen+1)
	for i := int32(0); i < count; i++ {
		var length, size int32
		var xtype uint32
		gl.GetActiveUniform(prog, uint32(i), maxLen+1, &length, &size, &xtype, &buf[0])
		name := string(buf[:length])
		locs[name] = gl.GetUniformLocation(prog, gl.Str(name+"\x00"))
	}
	return locs
}
