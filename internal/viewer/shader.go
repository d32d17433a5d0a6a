package viewer

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// compileProgram builds a linked program from vertex and fragment sources.
// Attached shaders are flagged for deletion up front, so the program owns
// them from then on.
func compileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	stages := []struct {
		kind uint32
		name string
		src  string
	}{
		{gl.VERTEX_SHADER, "vertex", vertexSrc},
		{gl.FRAGMENT_SHADER, "fragment", fragmentSrc},
	}

	program := gl.CreateProgram()
	for _, stage := range stages {
		shader := gl.CreateShader(stage.kind)
		csource, free := gl.Strs(stage.src + "\x00")
		gl.ShaderSource(shader, 1, csource, nil)
		free()
		gl.CompileShader(shader)

		var status int32
		gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
		if status == gl.FALSE {
			msg := glInfoLog(shader, false)
			gl.DeleteShader(shader)
			gl.DeleteProgram(program)
			return 0, fmt.Errorf("%s shader: %s", stage.name, msg)
		}
		gl.AttachShader(program, shader)
		gl.DeleteShader(shader)
	}

	gl.LinkProgram(program)
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		msg := glInfoLog(program, true)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("link: %s", msg)
	}
	return program, nil
}

// glInfoLog extracts the info log after a failed compile or link.
func glInfoLog(id uint32, isProgram bool) string {
	var logLen int32
	if isProgram {
		gl.GetProgramiv(id, gl.INFO_LOG_LENGTH, &logLen)
	} else {
		gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &logLen)
	}
	if logLen <= 0 {
		return "no info log"
	}
	buf := make([]byte, logLen)
	if isProgram {
		gl.GetProgramInfoLog(id, logLen, nil, &buf[0])
	} else {
		gl.GetShaderInfoLog(id, logLen, nil, &buf[0])
	}
	return strings.TrimRight(string(buf), "\x00")
}

// getUniform returns the uniform location for the given name.
func getUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}
