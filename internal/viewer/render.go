package viewer

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const wireVertexShader = `#version 410 core
layout (location = 0) in vec3 aPosition;

uniform mat4 uMVP;

void main() {
    gl_Position = uMVP * vec4(aPosition, 1.0);
}
`

const wireFragmentShader = `#version 410 core
uniform vec3 uColor;

out vec4 FragColor;

void main() {
    FragColor = vec4(uColor, 1.0);
}
`

// WireframeRenderer draws packed line segments with a flat color.
type WireframeRenderer struct {
	// Shader
	program  uint32
	locMVP   int32
	locColor int32

	// Mesh
	vao         uint32
	vbo         uint32
	vertexCount int32
}

// NewWireframeRenderer compiles the line shader and allocates an empty
// buffer. Fill it with SetLines.
func NewWireframeRenderer() (*WireframeRenderer, error) {
	wr := &WireframeRenderer{}

	program, err := compileProgram(wireVertexShader, wireFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("wireframe shader: %w", err)
	}
	wr.program = program
	wr.locMVP = getUniform(program, "uMVP")
	wr.locColor = getUniform(program, "uColor")

	gl.GenVertexArrays(1, &wr.vao)
	gl.BindVertexArray(wr.vao)

	gl.GenBuffers(1, &wr.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, wr.vbo)

	// Position attribute
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(0)

	gl.BindVertexArray(0)
	return wr, nil
}

// SetLines replaces the uploaded segments with packed xyz endpoint pairs.
func (wr *WireframeRenderer) SetLines(lines []float32) {
	wr.vertexCount = int32(len(lines) / 3)
	if len(lines) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, wr.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(lines)*4, unsafe.Pointer(&lines[0]), gl.DYNAMIC_DRAW)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Render draws the segments under the given transform.
func (wr *WireframeRenderer) Render(mvp mgl32.Mat4, color mgl32.Vec3) {
	if wr.vertexCount == 0 {
		return
	}
	gl.UseProgram(wr.program)
	gl.UniformMatrix4fv(wr.locMVP, 1, false, &mvp[0])
	gl.Uniform3f(wr.locColor, color[0], color[1], color[2])

	gl.BindVertexArray(wr.vao)
	gl.DrawArrays(gl.LINES, 0, wr.vertexCount)
	gl.BindVertexArray(0)
}

// Destroy releases all GL resources.
func (wr *WireframeRenderer) Destroy() {
	if wr.vao != 0 {
		gl.DeleteVertexArrays(1, &wr.vao)
		wr.vao = 0
	}
	if wr.vbo != 0 {
		gl.DeleteBuffers(1, &wr.vbo)
		wr.vbo = 0
	}
	if wr.program != 0 {
		gl.DeleteProgram(wr.program)
		wr.program = 0
	}
}
