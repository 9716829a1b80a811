// Package canvas draws batched 2D shapes over the 3D scene with OpenGL.
package canvas

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/aetheria/internal/engine/shader"
	"github.com/Faultbox/aetheria/pkg/math"
)

const vertexSrc = `
#version 410 core

layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aLocal;
layout (location = 2) in vec4 aColor;
layout (location = 3) in float aSoftness;

uniform mat4 uProjection;

out vec2 vLocal;
out vec4 vColor;
out float vSoftness;

void main() {
    gl_Position = uProjection * vec4(aPos, 0.0, 1.0);
    vLocal = aLocal;
    vColor = aColor;
    vSoftness = aSoftness;
}
`

const fragmentSrc = `
#version 410 core

in vec2 vLocal;
in vec4 vColor;
in float vSoftness;

out vec4 FragColor;

void main() {
    float a = vColor.a;
    if (vSoftness > 0.0) {
        float d = length(vLocal);
        a *= 1.0 - smoothstep(1.0 - vSoftness, 1.0, d);
    }
    // Premultiplied for screen blending.
    FragColor = vec4(vColor.rgb * a, a);
}
`

// Color is a straight-alpha RGBA color with components in [0,1].
type Color struct {
	R, G, B, A float32
}

// Canvas is a full-window 2D layer composited with a screen blend, so it
// only ever lightens what is underneath.
type Canvas struct {
	width, height int

	program *shader.Program
	vao     uint32
	vbo     uint32

	batch batch
}

// New creates a canvas. Must be called after the OpenGL context is current.
func New(width, height int) (*Canvas, error) {
	c := &Canvas{width: width, height: height}
	c.batch.vertices = make([]float32, 0, 4096)

	p, err := shader.Compile("canvas", vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("create canvas shader: %w", err)
	}
	c.program = p

	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)
	gl.GenBuffers(1, &c.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)

	stride := int32(floatsPerVertex * 4)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, stride, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(2*4)))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, 4, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(4*4)))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(3, 1, gl.FLOAT, false, stride, unsafe.Pointer(uintptr(8*4)))
	gl.EnableVertexAttribArray(3)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return c, nil
}

// Resize updates the canvas dimensions.
func (c *Canvas) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.width = width
	c.height = height
}

// Size returns the canvas dimensions.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// Begin starts a new frame, discarding the previous one.
func (c *Canvas) Begin() {
	c.batch.reset()
}

// FillRect queues a filled rectangle.
func (c *Canvas) FillRect(x, y, w, h float32, col Color) {
	c.batch.addQuad(x, y, w, h, col, 0)
}

// FillCircle queues a filled circle with an optional blurred edge.
func (c *Canvas) FillCircle(cx, cy, r, blur float32, col Color) {
	c.batch.addCircle(cx, cy, r, blur, col)
}

// End draws everything queued since Begin.
func (c *Canvas) End() {
	if c.batch.vertexCount() == 0 {
		return
	}

	var prevBlend, prevDepth, prevCull int32
	gl.GetIntegerv(gl.BLEND, &prevBlend)
	gl.GetIntegerv(gl.DEPTH_TEST, &prevDepth)
	gl.GetIntegerv(gl.CULL_FACE, &prevCull)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_COLOR)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)

	proj := math.Ortho(0, float32(c.width), float32(c.height), 0, -1, 1)
	c.program.Use()
	gl.UniformMatrix4fv(c.program.Uniform("uProjection"), 1, false, proj.Ptr())

	verts := c.batch.vertices
	gl.BindVertexArray(c.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, c.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, unsafe.Pointer(&verts[0]), gl.STREAM_DRAW)
	gl.DrawArrays(gl.TRIANGLES, 0, int32(c.batch.vertexCount()))

	gl.BindVertexArray(0)
	gl.UseProgram(0)

	if prevBlend == gl.FALSE {
		gl.Disable(gl.BLEND)
	}
	if prevDepth == gl.TRUE {
		gl.Enable(gl.DEPTH_TEST)
	}
	if prevCull == gl.TRUE {
		gl.Enable(gl.CULL_FACE)
	}
}

// Close releases canvas resources.
func (c *Canvas) Close() {
	if c.vao != 0 {
		gl.DeleteVertexArrays(1, &c.vao)
	}
	if c.vbo != 0 {
		gl.DeleteBuffers(1, &c.vbo)
	}
	if c.program != nil {
		c.program.Delete()
	}
}
