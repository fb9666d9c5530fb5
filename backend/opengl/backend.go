// Package opengl draws vgraph frame buffers with desktop OpenGL 3.3 core.
//
// The backend reproduces the reference WebGL2 context: no depth test,
// separate SRC_ALPHA/ONE_MINUS_SRC_ALPHA blending with ONE for alpha, and a
// transparent clear. A GL context must be current on the calling thread for
// Init, New and every method.
package opengl

import (
	"errors"
	"fmt"
	"sync/atomic"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/gogpu/vgraph"
	"github.com/gogpu/vgraph/frame"
	"github.com/gogpu/vgraph/internal/glsl"
	"github.com/gogpu/vgraph/render"
)

// ErrNoContext is returned by New before Init succeeded.
var ErrNoContext = errors.New("opengl: no GL context; call Init with a current context")

var loaded atomic.Bool

// Init loads the GL function pointers of the context current on the calling
// thread. It must succeed once before New.
func Init() error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("%w: init gl: %w", vgraph.ErrSetup, err)
	}
	loaded.Store(true)
	return nil
}

// Option configures a Backend.
type Option func(*options)

type options struct {
	stepMode frame.StepMode
}

// WithStepMode selects the attribute divisor. The default, frame.StepInstance,
// sets divisor 1 on every attribute; drawn as one instance, every vertex then
// reads the first vertex and nothing visible is filled. frame.StepVertex
// draws the tessellated triangles.
func WithStepMode(m frame.StepMode) Option {
	return func(o *options) { o.stepMode = m }
}

// Backend implements render.Backend on the current GL context.
type Backend struct {
	program  uint32
	vao      uint32
	pointers []glsl.Pointer

	uMatrix     int32
	uResolution int32

	batches []glBatch
	used    int
	width   int32
	height  int32

	scratch []byte
	closed  bool
}

type glBatch struct {
	vbo   uint32
	ibo   uint32
	count int32
}

var _ render.Backend = (*Backend)(nil)

// New compiles the path program and sets the fixed context state. Shader
// failures are reported as vgraph.ErrSetup.
func New(opts ...Option) (*Backend, error) {
	if !loaded.Load() {
		return nil, fmt.Errorf("%w: %w", vgraph.ErrSetup, ErrNoContext)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	prog, err := newProgram()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vgraph.ErrSetup, err)
	}
	b := &Backend{
		program:     prog,
		pointers:    glsl.Pointers(o.stepMode),
		uMatrix:     gl.GetUniformLocation(prog, gl.Str(frame.UniformMatrix+"\x00")),
		uResolution: gl.GetUniformLocation(prog, gl.Str(frame.UniformCanvasResolution+"\x00")),
	}
	gl.GenVertexArrays(1, &b.vao)

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFuncSeparate(glsl.Blend[0], glsl.Blend[1], glsl.Blend[2], glsl.Blend[3])
	gl.ClearColor(0, 0, 0, 0)

	vgraph.Logger().Info("opengl: backend initialized",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"step_mode", o.stepMode.String())
	return b, nil
}

// Upload copies every non-empty batch into its own buffer pair, reusing
// buffers across frames, and sets the uniforms.
func (b *Backend) Upload(fb *frame.FrameBuffer, u frame.Uniforms) error {
	if b.closed {
		return fmt.Errorf("opengl: backend closed")
	}
	gl.UseProgram(b.program)
	gl.UniformMatrix3x2fv(b.uMatrix, 1, false, &u.Matrix[0])
	gl.Uniform2f(b.uResolution, u.CanvasResolution[0], u.CanvasResolution[1])
	b.width = int32(u.CanvasResolution[0])
	b.height = int32(u.CanvasResolution[1])

	b.used = 0
	if fb == nil {
		return nil
	}
	for i := range fb.Batches {
		batch := &fb.Batches[i]
		if len(batch.Indices) == 0 {
			continue
		}
		if b.used == len(b.batches) {
			var gb glBatch
			gl.GenBuffers(1, &gb.vbo)
			gl.GenBuffers(1, &gb.ibo)
			b.batches = append(b.batches, gb)
		}
		gb := &b.batches[b.used]
		b.used++

		b.scratch = frame.AppendVertices(b.scratch[:0], batch.Vertices)
		gl.BindBuffer(gl.ARRAY_BUFFER, gb.vbo)
		gl.BufferData(gl.ARRAY_BUFFER, len(b.scratch), gl.Ptr(b.scratch), gl.DYNAMIC_DRAW)

		b.scratch = frame.AppendIndices(b.scratch[:0], batch.Indices)
		gl.BindVertexArray(b.vao)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gb.ibo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(b.scratch), gl.Ptr(b.scratch), gl.DYNAMIC_DRAW)
		gb.count = int32(len(batch.Indices))
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return nil
}

// Draw clears to transparent and issues one DrawElements per batch.
func (b *Backend) Draw() error {
	if b.closed {
		return fmt.Errorf("opengl: backend closed")
	}
	gl.Viewport(0, 0, b.width, b.height)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if b.used == 0 {
		return nil
	}

	gl.UseProgram(b.program)
	gl.BindVertexArray(b.vao)
	for _, gb := range b.batches[:b.used] {
		gl.BindBuffer(gl.ARRAY_BUFFER, gb.vbo)
		b.bindPointers()
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, gb.ibo)
		gl.DrawElements(glsl.Triangles, gb.count, glsl.UnsignedShort, nil)
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if code := gl.GetError(); code != gl.NO_ERROR {
		return fmt.Errorf("opengl: draw error 0x%04x", code)
	}
	return nil
}

// bindPointers points the attributes at the bound ARRAY_BUFFER.
func (b *Backend) bindPointers() {
	for _, p := range b.pointers {
		gl.EnableVertexAttribArray(p.Index)
		off := unsafe.Pointer(uintptr(p.Offset))
		if p.Integer {
			gl.VertexAttribIPointer(p.Index, p.Size, p.Type, p.Stride, off)
		} else {
			gl.VertexAttribPointer(p.Index, p.Size, p.Type, false, p.Stride, off)
		}
		gl.VertexAttribDivisor(p.Index, p.Divisor)
	}
}

// Close deletes the buffers, the vertex array and the program.
func (b *Backend) Close() {
	if b.closed {
		return
	}
	b.closed = true
	for _, gb := range b.batches {
		gl.DeleteBuffers(1, &gb.vbo)
		gl.DeleteBuffers(1, &gb.ibo)
	}
	b.batches = nil
	if b.vao != 0 {
		gl.DeleteVertexArrays(1, &b.vao)
	}
	if b.program != 0 {
		gl.DeleteProgram(b.program)
	}
}
