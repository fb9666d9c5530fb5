//go:build js && wasm

// Package webgl draws vgraph frame buffers into a browser canvas with
// WebGL2 and drives the render loop from requestAnimationFrame.
//
// The context is created with antialias and premultipliedAlpha disabled on
// the first element matching CanvasSelector.
package webgl

import (
	"fmt"
	"syscall/js"

	"github.com/gogpu/vgraph"
	"github.com/gogpu/vgraph/frame"
	"github.com/gogpu/vgraph/internal/glsl"
	"github.com/gogpu/vgraph/render"
)

// CanvasSelector is the CSS selector of the rendering canvas.
const CanvasSelector = ".rendering-canvas"

// Option configures a Backend.
type Option func(*options)

type options struct {
	stepMode frame.StepMode
	selector string
}

// WithStepMode selects the attribute divisor. The default is
// frame.StepInstance, which matches the layout contract but fills nothing
// visible; frame.StepVertex draws the tessellated triangles.
func WithStepMode(m frame.StepMode) Option {
	return func(o *options) { o.stepMode = m }
}

// WithCanvasSelector overrides CanvasSelector.
func WithCanvasSelector(sel string) Option {
	return func(o *options) { o.selector = sel }
}

// Backend implements render.Backend and render.Surface on a WebGL2 canvas.
type Backend struct {
	canvas js.Value
	gl     js.Value
	consts glConsts

	program     js.Value
	vao         js.Value
	uMatrix     js.Value
	uResolution js.Value
	pointers    []glsl.Pointer

	batches []jsBatch
	used    int

	scratch []byte
	buf     js.Value // reusable Uint8Array view
}

type jsBatch struct {
	vbo   js.Value
	ibo   js.Value
	count int
}

type glConsts struct {
	arrayBuffer        int
	elementArrayBuffer int
	dynamicDraw        int
	colorBufferBit     int
	blend              int
	depthTest          int
	compileStatus      int
	linkStatus         int
	vertexShader       int
	fragmentShader     int
}

var (
	_ render.Backend = (*Backend)(nil)
	_ render.Surface = (*Backend)(nil)
)

// New finds the canvas, creates the WebGL2 context and compiles the path
// program. Every failure is a vgraph.ErrSetup.
func New(opts ...Option) (*Backend, error) {
	o := options{selector: CanvasSelector}
	for _, opt := range opts {
		opt(&o)
	}

	doc := js.Global().Get("document")
	canvas := doc.Call("querySelector", o.selector)
	if canvas.IsNull() || canvas.IsUndefined() {
		return nil, fmt.Errorf("%w: no canvas matches %q", vgraph.ErrSetup, o.selector)
	}
	attrs := map[string]any{
		"antialias":          false,
		"premultipliedAlpha": false,
	}
	gl := canvas.Call("getContext", "webgl2", attrs)
	if gl.IsNull() || gl.IsUndefined() {
		return nil, fmt.Errorf("%w: webgl2 context unavailable", vgraph.ErrSetup)
	}

	b := &Backend{
		canvas:   canvas,
		gl:       gl,
		pointers: glsl.Pointers(o.stepMode),
	}
	b.loadConsts()

	prog, err := b.buildProgram()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vgraph.ErrSetup, err)
	}
	b.program = prog
	b.uMatrix = gl.Call("getUniformLocation", prog, frame.UniformMatrix)
	b.uResolution = gl.Call("getUniformLocation", prog, frame.UniformCanvasResolution)
	b.vao = gl.Call("createVertexArray")

	gl.Call("disable", b.consts.depthTest)
	gl.Call("enable", b.consts.blend)
	gl.Call("blendFuncSeparate", glsl.Blend[0], glsl.Blend[1], glsl.Blend[2], glsl.Blend[3])
	gl.Call("clearColor", 0, 0, 0, 0)

	vgraph.Logger().Info("webgl: backend initialized", "step_mode", o.stepMode.String())
	return b, nil
}

func (b *Backend) loadConsts() {
	b.consts = glConsts{
		arrayBuffer:        b.gl.Get("ARRAY_BUFFER").Int(),
		elementArrayBuffer: b.gl.Get("ELEMENT_ARRAY_BUFFER").Int(),
		dynamicDraw:        b.gl.Get("DYNAMIC_DRAW").Int(),
		colorBufferBit:     b.gl.Get("COLOR_BUFFER_BIT").Int(),
		blend:              b.gl.Get("BLEND").Int(),
		depthTest:          b.gl.Get("DEPTH_TEST").Int(),
		compileStatus:      b.gl.Get("COMPILE_STATUS").Int(),
		linkStatus:         b.gl.Get("LINK_STATUS").Int(),
		vertexShader:       b.gl.Get("VERTEX_SHADER").Int(),
		fragmentShader:     b.gl.Get("FRAGMENT_SHADER").Int(),
	}
}

// Size returns the canvas drawing buffer size in physical pixels.
func (b *Backend) Size() (int, int) {
	return b.canvas.Get("width").Int(), b.canvas.Get("height").Int()
}

// DevicePixelRatio returns window.devicePixelRatio.
func (b *Backend) DevicePixelRatio() float64 {
	r := js.Global().Get("devicePixelRatio")
	if r.Type() != js.TypeNumber {
		return 1
	}
	return r.Float()
}

// Upload copies every non-empty batch into a buffer pair and sets the
// uniforms.
func (b *Backend) Upload(fb *frame.FrameBuffer, u frame.Uniforms) error {
	gl := b.gl
	gl.Call("useProgram", b.program)
	gl.Call("uniformMatrix3x2fv", b.uMatrix, false, float32Slice(u.Matrix[:]))
	gl.Call("uniform2f", b.uResolution, u.CanvasResolution[0], u.CanvasResolution[1])
	gl.Call("viewport", 0, 0, int(u.CanvasResolution[0]), int(u.CanvasResolution[1]))

	b.used = 0
	if fb == nil {
		return nil
	}
	gl.Call("bindVertexArray", b.vao)
	for i := range fb.Batches {
		batch := &fb.Batches[i]
		if len(batch.Indices) == 0 {
			continue
		}
		if b.used == len(b.batches) {
			b.batches = append(b.batches, jsBatch{
				vbo: gl.Call("createBuffer"),
				ibo: gl.Call("createBuffer"),
			})
		}
		jb := &b.batches[b.used]
		b.used++

		b.scratch = frame.AppendVertices(b.scratch[:0], batch.Vertices)
		gl.Call("bindBuffer", b.consts.arrayBuffer, jb.vbo)
		gl.Call("bufferData", b.consts.arrayBuffer, b.bytes(b.scratch), b.consts.dynamicDraw)

		b.scratch = frame.AppendIndices(b.scratch[:0], batch.Indices)
		gl.Call("bindBuffer", b.consts.elementArrayBuffer, jb.ibo)
		gl.Call("bufferData", b.consts.elementArrayBuffer, b.bytes(b.scratch), b.consts.dynamicDraw)
		jb.count = len(batch.Indices)
	}
	gl.Call("bindVertexArray", js.Null())
	return nil
}

// Draw clears to transparent and issues one drawElements per batch.
func (b *Backend) Draw() error {
	gl := b.gl
	gl.Call("clear", b.consts.colorBufferBit)
	if b.used == 0 {
		return nil
	}
	gl.Call("useProgram", b.program)
	gl.Call("bindVertexArray", b.vao)
	for _, jb := range b.batches[:b.used] {
		gl.Call("bindBuffer", b.consts.arrayBuffer, jb.vbo)
		for _, p := range b.pointers {
			gl.Call("enableVertexAttribArray", p.Index)
			if p.Integer {
				gl.Call("vertexAttribIPointer", p.Index, p.Size, p.Type, p.Stride, p.Offset)
			} else {
				gl.Call("vertexAttribPointer", p.Index, p.Size, p.Type, false, p.Stride, p.Offset)
			}
			gl.Call("vertexAttribDivisor", p.Index, p.Divisor)
		}
		gl.Call("bindBuffer", b.consts.elementArrayBuffer, jb.ibo)
		gl.Call("drawElements", glsl.Triangles, jb.count, glsl.UnsignedShort, 0)
	}
	gl.Call("bindVertexArray", js.Null())
	return nil
}

// Close deletes GL objects.
func (b *Backend) Close() {
	for _, jb := range b.batches {
		b.gl.Call("deleteBuffer", jb.vbo)
		b.gl.Call("deleteBuffer", jb.ibo)
	}
	b.batches = nil
	b.used = 0
	b.gl.Call("deleteVertexArray", b.vao)
	b.gl.Call("deleteProgram", b.program)
}

// bytes copies data into a JS Uint8Array, growing the shared array as
// needed, and returns a view of exactly len(data) bytes.
func (b *Backend) bytes(data []byte) js.Value {
	if b.buf.IsUndefined() || b.buf.Get("length").Int() < len(data) {
		b.buf = js.Global().Get("Uint8Array").New(max(len(data), 1024))
	}
	view := b.buf.Call("subarray", 0, len(data))
	js.CopyBytesToJS(view, data)
	return view
}

func (b *Backend) buildProgram() (js.Value, error) {
	vs, err := b.compileShader(b.consts.vertexShader, glsl.VertexSource(glsl.ES300))
	if err != nil {
		return js.Value{}, err
	}
	fs, err := b.compileShader(b.consts.fragmentShader, glsl.FragmentSource(glsl.ES300))
	if err != nil {
		b.gl.Call("deleteShader", vs)
		return js.Value{}, err
	}
	program := b.gl.Call("createProgram")
	b.gl.Call("attachShader", program, vs)
	b.gl.Call("attachShader", program, fs)
	b.gl.Call("linkProgram", program)
	b.gl.Call("deleteShader", vs)
	b.gl.Call("deleteShader", fs)
	if !b.gl.Call("getProgramParameter", program, b.consts.linkStatus).Bool() {
		log := b.gl.Call("getProgramInfoLog", program).String()
		b.gl.Call("deleteProgram", program)
		return js.Value{}, fmt.Errorf("link error: %s", log)
	}
	return program, nil
}

func (b *Backend) compileShader(shaderType int, source string) (js.Value, error) {
	shader := b.gl.Call("createShader", shaderType)
	b.gl.Call("shaderSource", shader, source)
	b.gl.Call("compileShader", shader)
	if !b.gl.Call("getShaderParameter", shader, b.consts.compileStatus).Bool() {
		log := b.gl.Call("getShaderInfoLog", shader).String()
		b.gl.Call("deleteShader", shader)
		return js.Value{}, fmt.Errorf("compile error: %s", log)
	}
	return shader, nil
}

func float32Slice(v []float32) []any {
	out := make([]any, len(v))
	for i, f := range v {
		out[i] = f
	}
	return out
}
