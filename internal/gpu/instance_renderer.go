// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"fmt"
	"image"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/vgraph"
	"github.com/gogpu/vgraph/frame"
)

// fenceTimeout bounds how long a submission may take before Draw reports
// the GPU as stuck.
const fenceTimeout = 5 * time.Second

// copyPitchAlignment is the row alignment required for texture to buffer
// copies.
const copyPitchAlignment = 256

// RendererOptions configures an InstanceRenderer.
type RendererOptions struct {
	// StepMode selects how instance attributes advance. The zero value is
	// frame.StepInstance. Batches are drawn as a single instance, so in that
	// mode every vertex of a draw reads the first vertex's attributes and
	// triangles collapse to a point. Use frame.StepVertex for visible fills.
	StepMode frame.StepMode

	// Format is the color target format. The zero value selects BGRA8Unorm.
	Format gputypes.TextureFormat
}

// InstanceRenderer draws packed frame buffers with one indexed draw call per
// batch. Pipelines are created lazily on the first upload.
//
// Without a surface target the renderer draws into an internal offscreen
// texture that Snapshot reads back.
type InstanceRenderer struct {
	device hal.Device
	queue  hal.Queue
	opts   RendererOptions

	shader      hal.ShaderModule
	bindLayout  hal.BindGroupLayout
	pipeLayout  hal.PipelineLayout
	pipeline    hal.RenderPipeline
	pipelineErr error

	offscreen offscreenTarget

	surfaceView   hal.TextureView
	surfaceWidth  uint32
	surfaceHeight uint32

	res     *frameResources
	scratch []byte
}

// NewInstanceRenderer creates a renderer on the given device and queue.
func NewInstanceRenderer(device hal.Device, queue hal.Queue, opts RendererOptions) *InstanceRenderer {
	if opts.Format == gputypes.TextureFormatUndefined {
		opts.Format = gputypes.TextureFormatBGRA8Unorm
	}
	return &InstanceRenderer{device: device, queue: queue, opts: opts}
}

// StepMode reports the attribute step mode of the pipeline.
func (r *InstanceRenderer) StepMode() frame.StepMode { return r.opts.StepMode }

// SetSurfaceTarget directs subsequent draws at a caller-owned texture view.
// Pass nil to return to offscreen rendering. The view is never destroyed by
// the renderer.
func (r *InstanceRenderer) SetSurfaceTarget(view hal.TextureView, width, height uint32) {
	r.surfaceView = view
	r.surfaceWidth = width
	r.surfaceHeight = height
	if view != nil {
		r.offscreen.destroy(r.device)
	}
}

// TargetSize returns the size of the current draw target in pixels.
func (r *InstanceRenderer) TargetSize() (width, height uint32) {
	if r.surfaceView != nil {
		return r.surfaceWidth, r.surfaceHeight
	}
	if r.res != nil {
		return r.res.width, r.res.height
	}
	return 0, 0
}

// Upload replaces the GPU copy of the frame with fb. Every batch gets its own
// vertex and index buffer; the uniforms share one buffer and bind group.
// On error the previous frame stays uploaded.
func (r *InstanceRenderer) Upload(fb *frame.FrameBuffer, u frame.Uniforms) error {
	if err := r.ensurePipeline(); err != nil {
		return err
	}
	res, err := r.buildResources(fb, u)
	if err != nil {
		return err
	}
	if r.res != nil {
		r.res.destroy(r.device)
	}
	r.res = res
	slogger().Debug("gpu: frame uploaded",
		"batches", len(res.batches),
		"width", res.width,
		"height", res.height)
	return nil
}

// Draw clears the target to transparent and records one indexed draw per
// uploaded batch. Nothing is drawn when the uploaded frame has a zero size.
func (r *InstanceRenderer) Draw() error {
	if r.res == nil {
		return fmt.Errorf("draw: no frame uploaded")
	}
	view, err := r.target()
	if err != nil {
		return err
	}
	if view == nil {
		return nil
	}

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "instance_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("instance_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "instance_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 0},
		}},
	})
	r.recordDraws(rp, r.res)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	return r.submitAndWait(cmdBuf)
}

// recordDraws binds the pipeline once and issues the batch draws. In
// instance step mode every element of the batch is drawn as one instance of
// the indexed geometry.
func (r *InstanceRenderer) recordDraws(rp hal.RenderPassEncoder, res *frameResources) {
	if len(res.batches) == 0 {
		return
	}
	rp.SetPipeline(r.pipeline)
	rp.SetBindGroup(0, res.bindGroup, nil)
	for _, b := range res.batches {
		rp.SetVertexBuffer(0, b.vertices, 0)
		rp.SetIndexBuffer(b.indices, gputypes.IndexFormatUint16, 0)
		rp.DrawIndexed(b.indexCount, 1, 0, 0, 0)
	}
}

// Snapshot reads the offscreen target back as an RGBA image. It fails in
// surface mode, where the pixels belong to the presentation engine.
func (r *InstanceRenderer) Snapshot() (*image.RGBA, error) {
	if r.surfaceView != nil {
		return nil, fmt.Errorf("snapshot: renderer targets a surface")
	}
	if r.offscreen.tex == nil {
		return nil, fmt.Errorf("snapshot: nothing drawn")
	}
	w, h := r.offscreen.width, r.offscreen.height

	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	encoder, err := r.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "instance_readback_encoder",
	})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("instance_readback"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	staging, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "instance_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer r.device.DestroyBuffer(staging)

	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.offscreen.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(r.offscreen.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.offscreen.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.offscreen.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer r.device.FreeCommandBuffer(cmdBuf)

	if err := r.submitAndWait(cmdBuf); err != nil {
		return nil, err
	}

	raw := make([]byte, stagingSize)
	if err := r.queue.ReadBuffer(staging, 0, raw); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	copyRows(img.Pix, raw, int(bytesPerRow), int(alignedBytesPerRow), int(h), r.opts.Format)
	return img, nil
}

// Destroy releases the uploaded frame, the offscreen texture and the
// pipeline. The renderer may be reused; the pipeline is rebuilt on the next
// upload.
func (r *InstanceRenderer) Destroy() {
	if r.res != nil {
		r.res.destroy(r.device)
		r.res = nil
	}
	r.offscreen.destroy(r.device)
	r.surfaceView = nil
	r.surfaceWidth, r.surfaceHeight = 0, 0
	r.destroyPipeline()
}

func (r *InstanceRenderer) submitAndWait(cmdBuf hal.CommandBuffer) error {
	fence, err := r.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.device.DestroyFence(fence)

	if err := r.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ok, err := r.device.Wait(fence, 1, fenceTimeout)
	if err != nil || !ok {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", ok, err)
	}
	return nil
}

// target returns the view to draw into. A nil view with a nil error means
// the frame has no pixels.
func (r *InstanceRenderer) target() (hal.TextureView, error) {
	if r.surfaceView != nil {
		return r.surfaceView, nil
	}
	w, h := r.res.width, r.res.height
	if w == 0 || h == 0 {
		return nil, nil
	}
	if err := r.offscreen.ensure(r.device, w, h, r.opts.Format); err != nil {
		return nil, err
	}
	return r.offscreen.view, nil
}

// frameResources holds the GPU buffers of one uploaded frame.
type frameResources struct {
	uniform   hal.Buffer
	bindGroup hal.BindGroup
	batches   []batchBuffers
	width     uint32
	height    uint32
}

type batchBuffers struct {
	vertices   hal.Buffer
	indices    hal.Buffer
	indexCount uint32
}

func (res *frameResources) destroy(device hal.Device) {
	for _, b := range res.batches {
		device.DestroyBuffer(b.vertices)
		device.DestroyBuffer(b.indices)
	}
	res.batches = nil
	if res.bindGroup != nil {
		device.DestroyBindGroup(res.bindGroup)
		res.bindGroup = nil
	}
	if res.uniform != nil {
		device.DestroyBuffer(res.uniform)
		res.uniform = nil
	}
}

func (r *InstanceRenderer) buildResources(fb *frame.FrameBuffer, u frame.Uniforms) (*frameResources, error) {
	res := &frameResources{
		width:  uint32(max(u.CanvasResolution[0], 0)),
		height: uint32(max(u.CanvasResolution[1], 0)),
	}

	r.scratch = frame.AppendUniforms(r.scratch[:0], u)
	uniform, err := r.createAndUploadBuffer("instance_uniforms", r.scratch,
		gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	res.uniform = uniform

	bindGroup, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "instance_bind",
		Layout: r.bindLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: uniform.NativeHandle(), Offset: 0, Size: frame.UniformSize,
			}},
		},
	})
	if err != nil {
		res.destroy(r.device)
		return nil, fmt.Errorf("create instance bind group: %w", err)
	}
	res.bindGroup = bindGroup

	if fb == nil {
		return res, nil
	}
	for i, b := range fb.Batches {
		if len(b.Indices) == 0 {
			continue
		}
		r.scratch = frame.AppendVertices(r.scratch[:0], b.Vertices)
		vb, err := r.createAndUploadBuffer(fmt.Sprintf("instance_vertices_%d", i), r.scratch,
			gputypes.BufferUsageVertex|gputypes.BufferUsageCopyDst)
		if err != nil {
			res.destroy(r.device)
			return nil, err
		}
		r.scratch = frame.AppendIndices(r.scratch[:0], b.Indices)
		ib, err := r.createAndUploadBuffer(fmt.Sprintf("instance_indices_%d", i), r.scratch,
			gputypes.BufferUsageIndex|gputypes.BufferUsageCopyDst)
		if err != nil {
			r.device.DestroyBuffer(vb)
			res.destroy(r.device)
			return nil, err
		}
		res.batches = append(res.batches, batchBuffers{
			vertices:   vb,
			indices:    ib,
			indexCount: uint32(len(b.Indices)),
		})
	}
	return res, nil
}

func (r *InstanceRenderer) createAndUploadBuffer(label string, data []byte, usage gputypes.BufferUsage) (hal.Buffer, error) {
	buf, err := r.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	r.queue.WriteBuffer(buf, 0, data)
	return buf, nil
}

// ensurePipeline builds the shader, layouts and pipeline once. A failure is
// remembered so later uploads report it without retrying.
func (r *InstanceRenderer) ensurePipeline() error {
	if r.pipeline != nil {
		return nil
	}
	if r.pipelineErr != nil {
		return r.pipelineErr
	}
	if err := r.createPipeline(); err != nil {
		r.destroyPipeline()
		r.pipelineErr = fmt.Errorf("%w: %w", vgraph.ErrSetup, err)
		return r.pipelineErr
	}
	slogger().Info("gpu: instance pipeline created", "step_mode", r.opts.StepMode.String())
	return nil
}

func (r *InstanceRenderer) createPipeline() error {
	if err := ValidateShader("instance", instanceShaderSource); err != nil {
		return err
	}
	shader, err := r.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "instance_shader",
		Source: hal.ShaderSource{WGSL: instanceShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile instance shader: %w", err)
	}
	r.shader = shader

	bindLayout, err := r.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "instance_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		}},
	})
	if err != nil {
		return fmt.Errorf("create instance bind group layout: %w", err)
	}
	r.bindLayout = bindLayout

	pipeLayout, err := r.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "instance_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		return fmt.Errorf("create instance pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout

	blend := gputypes.BlendStatePremultiplied()
	pipeline, err := r.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "instance_pipeline",
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: vertexEntryPoint,
			Buffers:    []gputypes.VertexBufferLayout{VertexBufferLayout(r.opts.StepMode)},
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: fragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{{
				Format:    r.opts.Format,
				Blend:     &blend,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create instance pipeline: %w", err)
	}
	r.pipeline = pipeline
	return nil
}

func (r *InstanceRenderer) destroyPipeline() {
	if r.pipeline != nil {
		r.device.DestroyRenderPipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.pipeLayout != nil {
		r.device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.bindLayout != nil {
		r.device.DestroyBindGroupLayout(r.bindLayout)
		r.bindLayout = nil
	}
	if r.shader != nil {
		r.device.DestroyShaderModule(r.shader)
		r.shader = nil
	}
}

// VertexBufferLayout translates frame.Attributes into a WebGPU buffer layout
// with the given step mode.
func VertexBufferLayout(mode frame.StepMode) gputypes.VertexBufferLayout {
	attrs := make([]gputypes.VertexAttribute, len(frame.Attributes))
	for i, a := range frame.Attributes {
		attrs[i] = gputypes.VertexAttribute{
			Format:         vertexFormat(a),
			Offset:         uint64(a.Offset),
			ShaderLocation: a.Location,
		}
	}
	step := gputypes.VertexStepModeInstance
	if mode == frame.StepVertex {
		step = gputypes.VertexStepModeVertex
	}
	return gputypes.VertexBufferLayout{
		ArrayStride: frame.VertexSize,
		StepMode:    step,
		Attributes:  attrs,
	}
}

func vertexFormat(a frame.Attribute) gputypes.VertexFormat {
	if a.Type == frame.Uint32 {
		return gputypes.VertexFormatUint32
	}
	switch a.Components {
	case 1:
		return gputypes.VertexFormatFloat32
	case 2:
		return gputypes.VertexFormatFloat32x2
	case 3:
		return gputypes.VertexFormatFloat32x3
	default:
		return gputypes.VertexFormatFloat32x4
	}
}

// copyRows strips row padding from src and writes RGBA pixels to dst,
// swizzling BGRA formats.
func copyRows(dst, src []byte, rowBytes, pitch, rows int, format gputypes.TextureFormat) {
	bgra := format == gputypes.TextureFormatBGRA8Unorm || format == gputypes.TextureFormatBGRA8UnormSrgb
	for y := range rows {
		s := src[y*pitch : y*pitch+rowBytes]
		d := dst[y*rowBytes : (y+1)*rowBytes]
		copy(d, s)
		if bgra {
			for i := 0; i+3 < len(d); i += 4 {
				d[i], d[i+2] = d[i+2], d[i]
			}
		}
	}
}

// offscreenTarget is a single-sample color texture used when no surface is
// attached.
type offscreenTarget struct {
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
}

func (t *offscreenTarget) ensure(device hal.Device, w, h uint32, format gputypes.TextureFormat) error {
	if t.tex != nil && t.width == w && t.height == h {
		return nil
	}
	t.destroy(device)

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "instance_target",
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create offscreen texture: %w", err)
	}
	t.tex = tex

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "instance_target_view",
	})
	if err != nil {
		t.destroy(device)
		return fmt.Errorf("create offscreen view: %w", err)
	}
	t.view = view
	t.width, t.height = w, h
	return nil
}

func (t *offscreenTarget) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
		t.view = nil
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
		t.tex = nil
	}
	t.width, t.height = 0, 0
}
