// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/vgraph"
	"github.com/gogpu/vgraph/frame"
)

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func squareFrame(t *testing.T, batches int) *frame.FrameBuffer {
	t.Helper()
	p, err := frame.NewPacker(6)
	if err != nil {
		t.Fatalf("NewPacker: %v", err)
	}
	for range batches {
		v := frame.VertexInstance{Color: [4]float32{1, 0, 0, 1}, Flags: frame.FlagClosed}
		m := frame.Mesh{
			Vertices: []frame.VertexInstance{v, v, v, v},
			Indices:  []uint32{0, 1, 2, 0, 2, 3},
		}
		m.Vertices[1].Pos = [2]float32{10, 0}
		m.Vertices[2].Pos = [2]float32{10, 10}
		m.Vertices[3].Pos = [2]float32{0, 10}
		if err := p.Add(m); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}
	return p.Frame()
}

func TestInstanceShaderValidates(t *testing.T) {
	if err := ValidateShader("instance", InstanceShaderSource()); err != nil {
		t.Fatalf("ValidateShader: %v", err)
	}
}

func TestValidateShaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty", ""},
		{"blank", "  \n\t"},
		{"garbage", "fn main( {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateShader("test", tt.source)
			if !errors.Is(err, vgraph.ErrSetup) {
				t.Errorf("ValidateShader(%q) = %v, want ErrSetup", tt.source, err)
			}
		})
	}
}

func TestInstanceRendererDefaults(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewInstanceRenderer(device, queue, RendererOptions{})
	defer r.Destroy()

	if r.StepMode() != frame.StepInstance {
		t.Errorf("StepMode = %v, want instance", r.StepMode())
	}
	if r.opts.Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Format = %v, want BGRA8Unorm", r.opts.Format)
	}
	if w, h := r.TargetSize(); w != 0 || h != 0 {
		t.Errorf("TargetSize = %dx%d before upload", w, h)
	}
	if err := r.Draw(); err == nil {
		t.Error("Draw before Upload should fail")
	}
}

func TestInstanceRendererUploadDraw(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewInstanceRenderer(device, queue, RendererOptions{})
	defer r.Destroy()

	vp := frame.Viewport{Width: 64, Height: 32, DevicePixelRatio: 1}
	fb := squareFrame(t, 3)
	if len(fb.Batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(fb.Batches))
	}
	if err := r.Upload(fb, vp.Uniforms()); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if r.pipeline == nil {
		t.Fatal("pipeline not created on upload")
	}
	if got := len(r.res.batches); got != 3 {
		t.Errorf("uploaded batches = %d, want 3", got)
	}
	for i, b := range r.res.batches {
		if b.indexCount != 6 {
			t.Errorf("batch %d indexCount = %d, want 6", i, b.indexCount)
		}
	}
	if w, h := r.TargetSize(); w != 64 || h != 32 {
		t.Errorf("TargetSize = %dx%d, want 64x32", w, h)
	}

	if err := r.Draw(); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if r.offscreen.width != 64 || r.offscreen.height != 32 {
		t.Errorf("offscreen = %dx%d, want 64x32", r.offscreen.width, r.offscreen.height)
	}

	img, err := r.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 64 || b.Dy() != 32 {
		t.Errorf("snapshot bounds = %v", b)
	}
}

func TestInstanceRendererEmptyFrame(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewInstanceRenderer(device, queue, RendererOptions{StepMode: frame.StepVertex})
	defer r.Destroy()

	vp := frame.Viewport{Width: 16, Height: 16}
	if err := r.Upload(&frame.FrameBuffer{}, vp.Uniforms()); err != nil {
		t.Fatalf("Upload(empty): %v", err)
	}
	if len(r.res.batches) != 0 {
		t.Errorf("empty frame uploaded %d batches", len(r.res.batches))
	}
	if r.res.bindGroup == nil {
		t.Error("empty frame still needs its uniforms bound")
	}
	if err := r.Draw(); err != nil {
		t.Fatalf("Draw(empty): %v", err)
	}

	if err := r.Upload(nil, frame.Viewport{}.Uniforms()); err != nil {
		t.Fatalf("Upload(nil): %v", err)
	}
	// Zero-sized frames have no pixels to draw.
	if err := r.Draw(); err != nil {
		t.Fatalf("Draw(zero size): %v", err)
	}
}

func TestInstanceRendererReupload(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewInstanceRenderer(device, queue, RendererOptions{})
	defer r.Destroy()

	vp := frame.Viewport{Width: 8, Height: 8}
	if err := r.Upload(squareFrame(t, 2), vp.Uniforms()); err != nil {
		t.Fatal(err)
	}
	first := r.res
	if err := r.Upload(squareFrame(t, 1), vp.Uniforms()); err != nil {
		t.Fatal(err)
	}
	if first.uniform != nil || first.batches != nil {
		t.Error("previous frame resources were not released")
	}
	if len(r.res.batches) != 1 {
		t.Errorf("batches = %d, want 1", len(r.res.batches))
	}
}

func TestInstanceRendererDestroyIdempotent(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewInstanceRenderer(device, queue, RendererOptions{})
	if err := r.Upload(squareFrame(t, 1), frame.Viewport{Width: 4, Height: 4}.Uniforms()); err != nil {
		t.Fatal(err)
	}
	r.Destroy()
	r.Destroy()
	if r.pipeline != nil || r.res != nil {
		t.Error("Destroy left resources behind")
	}
}

func TestInstanceRendererSnapshotErrors(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	r := NewInstanceRenderer(device, queue, RendererOptions{})
	defer r.Destroy()

	if _, err := r.Snapshot(); err == nil {
		t.Error("Snapshot before Draw should fail")
	}
}

func TestVertexBufferLayout(t *testing.T) {
	tests := []struct {
		mode frame.StepMode
		want gputypes.VertexStepMode
	}{
		{frame.StepInstance, gputypes.VertexStepModeInstance},
		{frame.StepVertex, gputypes.VertexStepModeVertex},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			l := VertexBufferLayout(tt.mode)
			if l.ArrayStride != frame.VertexSize {
				t.Errorf("ArrayStride = %d, want %d", l.ArrayStride, frame.VertexSize)
			}
			if l.StepMode != tt.want {
				t.Errorf("StepMode = %v, want %v", l.StepMode, tt.want)
			}
			wantLoc := []uint32{0, 2, 3, 4, 5}
			if len(l.Attributes) != len(wantLoc) {
				t.Fatalf("attributes = %d, want %d", len(l.Attributes), len(wantLoc))
			}
			for i, a := range l.Attributes {
				if a.ShaderLocation != wantLoc[i] {
					t.Errorf("attr %d location = %d, want %d", i, a.ShaderLocation, wantLoc[i])
				}
			}
			if l.Attributes[4].Format != gputypes.VertexFormatUint32 {
				t.Errorf("flags format = %v, want Uint32", l.Attributes[4].Format)
			}
			if l.Attributes[1].Format != gputypes.VertexFormatFloat32x4 {
				t.Errorf("color format = %v, want Float32x4", l.Attributes[1].Format)
			}
		})
	}
}

func TestCopyRows(t *testing.T) {
	// Two rows of one pixel each, padded to a 8-byte pitch.
	src := []byte{
		1, 2, 3, 4, 0, 0, 0, 0,
		5, 6, 7, 8, 0, 0, 0, 0,
	}
	dst := make([]byte, 8)
	copyRows(dst, src, 4, 8, 2, gputypes.TextureFormatBGRA8Unorm)
	want := []byte{3, 2, 1, 4, 7, 6, 5, 8}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("BGRA copy = %v, want %v", dst, want)
		}
	}

	copyRows(dst, src, 4, 8, 2, gputypes.TextureFormatRGBA8Unorm)
	want = []byte{1, 2, 3, 4, 5, 6, 7, 8}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("RGBA copy = %v, want %v", dst, want)
		}
	}
}
