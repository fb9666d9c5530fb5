//go:build !nogpu

package gogpu

import (
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL backend for NewHeadless.
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/vgraph"
	"github.com/gogpu/vgraph/frame"
	"github.com/gogpu/vgraph/internal/gpu"
	"github.com/gogpu/vgraph/render"
)

// Option configures a Backend.
type Option func(*options)

type options struct {
	stepMode frame.StepMode
	format   gputypes.TextureFormat
}

// WithStepMode selects the attribute step mode of the pipeline. The default
// is frame.StepInstance, the layout contract of the vertex format, under
// which each draw reads one vertex's attributes and produces no visible
// fill. Pass frame.StepVertex to draw the tessellated triangles.
func WithStepMode(m frame.StepMode) Option {
	return func(o *options) { o.stepMode = m }
}

// WithFormat overrides the color target format. Provider backends default
// to the surface format; headless backends to BGRA8Unorm.
func WithFormat(f gputypes.TextureFormat) Option {
	return func(o *options) { o.format = f }
}

// Backend implements render.Backend on a HAL device.
//
// Backend is safe for concurrent use; calls are serialized.
type Backend struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	renderer *gpu.InstanceRenderer

	// external is true when the device belongs to a host and must not be
	// destroyed on Close.
	external bool
	closed   bool
}

var _ render.Backend = (*Backend)(nil)

// NewFromProvider creates a backend on the device of a gogpu host. The
// provider must also implement HalDevice() any and HalQueue() any returning
// hal.Device and hal.Queue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...Option) (*Backend, error) {
	if provider == nil {
		return nil, fmt.Errorf("%w: %w", vgraph.ErrSetup, ErrNilProvider)
	}
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %w", vgraph.ErrSetup, ErrNoHAL)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: %w: HalDevice is not hal.Device", vgraph.ErrSetup, ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: %w: HalQueue is not hal.Queue", vgraph.ErrSetup, ErrNoHAL)
	}

	o := options{format: provider.SurfaceFormat()}
	for _, opt := range opts {
		opt(&o)
	}
	b := newBackend(device, queue, o)
	b.external = true
	vgraph.Logger().Info("gogpu: backend using shared device", "format", o.format)
	return b, nil
}

// NewHeadless opens a Vulkan device of its own, preferring discrete and
// integrated GPUs, and renders offscreen.
func NewHeadless(opts ...Option) (*Backend, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: %w: vulkan", vgraph.ErrSetup, ErrNoGPUBackend)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", vgraph.ErrSetup, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: %w", vgraph.ErrSetup, ErrNoAdapter)
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", vgraph.ErrSetup, err)
	}

	b := newBackend(openDev.Device, openDev.Queue, o)
	b.instance = instance
	vgraph.Logger().Info("gogpu: headless backend initialized", "adapter", selected.Info.Name)
	return b, nil
}

// NewWithDevice creates a backend on an already opened device. The caller
// keeps ownership of the device.
func NewWithDevice(device hal.Device, queue hal.Queue, opts ...Option) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: nil device or queue", vgraph.ErrSetup)
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	b := newBackend(device, queue, o)
	b.external = true
	return b, nil
}

func newBackend(device hal.Device, queue hal.Queue, o options) *Backend {
	return &Backend{
		device: device,
		queue:  queue,
		renderer: gpu.NewInstanceRenderer(device, queue, gpu.RendererOptions{
			StepMode: o.stepMode,
			Format:   o.format,
		}),
	}
}

// StepMode reports the attribute step mode of the pipeline.
func (b *Backend) StepMode() frame.StepMode {
	return b.renderer.StepMode()
}

// Upload replaces the frame on the GPU. Pipeline creation failures are
// reported as vgraph.ErrSetup.
func (b *Backend) Upload(fb *frame.FrameBuffer, u frame.Uniforms) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return b.renderer.Upload(fb, u)
}

// Draw clears the target and draws the uploaded frame.
func (b *Backend) Draw() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	return b.renderer.Draw()
}

// SetSurfaceTarget makes subsequent draws render into a host surface view,
// typically the current swapchain texture. Pass nil to render offscreen.
func (b *Backend) SetSurfaceTarget(view hal.TextureView, width, height uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.renderer.SetSurfaceTarget(view, width, height)
}

// Snapshot returns the last offscreen frame as an RGBA image.
func (b *Backend) Snapshot() (*image.RGBA, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	return b.renderer.Snapshot()
}

// Close releases GPU resources. Devices owned by a host are left alone.
// Close is idempotent.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.renderer.Destroy()
	if !b.external && b.device != nil {
		b.device.Destroy()
	}
	if b.instance != nil {
		b.instance.Destroy()
		b.instance = nil
	}
	b.device = nil
	b.queue = nil
	vgraph.Logger().Info("gogpu: backend closed")
}
