//go:build !nogpu

// Package gogpu draws vgraph frame buffers with the gogpu/wgpu HAL.
//
// A Backend either shares the device of a gogpu host window
// (NewFromProvider) or opens its own headless Vulkan device (NewHeadless).
// Headless backends render offscreen and expose the pixels through
// Snapshot, which is how tests and image exports read a frame.
//
//	b, err := gogpu.NewHeadless()
//	if err != nil {
//		return err
//	}
//	defer b.Close()
//	r, err := render.NewRenderer(b, render.FixedSurface{Width: 640, Height: 480})
package gogpu

import "errors"

// Package errors for the gogpu backend. Constructors wrap them together
// with vgraph.ErrSetup.
var (
	// ErrNilProvider is returned when NewFromProvider gets a nil provider.
	ErrNilProvider = errors.New("gogpu: nil device provider")

	// ErrNoHAL is returned when the provider does not expose HAL types.
	ErrNoHAL = errors.New("gogpu: provider does not expose HAL device and queue")

	// ErrNoGPUBackend is returned when no HAL backend is registered.
	ErrNoGPUBackend = errors.New("gogpu: no GPU backend available")

	// ErrNoAdapter is returned when the instance enumerates no adapters.
	ErrNoAdapter = errors.New("gogpu: no GPU adapters found")

	// ErrClosed is returned when a closed backend is used.
	ErrClosed = errors.New("gogpu: backend closed")
)
