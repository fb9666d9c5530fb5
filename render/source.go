// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"iter"
	"slices"

	"github.com/gogpu/vgraph"
	"github.com/gogpu/vgraph/frame"
)

// PathItem is one styled path to draw. Depth is its draw-order integer;
// higher depths paint on top.
type PathItem struct {
	Data  vgraph.VectorData
	Depth int
}

// StateSource gives read access to the current document state.
// VisiblePaths returns ok == false when no state is available for this
// frame; the frame is then skipped.
type StateSource interface {
	VisiblePaths() (paths iter.Seq[PathItem], ok bool)
}

// Versioned is implemented by sources that can tell whether their paths
// changed. An unchanged version lets the loop redraw the last geometry
// instead of rebuilding it.
type Versioned interface {
	Version() uint64
}

// Notifier receives "artwork updated" notifications, once per frame.
type Notifier interface {
	ArtworkUpdated(frame uint64)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(frame uint64)

// ArtworkUpdated calls f(frame).
func (f NotifierFunc) ArtworkUpdated(frame uint64) { f(frame) }

// Scheduler runs a callback on the host's next display frame.
type Scheduler interface {
	RequestFrame(fn func())
}

// Surface describes the drawing surface.
type Surface interface {
	// Size returns the surface size in physical pixels.
	Size() (width, height int)
	// DevicePixelRatio returns physical pixels per logical pixel.
	DevicePixelRatio() float64
}

// Backend is the graphics API used to draw a frame.
//
// Upload replaces the GPU buffers with fb and sets the uniforms. The
// FrameBuffer stays owned by the caller and is valid until the next
// Upload. Draw clears the target and issues one indexed draw per
// non-empty batch.
type Backend interface {
	Upload(fb *frame.FrameBuffer, u frame.Uniforms) error
	Draw() error
}

// FixedSurface is a Surface of constant size.
type FixedSurface struct {
	Width, Height int
	Ratio         float64
}

// Size implements Surface.
func (s FixedSurface) Size() (int, int) { return s.Width, s.Height }

// DevicePixelRatio implements Surface. A zero Ratio reads as 1.
func (s FixedSurface) DevicePixelRatio() float64 {
	if s.Ratio == 0 {
		return 1
	}
	return s.Ratio
}

// StaticSource is a versioned StateSource holding a fixed list of paths.
// Set replaces the list and bumps the version. The zero value is an
// available source with no paths.
type StaticSource struct {
	items   []PathItem
	version uint64
}

// NewStaticSource returns a source holding items.
func NewStaticSource(items ...PathItem) *StaticSource {
	s := &StaticSource{}
	s.Set(items...)
	return s
}

// Set replaces the paths.
func (s *StaticSource) Set(items ...PathItem) {
	s.items = slices.Clone(items)
	s.version++
}

// VisiblePaths implements StateSource.
func (s *StaticSource) VisiblePaths() (iter.Seq[PathItem], bool) {
	return slices.Values(s.items), true
}

// Version implements Versioned.
func (s *StaticSource) Version() uint64 { return s.version }
