// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"

	"golang.org/x/image/colornames"

	"github.com/gogpu/vgraph"
	"github.com/gogpu/vgraph/frame"
	"github.com/gogpu/vgraph/internal/tess"
)

// Policy decides which paths are tessellated and how their vertices are
// colored and flagged.
type Policy int

const (
	// PolicyFillOrStroke tessellates any path with a visible fill or a
	// stroke. Vertices take the fill color (solid, or the gradient at the
	// vertex), else the stroke color, else the fallback color. The closed
	// flag is set when every subpath is closed.
	PolicyFillOrStroke Policy = iota

	// PolicyStrokeTriggered tessellates only paths that have a stroke and
	// colors them with the stroke color, else the fallback color. The
	// closed flag is always cleared. This reproduces the behavior of
	// earlier editor builds.
	PolicyStrokeTriggered
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyFillOrStroke:
		return "fill-or-stroke"
	case PolicyStrokeTriggered:
		return "stroke-triggered"
	default:
		return fmt.Sprintf("Policy(%d)", int(p))
	}
}

// Option configures a Renderer.
//
// Example:
//
//	r, err := render.NewRenderer(backend, surface,
//	    render.WithPolicy(render.PolicyStrokeTriggered),
//	    render.WithFillRule(vgraph.FillRuleNonZero),
//	)
type Option func(*options)

type options struct {
	policy     Policy
	fallback   vgraph.Color
	tolerance  float64
	fillRule   vgraph.FillRule
	maxIndices int
}

// defaultOptions returns the default renderer options.
func defaultOptions() options {
	return options{
		policy:     PolicyFillOrStroke,
		fallback:   vgraph.FromColor(colornames.Black),
		tolerance:  tess.DefaultTolerance,
		fillRule:   vgraph.FillRuleEvenOdd,
		maxIndices: frame.MaxIndices,
	}
}

// WithPolicy selects the tessellation policy.
func WithPolicy(p Policy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithFallbackColor sets the vertex color used when a path has neither a
// fill color nor a stroke color. The default is opaque black.
func WithFallbackColor(c vgraph.Color) Option {
	return func(o *options) {
		o.fallback = c
	}
}

// WithTolerance sets the curve flattening tolerance in logical pixels.
func WithTolerance(tol float64) Option {
	return func(o *options) {
		o.tolerance = tol
	}
}

// WithFillRule selects the fill rule. The default is even-odd.
func WithFillRule(rule vgraph.FillRule) Option {
	return func(o *options) {
		o.fillRule = rule
	}
}

// WithMaxIndices lowers the per-batch index ceiling. Values outside
// [3, 65535] make NewRenderer fail with vgraph.ErrCapacity.
func WithMaxIndices(n int) Option {
	return func(o *options) {
		o.maxIndices = n
	}
}

// LoopOption configures a Loop.
type LoopOption func(*loopOptions)

type loopOptions struct {
	notifier Notifier
}

// WithNotifier sets the receiver of per-frame "artwork updated"
// notifications.
func WithNotifier(n Notifier) LoopOption {
	return func(o *loopOptions) {
		o.notifier = n
	}
}
