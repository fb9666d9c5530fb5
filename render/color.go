// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"math"
	"slices"

	"github.com/gogpu/vgraph"
)

// gradientRamp is a gradient prepared for per-vertex evaluation.
type gradientRamp struct {
	kind    vgraph.GradientKind
	inverse vgraph.Affine
	start   vgraph.Point
	axis    vgraph.Point
	axisLen float64
	stops   []rampStop
}

type rampStop struct {
	pos   float64
	color vgraph.Color
}

// newGradientRamp sorts the colored stops by position (stable) and clamps
// them into [0, 1]. Stops without a color are dropped. It returns false
// when no colored stop remains.
func newGradientRamp(g *vgraph.Gradient) (*gradientRamp, bool) {
	stops := make([]rampStop, 0, len(g.Stops))
	for _, s := range g.Stops {
		if s.Color == nil || math.IsNaN(s.Position) {
			continue
		}
		stops = append(stops, rampStop{pos: math.Max(0, math.Min(1, s.Position)), color: *s.Color})
	}
	if len(stops) == 0 {
		return nil, false
	}
	slices.SortStableFunc(stops, func(a, b rampStop) int {
		switch {
		case a.pos < b.pos:
			return -1
		case a.pos > b.pos:
			return 1
		}
		return 0
	})

	// The transform places the gradient in path space; vertices are
	// mapped back into gradient space. A singular transform reads as
	// the identity.
	inv, ok := g.Transform.Invert()
	if !ok {
		inv = vgraph.Identity()
	}
	axis := g.End.Sub(g.Start)
	return &gradientRamp{
		kind:    g.Kind,
		inverse: inv,
		start:   g.Start,
		axis:    axis,
		axisLen: axis.Length(),
		stops:   stops,
	}, true
}

// at returns the gradient color at path-space point p.
func (r *gradientRamp) at(p vgraph.Point) vgraph.Color {
	if r.axisLen == 0 {
		// A zero-length gradient paints its last stop.
		return r.stops[len(r.stops)-1].color
	}
	q := r.inverse.TransformPoint(p).Sub(r.start)
	var t float64
	if r.kind == vgraph.GradientRadial {
		t = q.Length() / r.axisLen
	} else {
		t = q.Dot(r.axis) / (r.axisLen * r.axisLen)
	}
	return r.sample(t)
}

func (r *gradientRamp) sample(t float64) vgraph.Color {
	first, last := r.stops[0], r.stops[len(r.stops)-1]
	if !(t > first.pos) {
		return first.color
	}
	if t >= last.pos {
		return last.color
	}
	for i := 1; i < len(r.stops); i++ {
		b := r.stops[i]
		if t > b.pos {
			continue
		}
		a := r.stops[i-1]
		if b.pos == a.pos {
			return b.color
		}
		return a.color.Lerp(b.color, float32((t-a.pos)/(b.pos-a.pos)))
	}
	return last.color
}
