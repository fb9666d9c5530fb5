package tess

import (
	"fmt"
	"math"

	"github.com/gogpu/vgraph"
)

// DefaultTolerance is the maximum distance, in path units, between a
// curve and its flattened polyline.
const DefaultTolerance = 0.1

// maxFlattenDepth bounds curve subdivision, giving at most 2^16 lines
// per segment.
const maxFlattenDepth = 16

// flatten appends one polygon ring per non-empty subpath to rings.
// Open subpaths are closed implicitly; a closed subpath does not repeat
// its first point.
func flatten(rings [][]vgraph.Point, subpaths []vgraph.Subpath, tolerance float64) ([][]vgraph.Point, error) {
	for i, s := range subpaths {
		if s.IsEmpty() {
			continue
		}
		for _, g := range s.Groups() {
			if !g.Anchor.IsFinite() || !g.In.IsFinite() || !g.Out.IsFinite() {
				return rings, fmt.Errorf("%w: subpath %d has a non-finite coordinate", vgraph.ErrTessellation, i)
			}
		}

		anchors := s.Anchors()
		ring := []vgraph.Point{anchors[0]}
		for _, seg := range s.Segments() {
			if seg.IsLine() {
				ring = append(ring, seg.P3)
				continue
			}
			ring = flattenCubic(ring, seg, tolerance, 0)
		}
		if len(ring) > 1 && ring[len(ring)-1] == ring[0] {
			ring = ring[:len(ring)-1]
		}
		rings = append(rings, ring)
	}
	return rings, nil
}

// flattenCubic appends the end points of line segments approximating c,
// excluding c.P0.
func flattenCubic(out []vgraph.Point, c vgraph.CubicBez, tolerance float64, depth int) []vgraph.Point {
	if depth >= maxFlattenDepth || isCubicFlat(c, tolerance) {
		return append(out, c.P3)
	}
	left, right := c.Subdivide()
	out = flattenCubic(out, left, tolerance, depth+1)
	return flattenCubic(out, right, tolerance, depth+1)
}

func isCubicFlat(c vgraph.CubicBez, tolerance float64) bool {
	d1 := pointToLineDistance(c.P1, c.P0, c.P3)
	d2 := pointToLineDistance(c.P2, c.P0, c.P3)
	return math.Max(d1, d2) <= tolerance
}

func pointToLineDistance(p, a, b vgraph.Point) float64 {
	ab := b.Sub(a)
	lenSq := ab.Dot(ab)
	if lenSq < 1e-20 {
		return p.Distance(a)
	}
	// |cross(b-a, p-a)| / |b-a|
	return math.Abs(ab.Cross(p.Sub(a))) / math.Sqrt(lenSq)
}
