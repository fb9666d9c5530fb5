package node

import "github.com/gogpu/vgraph"

// SetSplineFromPoints replaces the geometry with one open natural cubic
// spline through every anchor of the input, in subpath order then anchor
// order. Handles are ignored. Input without anchors yields no subpaths.
type SetSplineFromPoints struct{}

// Apply implements Node.
func (SetSplineFromPoints) Apply(in vgraph.VectorData) vgraph.VectorData {
	out := in.Clone()
	points := make([]vgraph.Point, 0, in.AnchorCount())
	for _, s := range in.Subpaths {
		points = append(points, s.Anchors()...)
	}
	if len(points) == 0 {
		out.Subpaths = nil
		return out
	}
	out.Subpaths = []vgraph.Subpath{vgraph.NewCubicSpline(points)}
	return out
}
