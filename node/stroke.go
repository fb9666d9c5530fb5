package node

import "github.com/gogpu/vgraph"

// SetStroke replaces the stroke of its input wholesale. Values are not
// validated; consumers handle zero or negative weights and dash lengths.
type SetStroke struct {
	Color       *vgraph.Color
	Weight      float64
	DashLengths []float64
	DashOffset  float64
	Cap         vgraph.LineCap
	Join        vgraph.LineJoin
	MiterLimit  float64
}

// Apply implements Node.
func (n SetStroke) Apply(in vgraph.VectorData) vgraph.VectorData {
	out := in.Clone()
	s := vgraph.Stroke{
		Color:       n.Color,
		Weight:      n.Weight,
		DashLengths: n.DashLengths,
		DashOffset:  n.DashOffset,
		Cap:         n.Cap,
		Join:        n.Join,
		MiterLimit:  n.MiterLimit,
	}.Clone()
	out.Style.Stroke = &s
	return out
}
