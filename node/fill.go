package node

import "github.com/gogpu/vgraph"

// SetFill replaces the fill of its input.
//
// With Kind FillNone or FillSolid the output fill is Solid(Color) when a
// color is given and None otherwise; the gradient fields are ignored.
// With Kind FillGradient the output is a gradient built from the gradient
// fields, stops copied as given.
type SetFill struct {
	Kind  vgraph.FillKind
	Color *vgraph.Color

	GradientKind vgraph.GradientKind
	Start        vgraph.Point
	End          vgraph.Point
	Transform    vgraph.Affine
	Stops        []vgraph.GradientStop
}

// Apply implements Node.
func (n SetFill) Apply(in vgraph.VectorData) vgraph.VectorData {
	out := in.Clone()
	out.Style.Fill = n.fill()
	return out
}

func (n SetFill) fill() vgraph.Fill {
	if n.Kind == vgraph.FillGradient {
		return vgraph.GradientFill(vgraph.Gradient{
			Kind:      n.GradientKind,
			Start:     n.Start,
			End:       n.End,
			Transform: n.Transform,
			Stops:     n.Stops,
		})
	}
	if n.Color == nil {
		return vgraph.NoFill()
	}
	return vgraph.SolidFill(*n.Color)
}
