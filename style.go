package vgraph

import "fmt"

// LineCap specifies the shape of line endpoints.
type LineCap int

const (
	// LineCapButt specifies a flat line cap.
	LineCapButt LineCap = iota
	// LineCapRound specifies a rounded line cap.
	LineCapRound
	// LineCapSquare specifies a square line cap.
	LineCapSquare
)

// String returns the cap name.
func (c LineCap) String() string {
	switch c {
	case LineCapButt:
		return "butt"
	case LineCapRound:
		return "round"
	case LineCapSquare:
		return "square"
	}
	return fmt.Sprintf("LineCap(%d)", int(c))
}

// LineJoin specifies the shape of line joins.
type LineJoin int

const (
	// LineJoinMiter specifies a sharp (mitered) join.
	LineJoinMiter LineJoin = iota
	// LineJoinBevel specifies a beveled join.
	LineJoinBevel
	// LineJoinRound specifies a rounded join.
	LineJoinRound
)

// String returns the join name.
func (j LineJoin) String() string {
	switch j {
	case LineJoinMiter:
		return "miter"
	case LineJoinBevel:
		return "bevel"
	case LineJoinRound:
		return "round"
	}
	return fmt.Sprintf("LineJoin(%d)", int(j))
}

// FillRule specifies how to determine which areas are inside a path.
type FillRule int

const (
	// FillRuleEvenOdd uses the even-odd rule.
	FillRuleEvenOdd FillRule = iota
	// FillRuleNonZero uses the non-zero winding rule.
	FillRuleNonZero
)

// FillKind tags the variant held by a Fill.
type FillKind int

const (
	FillNone FillKind = iota
	FillSolid
	FillGradient
)

// String returns the kind name.
func (k FillKind) String() string {
	switch k {
	case FillNone:
		return "none"
	case FillSolid:
		return "solid"
	case FillGradient:
		return "gradient"
	}
	return fmt.Sprintf("FillKind(%d)", int(k))
}

// GradientKind selects linear or radial interpolation.
type GradientKind int

const (
	GradientLinear GradientKind = iota
	GradientRadial
)

// GradientStop is one color stop. Position is nominally in [0, 1];
// a nil Color marks a stop without a color.
type GradientStop struct {
	Position float64
	Color    *Color
}

// Gradient describes a linear or radial color ramp between Start and End,
// placed in path space by Transform. For radial gradients Start is the
// center and the distance to End the radius.
//
// Stops are kept as given. Ordering and range are not validated.
type Gradient struct {
	Kind      GradientKind
	Start     Point
	End       Point
	Transform Affine
	Stops     []GradientStop
}

// Clone returns a deep copy of g.
func (g Gradient) Clone() Gradient {
	g.Stops = cloneStops(g.Stops)
	return g
}

func cloneStops(stops []GradientStop) []GradientStop {
	if stops == nil {
		return nil
	}
	out := make([]GradientStop, len(stops))
	for i, s := range stops {
		out[i].Position = s.Position
		if s.Color != nil {
			out[i].Color = s.Color.Ptr()
		}
	}
	return out
}

// Fill is the tagged fill variant: None, Solid(color) or Gradient.
// The zero value is FillNone.
type Fill struct {
	Kind     FillKind
	Color    Color
	Gradient *Gradient
}

// NoFill returns the empty fill.
func NoFill() Fill { return Fill{} }

// SolidFill returns a solid fill of c.
func SolidFill(c Color) Fill { return Fill{Kind: FillSolid, Color: c} }

// GradientFill returns a gradient fill holding a copy of g.
func GradientFill(g Gradient) Fill {
	c := g.Clone()
	return Fill{Kind: FillGradient, Gradient: &c}
}

// IsVisible reports whether the fill paints anything.
func (f Fill) IsVisible() bool {
	switch f.Kind {
	case FillSolid:
		return true
	case FillGradient:
		return f.Gradient != nil
	}
	return false
}

// Clone returns a deep copy of f.
func (f Fill) Clone() Fill {
	if f.Gradient != nil {
		g := f.Gradient.Clone()
		f.Gradient = &g
	}
	return f
}

// Stroke describes how a path outline is painted.
type Stroke struct {
	// Color is nil when the stroke has no color of its own.
	Color *Color

	// Weight is the line width in logical pixels.
	Weight float64

	DashLengths []float64
	DashOffset  float64

	Cap  LineCap
	Join LineJoin

	// MiterLimit is only used when Join is LineJoinMiter.
	MiterLimit float64
}

// DefaultStroke returns a 1 pixel black stroke with butt caps and miter
// joins.
func DefaultStroke() Stroke {
	return Stroke{
		Color:      Black.Ptr(),
		Weight:     1,
		Cap:        LineCapButt,
		Join:       LineJoinMiter,
		MiterLimit: 4,
	}
}

// IsDashed reports whether the stroke has a dash pattern with a
// positive total length.
func (s Stroke) IsDashed() bool {
	var sum float64
	for _, d := range s.DashLengths {
		sum += d
	}
	return sum > 0
}

// Clone returns a deep copy of s.
func (s Stroke) Clone() Stroke {
	if s.Color != nil {
		s.Color = s.Color.Ptr()
	}
	if s.DashLengths != nil {
		s.DashLengths = append([]float64(nil), s.DashLengths...)
	}
	return s
}

// PathStyle is the fill and optional stroke attached to vector data.
type PathStyle struct {
	Fill   Fill
	Stroke *Stroke
}

// Clone returns a deep copy of s.
func (s PathStyle) Clone() PathStyle {
	s.Fill = s.Fill.Clone()
	if s.Stroke != nil {
		st := s.Stroke.Clone()
		s.Stroke = &st
	}
	return s
}
