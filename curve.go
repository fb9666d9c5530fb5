package vgraph

import "math"

// Rect is an axis-aligned rectangle. Min is the top-left corner.
type Rect struct {
	Min, Max Point
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 { return r.Max.X - r.Min.X }

// Height returns the height of the rectangle.
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		Min: Point{X: math.Min(r.Min.X, other.Min.X), Y: math.Min(r.Min.Y, other.Min.Y)},
		Max: Point{X: math.Max(r.Max.X, other.Max.X), Y: math.Max(r.Max.Y, other.Max.Y)},
	}
}

func (r Rect) extend(p Point) Rect {
	return Rect{
		Min: Point{X: math.Min(r.Min.X, p.X), Y: math.Min(r.Min.Y, p.Y)},
		Max: Point{X: math.Max(r.Max.X, p.X), Y: math.Max(r.Max.Y, p.Y)},
	}
}

// CubicBez is a cubic Bezier segment. P0 and P3 are the end points,
// P1 and P2 the control points. A straight segment is stored with its
// control points on the end points.
type CubicBez struct {
	P0, P1, P2, P3 Point
}

// LineSegment returns a straight segment from p0 to p1 in cubic form.
func LineSegment(p0, p1 Point) CubicBez {
	return CubicBez{P0: p0, P1: p0, P2: p1, P3: p1}
}

// Eval evaluates the curve at parameter t in [0, 1].
func (c CubicBez) Eval(t float64) Point {
	mt := 1.0 - t
	mt2 := mt * mt
	t2 := t * t

	// (1-t)^3 P0 + 3(1-t)^2 t P1 + 3(1-t) t^2 P2 + t^3 P3
	return Point{
		X: mt2*mt*c.P0.X + 3*mt2*t*c.P1.X + 3*mt*t2*c.P2.X + t2*t*c.P3.X,
		Y: mt2*mt*c.P0.Y + 3*mt2*t*c.P1.Y + 3*mt*t2*c.P2.Y + t2*t*c.P3.Y,
	}
}

// Split divides the curve at t using de Casteljau.
func (c CubicBez) Split(t float64) (CubicBez, CubicBez) {
	p01 := c.P0.Lerp(c.P1, t)
	p12 := c.P1.Lerp(c.P2, t)
	p23 := c.P2.Lerp(c.P3, t)
	p012 := p01.Lerp(p12, t)
	p123 := p12.Lerp(p23, t)
	mid := p012.Lerp(p123, t)

	return CubicBez{P0: c.P0, P1: p01, P2: p012, P3: mid},
		CubicBez{P0: mid, P1: p123, P2: p23, P3: c.P3}
}

// Subdivide splits the curve at t=0.5.
func (c CubicBez) Subdivide() (CubicBez, CubicBez) {
	return c.Split(0.5)
}

// IsLine reports whether both control points lie on the chord, so the
// segment can be treated as a straight line.
func (c CubicBez) IsLine() bool {
	const eps = 1e-9
	chord := c.P3.Sub(c.P0)
	n := chord.Length()
	if n < eps {
		return c.P1.Distance(c.P0) < eps && c.P2.Distance(c.P0) < eps
	}
	d1 := math.Abs(chord.Cross(c.P1.Sub(c.P0))) / n
	d2 := math.Abs(chord.Cross(c.P2.Sub(c.P0))) / n
	if d1 > eps || d2 > eps {
		return false
	}
	// Control points must project inside the chord, otherwise the curve
	// overshoots its end points.
	t1 := chord.Dot(c.P1.Sub(c.P0)) / (n * n)
	t2 := chord.Dot(c.P2.Sub(c.P0)) / (n * n)
	return t1 >= -eps && t1 <= 1+eps && t2 >= -eps && t2 <= 1+eps
}

// Length returns the arc length of the curve within the given accuracy.
// Straight segments return the exact chord length.
func (c CubicBez) Length(accuracy float64) float64 {
	if c.IsLine() {
		return c.P0.Distance(c.P3)
	}
	if accuracy <= 0 {
		accuracy = 1e-6
	}
	return c.length(accuracy, 0)
}

// maxLengthDepth bounds recursion for pathological curves.
const maxLengthDepth = 24

func (c CubicBez) length(accuracy float64, depth int) float64 {
	chord := c.P0.Distance(c.P3)
	poly := c.P0.Distance(c.P1) + c.P1.Distance(c.P2) + c.P2.Distance(c.P3)
	if poly-chord <= accuracy || depth >= maxLengthDepth {
		// Gravesen estimate.
		return (2*chord + poly) / 3
	}
	a, b := c.Subdivide()
	return a.length(accuracy/2, depth+1) + b.length(accuracy/2, depth+1)
}

// ParamAtLength returns the parameter t at which the arc length measured
// from P0 equals s. s is clamped to [0, total].
func (c CubicBez) ParamAtLength(s, total, accuracy float64) float64 {
	if total <= 0 || s <= 0 {
		return 0
	}
	if s >= total {
		return 1
	}
	lo, hi := 0.0, 1.0
	for i := 0; i < 48 && hi-lo > 1e-12; i++ {
		mid := (lo + hi) / 2
		head, _ := c.Split(mid)
		if head.Length(accuracy) < s {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// Bounds returns the bounding box of the control polygon, which contains
// the curve.
func (c CubicBez) Bounds() Rect {
	r := Rect{Min: c.P0, Max: c.P0}
	return r.extend(c.P1).extend(c.P2).extend(c.P3)
}

// Transform returns the curve with every point mapped through m.
func (c CubicBez) Transform(m Affine) CubicBez {
	return CubicBez{
		P0: m.TransformPoint(c.P0),
		P1: m.TransformPoint(c.P1),
		P2: m.TransformPoint(c.P2),
		P3: m.TransformPoint(c.P3),
	}
}
