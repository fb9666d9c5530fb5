package vgraph

import "math"

// lengthAccuracy is the arc length tolerance used by Subpath measurements.
const lengthAccuracy = 1e-6

// ManipulatorGroup is one anchor of a subpath with its incoming and
// outgoing handles. A handle equal to the anchor means "no handle".
type ManipulatorGroup struct {
	Anchor Point
	In     Point
	Out    Point
}

// AnchorGroup returns a group at p with no handles.
func AnchorGroup(p Point) ManipulatorGroup {
	return ManipulatorGroup{Anchor: p, In: p, Out: p}
}

// HasHandles reports whether either handle differs from the anchor.
func (g ManipulatorGroup) HasHandles() bool {
	return g.In != g.Anchor || g.Out != g.Anchor
}

// Subpath is one continuous curve made of manipulator groups.
// A closed subpath connects its last anchor back to the first.
//
// Subpath values are immutable: constructors copy their input and
// accessors return copies, so a Subpath can be shared freely.
type Subpath struct {
	groups []ManipulatorGroup
	closed bool
}

// NewSubpath creates a subpath from the given groups.
func NewSubpath(groups []ManipulatorGroup, closed bool) Subpath {
	return Subpath{groups: append([]ManipulatorGroup(nil), groups...), closed: closed}
}

// FromAnchors creates a polyline subpath through points.
func FromAnchors(points []Point, closed bool) Subpath {
	groups := make([]ManipulatorGroup, len(points))
	for i, p := range points {
		groups[i] = AnchorGroup(p)
	}
	return Subpath{groups: groups, closed: closed}
}

// Rectangle returns a closed four-anchor subpath covering the rectangle
// from p0 to p1.
func Rectangle(p0, p1 Point) Subpath {
	return FromAnchors([]Point{p0, {X: p1.X, Y: p0.Y}, p1, {X: p0.X, Y: p1.Y}}, true)
}

// Ellipse returns a closed subpath approximating the ellipse inside the
// rectangle from p0 to p1 with four cubic segments.
func Ellipse(p0, p1 Point) Subpath {
	// Handle length for a quarter circle.
	const k = 0.5522847498307936
	c := p0.Lerp(p1, 0.5)
	rx, ry := math.Abs(p1.X-p0.X)/2, math.Abs(p1.Y-p0.Y)/2
	hx, hy := rx*k, ry*k

	top := Pt(c.X, c.Y-ry)
	right := Pt(c.X+rx, c.Y)
	bottom := Pt(c.X, c.Y+ry)
	left := Pt(c.X-rx, c.Y)
	return Subpath{groups: []ManipulatorGroup{
		{Anchor: top, In: Pt(top.X-hx, top.Y), Out: Pt(top.X+hx, top.Y)},
		{Anchor: right, In: Pt(right.X, right.Y-hy), Out: Pt(right.X, right.Y+hy)},
		{Anchor: bottom, In: Pt(bottom.X+hx, bottom.Y), Out: Pt(bottom.X-hx, bottom.Y)},
		{Anchor: left, In: Pt(left.X, left.Y+hy), Out: Pt(left.X, left.Y-hy)},
	}, closed: true}
}

// Len returns the number of manipulator groups.
func (s Subpath) Len() int { return len(s.groups) }

// IsEmpty reports whether the subpath has no anchors.
func (s Subpath) IsEmpty() bool { return len(s.groups) == 0 }

// Closed reports whether the subpath is closed.
func (s Subpath) Closed() bool { return s.closed }

// Groups returns a copy of the manipulator groups.
func (s Subpath) Groups() []ManipulatorGroup {
	return append([]ManipulatorGroup(nil), s.groups...)
}

// Anchors returns the anchor points in order, ignoring handles.
func (s Subpath) Anchors() []Point {
	out := make([]Point, len(s.groups))
	for i, g := range s.groups {
		out[i] = g.Anchor
	}
	return out
}

// Segments returns the cubic segments of the subpath. A closed subpath
// includes the segment from the last anchor back to the first.
func (s Subpath) Segments() []CubicBez {
	n := len(s.groups)
	if n < 2 {
		return nil
	}
	count := n - 1
	if s.closed {
		count = n
	}
	segs := make([]CubicBez, 0, count)
	for i := 0; i < count; i++ {
		a, b := s.groups[i], s.groups[(i+1)%n]
		segs = append(segs, CubicBez{P0: a.Anchor, P1: a.Out, P2: b.In, P3: b.Anchor})
	}
	return segs
}

// Length returns the total arc length.
func (s Subpath) Length() float64 {
	var total float64
	for _, seg := range s.Segments() {
		total += seg.Length(lengthAccuracy)
	}
	return total
}

// EvaluateEuclidean returns the point at normalized arc length t in [0, 1]
// measured along the whole subpath. t is clamped into range. An empty
// subpath evaluates to the zero point.
func (s Subpath) EvaluateEuclidean(t float64) Point {
	return s.Measure().At(t)
}

// Measure returns an arc length table for s. Use it instead of
// EvaluateEuclidean when sampling many points along one subpath.
func (s Subpath) Measure() Measure {
	m := Measure{segs: s.Segments()}
	if len(s.groups) > 0 {
		m.start = s.groups[0].Anchor
	}
	m.lengths = make([]float64, len(m.segs))
	for i, seg := range m.segs {
		m.lengths[i] = seg.Length(lengthAccuracy)
		m.total += m.lengths[i]
	}
	return m
}

// Measure holds per segment arc lengths of a subpath.
type Measure struct {
	start   Point
	segs    []CubicBez
	lengths []float64
	total   float64
}

// Length returns the total arc length.
func (m Measure) Length() float64 { return m.total }

// At returns the point at normalized arc length t, clamped to [0, 1].
func (m Measure) At(t float64) Point {
	if len(m.segs) == 0 || m.total == 0 {
		return m.start
	}
	t = math.Max(0, math.Min(1, t))

	target := t * m.total
	for i, seg := range m.segs {
		if target <= m.lengths[i] || i == len(m.segs)-1 {
			if seg.IsLine() {
				// Eval is not linear in t when handles sit on anchors.
				if m.lengths[i] == 0 {
					return seg.P0
				}
				return seg.P0.Lerp(seg.P3, math.Min(target/m.lengths[i], 1))
			}
			return seg.Eval(seg.ParamAtLength(target, m.lengths[i], lengthAccuracy))
		}
		target -= m.lengths[i]
	}
	return m.segs[len(m.segs)-1].P3
}

// Bounds returns the bounding box of all anchors and handles.
// The second result is false for an empty subpath.
func (s Subpath) Bounds() (Rect, bool) {
	if len(s.groups) == 0 {
		return Rect{}, false
	}
	r := Rect{Min: s.groups[0].Anchor, Max: s.groups[0].Anchor}
	for _, g := range s.groups {
		r = r.extend(g.Anchor).extend(g.In).extend(g.Out)
	}
	return r, true
}

// Transform returns a copy of the subpath with every point mapped by m.
func (s Subpath) Transform(m Affine) Subpath {
	groups := make([]ManipulatorGroup, len(s.groups))
	for i, g := range s.groups {
		groups[i] = ManipulatorGroup{
			Anchor: m.TransformPoint(g.Anchor),
			In:     m.TransformPoint(g.In),
			Out:    m.TransformPoint(g.Out),
		}
	}
	return Subpath{groups: groups, closed: s.closed}
}
