package vgraph

// NewCubicSpline returns an open subpath holding the natural cubic
// spline through points: a C2-continuous chain of cubic Bezier segments
// passing through every point in order, with zero curvature at both ends.
//
// No points gives an empty subpath, one point a single anchor without
// handles.
func NewCubicSpline(points []Point) Subpath {
	switch len(points) {
	case 0:
		return Subpath{}
	case 1:
		return FromAnchors(points, false)
	}

	n := len(points) - 1 // segment count
	p1 := make([]Point, n)
	p2 := make([]Point, n)

	if n == 1 {
		p1[0] = points[0].Lerp(points[1], 1.0/3)
		p2[0] = points[0].Lerp(points[1], 2.0/3)
	} else {
		solveFirstControls(points, p1)
		for i := 0; i < n-1; i++ {
			p2[i] = points[i+1].Mul(2).Sub(p1[i+1])
		}
		p2[n-1] = points[n].Add(p1[n-1]).Mul(0.5)
	}

	groups := make([]ManipulatorGroup, n+1)
	for i, k := range points {
		g := AnchorGroup(k)
		if i < n {
			g.Out = p1[i]
		}
		if i > 0 {
			g.In = p2[i-1]
		}
		groups[i] = g
	}
	return Subpath{groups: groups}
}

// solveFirstControls fills p1 with the first control point of every
// segment by solving the tridiagonal system of the natural spline with
// the Thomas algorithm. len(p1) must be len(k)-1 and at least 2.
func solveFirstControls(k []Point, p1 []Point) {
	n := len(p1)
	a := make([]float64, n)
	b := make([]float64, n)
	c := make([]float64, n)
	r := make([]Point, n)

	b[0], c[0] = 2, 1
	r[0] = k[0].Add(k[1].Mul(2))
	for i := 1; i < n-1; i++ {
		a[i], b[i], c[i] = 1, 4, 1
		r[i] = k[i].Mul(4).Add(k[i+1].Mul(2))
	}
	a[n-1], b[n-1] = 2, 7
	r[n-1] = k[n-1].Mul(8).Add(k[n])

	for i := 1; i < n; i++ {
		m := a[i] / b[i-1]
		b[i] -= m * c[i-1]
		r[i] = r[i].Sub(r[i-1].Mul(m))
	}

	p1[n-1] = r[n-1].Mul(1 / b[n-1])
	for i := n - 2; i >= 0; i-- {
		p1[i] = r[i].Sub(p1[i+1].Mul(c[i])).Mul(1 / b[i])
	}
}
