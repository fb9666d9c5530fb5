package vgraph

import (
	"math"
	"testing"
)

func TestSubpath_CopiesInput(t *testing.T) {
	pts := []Point{Pt(0, 0), Pt(10, 0)}
	s := FromAnchors(pts, false)
	pts[0] = Pt(99, 99)
	if got := s.Anchors()[0]; got != Pt(0, 0) {
		t.Errorf("FromAnchors kept a reference to its input: first anchor %v", got)
	}

	groups := s.Groups()
	groups[1].Anchor = Pt(-1, -1)
	if got := s.Anchors()[1]; got != Pt(10, 0) {
		t.Errorf("Groups() exposed internal storage: second anchor %v", got)
	}
}

func TestSubpath_Segments(t *testing.T) {
	tests := []struct {
		name   string
		s      Subpath
		want   int
		closed bool
	}{
		{"empty", Subpath{}, 0, false},
		{"single anchor", FromAnchors([]Point{Pt(1, 1)}, false), 0, false},
		{"open triangle", FromAnchors([]Point{Pt(0, 0), Pt(1, 0), Pt(0, 1)}, false), 2, false},
		{"closed triangle", FromAnchors([]Point{Pt(0, 0), Pt(1, 0), Pt(0, 1)}, true), 3, true},
		{"rectangle", Rectangle(Pt(0, 0), Pt(4, 2)), 4, true},
		{"ellipse", Ellipse(Pt(0, 0), Pt(4, 2)), 4, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(tt.s.Segments()); got != tt.want {
				t.Errorf("len(Segments()) = %d, want %d", got, tt.want)
			}
			if tt.s.Closed() != tt.closed {
				t.Errorf("Closed() = %v, want %v", tt.s.Closed(), tt.closed)
			}
		})
	}
}

func TestSubpath_Length(t *testing.T) {
	tests := []struct {
		name string
		s    Subpath
		want float64
		tol  float64
	}{
		{"empty", Subpath{}, 0, 0},
		{"polyline", FromAnchors([]Point{Pt(0, 0), Pt(3, 4), Pt(3, 10)}, false), 11, 1e-12},
		{"closed square", Rectangle(Pt(0, 0), Pt(10, 10)), 40, 1e-12},
		{"circle", Ellipse(Pt(-50, -50), Pt(50, 50)), 2 * math.Pi * 50, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Length(); math.Abs(got-tt.want) > tt.tol {
				t.Errorf("Length() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSubpath_EvaluateEuclidean(t *testing.T) {
	s := FromAnchors([]Point{Pt(0, 0), Pt(10, 0), Pt(10, 30)}, false)

	tests := []struct {
		t    float64
		want Point
	}{
		{0, Pt(0, 0)},
		{0.25, Pt(10, 0)},
		{0.5, Pt(10, 10)},
		{1, Pt(10, 30)},
		{-1, Pt(0, 0)},
		{2, Pt(10, 30)},
	}
	for _, tt := range tests {
		if got := s.EvaluateEuclidean(tt.t); !pointsEqual(got, tt.want, 1e-9) {
			t.Errorf("EvaluateEuclidean(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}

	line := FromAnchors([]Point{Pt(0, 0), Pt(100, 0)}, false).Measure()
	for _, at := range []float64{0.1, 0.25, 0.5, 0.75, 0.9} {
		if got, want := line.At(at), Pt(100*at, 0); !pointsEqual(got, want, 1e-9) {
			t.Errorf("line At(%v) = %v, want %v", at, got, want)
		}
	}

	single := FromAnchors([]Point{Pt(4, 5)}, false)
	if got := single.EvaluateEuclidean(0.5); got != Pt(4, 5) {
		t.Errorf("single anchor EvaluateEuclidean = %v, want (4, 5)", got)
	}
}

func TestSubpath_Transform(t *testing.T) {
	s := Rectangle(Pt(0, 0), Pt(1, 1)).Transform(Translate(5, 5))
	b, ok := s.Bounds()
	if !ok {
		t.Fatal("Bounds() reported empty")
	}
	if b.Min != Pt(5, 5) || b.Max != Pt(6, 6) {
		t.Errorf("Bounds() = %v, want (5,5)-(6,6)", b)
	}
	if !s.Closed() {
		t.Error("Transform dropped the closed flag")
	}
}

func TestNewCubicSpline(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if s := NewCubicSpline(nil); !s.IsEmpty() {
			t.Errorf("Len() = %d, want 0", s.Len())
		}
	})

	t.Run("single point", func(t *testing.T) {
		s := NewCubicSpline([]Point{Pt(3, 4)})
		if s.Len() != 1 || s.Anchors()[0] != Pt(3, 4) {
			t.Fatalf("got %v, want one anchor at (3, 4)", s.Anchors())
		}
		if s.Groups()[0].HasHandles() {
			t.Error("single point spline has handles")
		}
	})

	t.Run("two points is a straight line", func(t *testing.T) {
		s := NewCubicSpline([]Point{Pt(0, 0), Pt(9, 0)})
		segs := s.Segments()
		if len(segs) != 1 {
			t.Fatalf("len(Segments()) = %d, want 1", len(segs))
		}
		if !segs[0].IsLine() {
			t.Errorf("segment %v is not straight", segs[0])
		}
	})

	t.Run("interpolates and is C2", func(t *testing.T) {
		pts := []Point{Pt(0, 0), Pt(10, 20), Pt(30, -5), Pt(45, 10), Pt(60, 0)}
		s := NewCubicSpline(pts)
		if s.Closed() {
			t.Error("spline is closed")
		}
		anchors := s.Anchors()
		for i := range pts {
			if anchors[i] != pts[i] {
				t.Errorf("anchor %d = %v, want %v", i, anchors[i], pts[i])
			}
		}

		segs := s.Segments()
		for i := 0; i+1 < len(segs); i++ {
			a, b := segs[i], segs[i+1]
			// First derivative continuity: P3-P2 == P1'-P0'.
			d1 := a.P3.Sub(a.P2)
			d2 := b.P1.Sub(b.P0)
			if !pointsEqual(d1, d2, 1e-9) {
				t.Errorf("joint %d: tangent %v != %v", i, d1, d2)
			}
			// Second derivative continuity: P1-2P2+P3 == P0'-2P1'+P2'.
			s1 := a.P1.Sub(a.P2.Mul(2)).Add(a.P3)
			s2 := b.P0.Sub(b.P1.Mul(2)).Add(b.P2)
			if !pointsEqual(s1, s2, 1e-9) {
				t.Errorf("joint %d: curvature %v != %v", i, s1, s2)
			}
		}

		// Natural end conditions: zero second derivative at both ends.
		first, last := segs[0], segs[len(segs)-1]
		if got := first.P0.Sub(first.P1.Mul(2)).Add(first.P2); !pointsEqual(got, Point{}, 1e-9) {
			t.Errorf("start second derivative = %v, want 0", got)
		}
		if got := last.P1.Sub(last.P2.Mul(2)).Add(last.P3); !pointsEqual(got, Point{}, 1e-9) {
			t.Errorf("end second derivative = %v, want 0", got)
		}
	})
}
