// Package tess converts filled paths into indexed triangle meshes.
//
// The fill tessellator flattens every subpath into a polygon ring and
// sweeps the rings with horizontal scanlines. Bands are cut at every
// vertex and every edge crossing, so within a band the spanning edges
// never cross and the filled spans are trapezoids. Crossings are found
// during the sweep between neighbors in the x-ordered active edge list.
package tess

import (
	"cmp"
	"math"
	"slices"

	"github.com/gogpu/vgraph"
)

// Options configures a Tessellator.
type Options struct {
	// Tolerance is the curve flattening tolerance. Values <= 0 select
	// DefaultTolerance.
	Tolerance float64

	// FillRule selects even-odd (default) or non-zero winding.
	FillRule vgraph.FillRule
}

// DefaultOptions returns even-odd filling at DefaultTolerance.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance, FillRule: vgraph.FillRuleEvenOdd}
}

type edge struct {
	x0, y0  float64
	x1, y1  float64 // y0 < y1
	winding int
}

func (e *edge) xAt(y float64) float64 {
	if y <= e.y0 {
		return e.x0
	}
	if y >= e.y1 {
		return e.x1
	}
	return e.x0 + (e.x1-e.x0)*(y-e.y0)/(e.y1-e.y0)
}

// slope returns dx/dy.
func (e *edge) slope() float64 {
	return (e.x1 - e.x0) / (e.y1 - e.y0)
}

type span struct {
	e      *edge
	xa, xb float64
	mid    float64
}

type vertexKey struct{ x, y uint64 }

// Tessellator fills paths. It reuses scratch memory between calls and
// is not safe for concurrent use.
type Tessellator struct {
	opts Options

	rings  [][]vgraph.Point
	edges  []edge
	ys     []float64
	active []*edge
	spans  []span
	lookup map[vertexKey]uint32
	points []vgraph.Point
	tris   []uint32
}

// New returns a Tessellator with the given options.
func New(opts Options) *Tessellator {
	if opts.Tolerance <= 0 || math.IsNaN(opts.Tolerance) {
		opts.Tolerance = DefaultTolerance
	}
	return &Tessellator{opts: opts, lookup: make(map[vertexKey]uint32)}
}

// Options returns the options in effect.
func (t *Tessellator) Options() Options { return t.opts }

// Fill tessellates the fill region of subpaths and appends the mesh to
// out. ctor maps each mesh vertex position to the caller's vertex type.
// Indices are relative to the start of out.Vertices.
//
// On error out is left unchanged. Errors wrap vgraph.ErrTessellation.
func Fill[V any](t *Tessellator, subpaths []vgraph.Subpath, out *Buffers[V], ctor func(vgraph.Point) V) error {
	if err := t.mesh(subpaths); err != nil {
		return err
	}
	base := uint32(len(out.Vertices))
	for _, p := range t.points {
		out.Vertices = append(out.Vertices, ctor(p))
	}
	for _, i := range t.tris {
		out.Indices = append(out.Indices, base+i)
	}
	return nil
}

// mesh fills t.points and t.tris with the triangulated region.
func (t *Tessellator) mesh(subpaths []vgraph.Subpath) error {
	t.reset()

	var err error
	t.rings, err = flatten(t.rings, subpaths, t.opts.Tolerance)
	if err != nil {
		return err
	}
	t.buildEdges()
	if len(t.edges) == 0 {
		return nil
	}
	t.collectVertexYs()

	next := 0
	ya := t.ys[0]
	for v := 1; v < len(t.ys); {
		yv := t.ys[v]

		// Drop finished edges, then admit edges starting at ya.
		t.active = slices.DeleteFunc(t.active, func(e *edge) bool { return e.y1 <= ya })
		for next < len(t.edges) && t.edges[next].y0 <= ya {
			if t.edges[next].y1 > ya {
				t.active = append(t.active, &t.edges[next])
			}
			next++
		}

		yb := yv
		if len(t.active) >= 2 {
			t.sortActive(ya)
			yb = t.firstCrossing(ya, yv)
			t.fillBand(ya, yb)
		}
		ya = yb
		if ya >= yv {
			v++
		}
	}
	return nil
}

func (t *Tessellator) reset() {
	for i := range t.rings {
		t.rings[i] = nil
	}
	t.rings = t.rings[:0]
	t.edges = t.edges[:0]
	t.ys = t.ys[:0]
	t.active = t.active[:0]
	t.spans = t.spans[:0]
	t.points = t.points[:0]
	t.tris = t.tris[:0]
	clear(t.lookup)
}

func (t *Tessellator) buildEdges() {
	for _, ring := range t.rings {
		n := len(ring)
		for i := 0; i < n; i++ {
			a, b := ring[i], ring[(i+1)%n]
			if a.Y == b.Y {
				continue
			}
			e := edge{x0: a.X, y0: a.Y, x1: b.X, y1: b.Y, winding: 1}
			if a.Y > b.Y {
				e = edge{x0: b.X, y0: b.Y, x1: a.X, y1: a.Y, winding: -1}
			}
			t.edges = append(t.edges, e)
		}
	}
	slices.SortFunc(t.edges, func(a, b edge) int {
		switch {
		case a.y0 < b.y0:
			return -1
		case a.y0 > b.y0:
			return 1
		}
		return 0
	})
}

// collectVertexYs gathers the distinct vertex ys in ascending order.
func (t *Tessellator) collectVertexYs() {
	for i := range t.edges {
		t.ys = append(t.ys, t.edges[i].y0, t.edges[i].y1)
	}
	slices.Sort(t.ys)
	t.ys = slices.Compact(t.ys)
}

// sortActive orders the active edges by x just below y. Edges meeting
// at y are ordered by the direction they leave in.
func (t *Tessellator) sortActive(y float64) {
	slices.SortFunc(t.active, func(a, b *edge) int {
		if c := cmp.Compare(a.xAt(y), b.xAt(y)); c != 0 {
			return c
		}
		return cmp.Compare(a.slope(), b.slope())
	})
}

// firstCrossing returns the lowest y in (ya, yv) where two neighboring
// active edges cross, or yv when none do. Active edges span the whole
// of [ya, yv] and are sorted by sortActive(ya). The first crossing below
// ya is always between neighbors, and the sweep resorts at every band,
// so later crossings are found once their edges become adjacent.
func (t *Tessellator) firstCrossing(ya, yv float64) float64 {
	yb := yv
	for i := 0; i+1 < len(t.active); i++ {
		a, b := t.active[i], t.active[i+1]
		dTop := a.xAt(ya) - b.xAt(ya)
		dBot := a.xAt(yv) - b.xAt(yv)
		if dTop == 0 || dBot == 0 || (dTop < 0) == (dBot < 0) {
			continue
		}
		y := ya + (yv-ya)*dTop/(dTop-dBot)
		if y > ya && y < yb {
			yb = y
		}
	}
	return yb
}

func (t *Tessellator) inside(w int) bool {
	if t.opts.FillRule == vgraph.FillRuleNonZero {
		return w != 0
	}
	return w&1 != 0
}

func (t *Tessellator) fillBand(ya, yb float64) {
	t.spans = t.spans[:0]
	for _, e := range t.active {
		xa, xb := e.xAt(ya), e.xAt(yb)
		t.spans = append(t.spans, span{e: e, xa: xa, xb: xb, mid: (xa + xb) / 2})
	}
	slices.SortFunc(t.spans, func(a, b span) int {
		switch {
		case a.mid < b.mid:
			return -1
		case a.mid > b.mid:
			return 1
		}
		return 0
	})

	w := 0
	var left span
	for _, s := range t.spans {
		was := t.inside(w)
		w += s.e.winding
		now := t.inside(w)
		switch {
		case !was && now:
			left = s
		case was && !now:
			t.trapezoid(ya, yb, left, s)
		}
	}
}

func (t *Tessellator) trapezoid(ya, yb float64, l, r span) {
	topDegenerate := l.xa == r.xa
	bottomDegenerate := l.xb == r.xb
	if topDegenerate && bottomDegenerate {
		return
	}

	tl := t.vertex(vgraph.Pt(l.xa, ya))
	br := t.vertex(vgraph.Pt(r.xb, yb))
	if !topDegenerate {
		t.tris = append(t.tris, tl, t.vertex(vgraph.Pt(r.xa, ya)), br)
	}
	if !bottomDegenerate {
		t.tris = append(t.tris, tl, br, t.vertex(vgraph.Pt(l.xb, yb)))
	}
}

// vertex returns the index of p, adding it on first use.
func (t *Tessellator) vertex(p vgraph.Point) uint32 {
	key := vertexKey{math.Float64bits(p.X), math.Float64bits(p.Y)}
	if i, ok := t.lookup[key]; ok {
		return i
	}
	i := uint32(len(t.points))
	t.points = append(t.points, p)
	t.lookup[key] = i
	return i
}
