package vgraph

// VectorData is a set of subpaths with the style painted on them.
// It is produced by node graph evaluation and consumed by the renderer.
type VectorData struct {
	Subpaths []Subpath
	Style    PathStyle
}

// NewVectorData returns vector data holding the given subpaths and an
// empty style.
func NewVectorData(subpaths ...Subpath) VectorData {
	return VectorData{Subpaths: append([]Subpath(nil), subpaths...)}
}

// Clone returns a copy of v that shares no mutable state with it.
// Subpaths are immutable and are shared.
func (v VectorData) Clone() VectorData {
	out := VectorData{Style: v.Style.Clone()}
	if v.Subpaths != nil {
		out.Subpaths = append([]Subpath(nil), v.Subpaths...)
	}
	return out
}

// AnchorCount returns the total number of anchors over all subpaths.
func (v VectorData) AnchorCount() int {
	n := 0
	for _, s := range v.Subpaths {
		n += s.Len()
	}
	return n
}

// AllClosed reports whether there is at least one subpath and every
// subpath is closed.
func (v VectorData) AllClosed() bool {
	if len(v.Subpaths) == 0 {
		return false
	}
	for _, s := range v.Subpaths {
		if !s.Closed() {
			return false
		}
	}
	return true
}

// Bounds returns the bounding box over all subpaths. The second result
// is false when there are no anchors.
func (v VectorData) Bounds() (Rect, bool) {
	var (
		r  Rect
		ok bool
	)
	for _, s := range v.Subpaths {
		b, has := s.Bounds()
		if !has {
			continue
		}
		if !ok {
			r, ok = b, true
			continue
		}
		r = r.Union(b)
	}
	return r, ok
}
