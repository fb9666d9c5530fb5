package node

import (
	"math"

	"github.com/gogpu/vgraph"
)

// resampleEnd keeps the last sample short of the subpath end so a closed
// input does not repeat its start point. It stays close enough to 1 that
// resampling twice moves no anchor measurably.
const resampleEnd = 1 - 1e-9

// SetResampleCurve replaces every subpath with an open polyline of
// anchors spaced evenly by arc length, close to Density apart.
//
// For a subpath of length L the sample count is n = round(L/Density) and
// the spacing is adjusted to Density + (L - n*Density)/n so that n steps
// cover the subpath. Samples are taken at 0, 1, ..., n steps, with
// normalized positions clamped below 1.
//
// A Density that is not a positive finite number leaves the geometry
// unchanged. A subpath shorter than half the density, or of zero length,
// becomes a single anchor at its start. Empty subpaths stay empty.
type SetResampleCurve struct {
	Density float64
}

// Apply implements Node.
func (n SetResampleCurve) Apply(in vgraph.VectorData) vgraph.VectorData {
	out := in.Clone()
	d := n.Density
	if !(d > 0) || math.IsInf(d, 1) {
		return out
	}
	for i, s := range out.Subpaths {
		out.Subpaths[i] = resample(s, d)
	}
	return out
}

func resample(s vgraph.Subpath, density float64) vgraph.Subpath {
	if s.IsEmpty() {
		return s
	}
	m := s.Measure()
	length := m.Length()
	count := math.Round(length / density)
	if count == 0 || length == 0 {
		return vgraph.FromAnchors([]vgraph.Point{m.At(0)}, false)
	}

	spacing := density + (length-count*density)/count
	points := make([]vgraph.Point, 0, int(count)+1)
	for c := 0; c <= int(count); c++ {
		t := float64(c) * spacing / length
		points = append(points, m.At(math.Max(0, math.Min(t, resampleEnd))))
	}
	return vgraph.FromAnchors(points, false)
}
