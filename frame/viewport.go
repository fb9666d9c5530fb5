package frame

import (
	"math"

	"golang.org/x/image/math/f32"

	"github.com/gogpu/vgraph"
)

// Viewport is the drawing surface: its size in physical pixels and the
// ratio of physical to logical pixels.
type Viewport struct {
	Width            int
	Height           int
	DevicePixelRatio float64
}

// ratio returns the device pixel ratio, with invalid values read as 1.
func (v Viewport) ratio() float64 {
	r := v.DevicePixelRatio
	if !(r > 0) || math.IsInf(r, 0) {
		return 1
	}
	return r
}

// Valid reports whether the viewport has a drawable size.
func (v Viewport) Valid() bool {
	return v.Width > 0 && v.Height > 0
}

// LogicalSize returns the size in logical pixels.
func (v Viewport) LogicalSize() (w, h float64) {
	r := v.ratio()
	return float64(v.Width) / r, float64(v.Height) / r
}

// Transform maps logical pixel coordinates (origin top-left, y down) to
// clip space (origin center, y up): scale by (2/w, 2/h), flip y scaled by
// the device pixel ratio, then translate by (-1, 1).
//
// Logical (0, 0) maps to (-1, 1) and (w/dpr, h/dpr) to (1, -1).
// A viewport without a drawable size yields the identity.
func (v Viewport) Transform() vgraph.Affine {
	if !v.Valid() {
		return vgraph.Identity()
	}
	r := v.ratio()
	return vgraph.Translate(-1, 1).
		Multiply(vgraph.Scale(r, -r)).
		Multiply(vgraph.Scale(2/float64(v.Width), 2/float64(v.Height)))
}

// Aff3 returns Transform in float32 row-major form.
func (v Viewport) Aff3() f32.Aff3 {
	m := v.Transform()
	return f32.Aff3{
		float32(m.A), float32(m.B), float32(m.C),
		float32(m.D), float32(m.E), float32(m.F),
	}
}

// Uniforms is the per-frame uniform block.
type Uniforms struct {
	// Matrix is the viewport transform as a column-major 3x2 matrix:
	// [a, d, b, e, c, f].
	Matrix [6]float32

	// CanvasResolution is the surface size in physical pixels.
	CanvasResolution [2]float32
}

// Uniforms returns the uniform block for the viewport.
func (v Viewport) Uniforms() Uniforms {
	a := v.Aff3()
	return Uniforms{
		Matrix:           [6]float32{a[0], a[3], a[1], a[4], a[2], a[5]},
		CanvasResolution: [2]float32{float32(max(v.Width, 0)), float32(max(v.Height, 0))},
	}
}

// Apply maps p through the column-major matrix, as the vertex shader does.
func (u Uniforms) Apply(x, y float32) (float32, float32) {
	m := u.Matrix
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}
