package vgraph

import (
	"image/color"
	"strings"

	"golang.org/x/image/colornames"
)

// Color represents a straight (non-premultiplied) color with red, green,
// blue and alpha components, each in the range [0, 1].
type Color struct {
	R, G, B, A float32
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float32) Color {
	return Color{R: r, G: g, B: b, A: 1}
}

// RGBA creates a color from RGBA components.
func RGBA(r, g, b, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// FromColor converts a standard color.Color to Color.
// color.Color values are alpha-premultiplied, so the result is
// unpremultiplied.
func FromColor(c color.Color) Color {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return Color{}
	}
	fa := float32(a)
	return Color{
		R: float32(r) / fa,
		G: float32(g) / fa,
		B: float32(b) / fa,
		A: fa / 65535,
	}
}

// Hex creates a color from a hex string.
// Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA", with or without
// a leading '#'. The second result is false for malformed input.
func Hex(hex string) (Color, bool) {
	hex = strings.TrimPrefix(hex, "#")

	var digits [8]uint32
	for i := 0; i < len(hex); i++ {
		if i >= len(digits) {
			return Color{}, false
		}
		v, ok := hexDigit(hex[i])
		if !ok {
			return Color{}, false
		}
		digits[i] = v
	}

	var r, g, b, a uint32
	a = 255
	switch len(hex) {
	case 3, 4:
		r, g, b = digits[0]*17, digits[1]*17, digits[2]*17
		if len(hex) == 4 {
			a = digits[3] * 17
		}
	case 6, 8:
		r = digits[0]<<4 | digits[1]
		g = digits[2]<<4 | digits[3]
		b = digits[4]<<4 | digits[5]
		if len(hex) == 8 {
			a = digits[6]<<4 | digits[7]
		}
	default:
		return Color{}, false
	}
	return Color{
		R: float32(r) / 255,
		G: float32(g) / 255,
		B: float32(b) / 255,
		A: float32(a) / 255,
	}, true
}

func hexDigit(c byte) (uint32, bool) {
	switch {
	case '0' <= c && c <= '9':
		return uint32(c - '0'), true
	case 'a' <= c && c <= 'f':
		return uint32(c-'a') + 10, true
	case 'A' <= c && c <= 'F':
		return uint32(c-'A') + 10, true
	}
	return 0, false
}

// Named returns the SVG 1.1 named color (e.g. "tomato", "steelblue").
// Names are matched case-insensitively.
func Named(name string) (Color, bool) {
	c, ok := colornames.Map[strings.ToLower(name)]
	if !ok {
		return Color{}, false
	}
	return FromColor(c), true
}

// ParseColor accepts either a hex string or an SVG color name.
func ParseColor(s string) (Color, bool) {
	if c, ok := Named(s); ok {
		return c, true
	}
	return Hex(s)
}

// Lerp performs linear interpolation between two colors.
func (c Color) Lerp(other Color, t float32) Color {
	return Color{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
		A: c.A + (other.A-c.A)*t,
	}
}

// Array returns the components as [r, g, b, a].
func (c Color) Array() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Ptr returns a pointer to a copy of c. It is a shorthand for optional
// color parameters.
func (c Color) Ptr() *Color {
	return &c
}

// Common colors
var (
	Black       = FromColor(colornames.Black)
	White       = FromColor(colornames.White)
	Red         = FromColor(colornames.Red)
	Green       = FromColor(colornames.Lime)
	Blue        = FromColor(colornames.Blue)
	Transparent = Color{}
)
