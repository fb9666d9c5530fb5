// Package glsl holds the GLSL sources and attribute pointer tables shared by
// the OpenGL and WebGL2 backends. It has no graphics dependencies, so the
// layout can be tested without a context.
package glsl

import (
	"fmt"
	"strings"

	"github.com/gogpu/vgraph/frame"
)

// Dialect selects the GLSL version header.
type Dialect int

const (
	// Desktop330 is GLSL 3.30 core, used with OpenGL 3.3 contexts.
	Desktop330 Dialect = iota
	// ES300 is GLSL ES 3.00, used with WebGL2.
	ES300
)

func (d Dialect) String() string {
	switch d {
	case Desktop330:
		return "330 core"
	case ES300:
		return "300 es"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

func (d Dialect) header() string {
	if d == ES300 {
		return "#version 300 es\nprecision highp float;\nprecision highp int;\n"
	}
	return "#version 330 core\n"
}

// GL enum values used by the pointer tables and the fixed context state.
// They are identical in desktop GL and WebGL2.
const (
	Float            uint32 = 0x1406
	UnsignedInt      uint32 = 0x1405
	UnsignedShort    uint32 = 0x1403
	Triangles        uint32 = 0x0004
	One              uint32 = 1
	SrcAlpha         uint32 = 0x0302
	OneMinusSrcAlpha uint32 = 0x0303
)

// Blend is the separate blend function of the reference context:
// color SRC_ALPHA/ONE_MINUS_SRC_ALPHA, alpha ONE/ONE_MINUS_SRC_ALPHA.
var Blend = [4]uint32{SrcAlpha, OneMinusSrcAlpha, One, OneMinusSrcAlpha}

// VertexSource returns the vertex shader for d. Attribute names and
// locations follow frame.Attributes.
func VertexSource(d Dialect) string {
	var b strings.Builder
	b.WriteString(d.header())
	for _, a := range frame.Attributes {
		fmt.Fprintf(&b, "layout(location = %d) in %s %s;\n", a.Location, glslType(a), a.Name)
	}
	fmt.Fprintf(&b, "uniform mat3x2 %s;\n", frame.UniformMatrix)
	fmt.Fprintf(&b, "uniform vec2 %s;\n", frame.UniformCanvasResolution)
	b.WriteString("out vec4 v_color;\n")
	b.WriteString("void main() {\n")
	b.WriteString("    v_color = line_color;\n")
	fmt.Fprintf(&b, "    gl_Position = vec4(%s * vec3(pos, 1.0), 0.0, 1.0);\n", frame.UniformMatrix)
	b.WriteString("}\n")
	return b.String()
}

// FragmentSource returns the fragment shader for d. Colors stay straight
// alpha; the blend function multiplies by alpha.
func FragmentSource(d Dialect) string {
	return d.header() +
		"in vec4 v_color;\n" +
		"out vec4 frag_color;\n" +
		"void main() {\n" +
		"    frag_color = v_color;\n" +
		"}\n"
}

func glslType(a frame.Attribute) string {
	if a.Type == frame.Uint32 {
		if a.Components == 1 {
			return "uint"
		}
		return fmt.Sprintf("uvec%d", a.Components)
	}
	if a.Components == 1 {
		return "float"
	}
	return fmt.Sprintf("vec%d", a.Components)
}

// Pointer is one vertexAttribPointer call.
type Pointer struct {
	Index   uint32
	Size    int32
	Type    uint32
	Integer bool // use vertexAttribIPointer
	Stride  int32
	Offset  int
	Divisor uint32
}

// Pointers returns the attribute pointer table for mode.
func Pointers(mode frame.StepMode) []Pointer {
	ps := make([]Pointer, len(frame.Attributes))
	for i, a := range frame.Attributes {
		p := Pointer{
			Index:   a.Location,
			Size:    int32(a.Components),
			Type:    Float,
			Stride:  frame.VertexSize,
			Offset:  int(a.Offset),
			Divisor: mode.Divisor(),
		}
		if a.Type == frame.Uint32 {
			p.Type = UnsignedInt
			p.Integer = true
		}
		ps[i] = p
	}
	return ps
}
