package frame

import "fmt"

// Uniform names shared by every shader.
const (
	UniformMatrix           = "matrix"
	UniformCanvasResolution = "canvas_resolution"
)

// ComponentType is the scalar type of an attribute.
type ComponentType int

const (
	Float32 ComponentType = iota
	Uint32
)

func (c ComponentType) String() string {
	switch c {
	case Float32:
		return "f32"
	case Uint32:
		return "u32"
	default:
		return fmt.Sprintf("ComponentType(%d)", int(c))
	}
}

// StepMode selects how attributes advance during a draw.
type StepMode int

const (
	// StepInstance advances attributes once per instance (divisor 1).
	StepInstance StepMode = iota
	// StepVertex advances attributes once per vertex (divisor 0).
	StepVertex
)

func (m StepMode) String() string {
	switch m {
	case StepInstance:
		return "instance"
	case StepVertex:
		return "vertex"
	default:
		return fmt.Sprintf("StepMode(%d)", int(m))
	}
}

// Divisor returns the attribute divisor for the step mode.
func (m StepMode) Divisor() uint32 {
	if m == StepVertex {
		return 0
	}
	return 1
}

// Attribute describes one vertex attribute of VertexInstance.
type Attribute struct {
	Name       string
	Location   uint32
	Components int
	Type       ComponentType
	Offset     uint32
}

// Attributes is the attribute layout contract. Shaders declare the same
// names and locations.
var Attributes = []Attribute{
	{Name: "pos", Location: 0, Components: 2, Type: Float32, Offset: 0},
	{Name: "line_color", Location: 2, Components: 4, Type: Float32, Offset: 8},
	{Name: "line_zindex", Location: 3, Components: 1, Type: Float32, Offset: 24},
	{Name: "line_width", Location: 4, Components: 1, Type: Float32, Offset: 28},
	{Name: "line_flags", Location: 5, Components: 1, Type: Uint32, Offset: 32},
}

// Size returns the attribute size in bytes.
func (a Attribute) Size() uint32 {
	return uint32(a.Components) * 4
}
