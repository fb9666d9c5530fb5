package glsl

import (
	"strings"
	"testing"

	"github.com/gogpu/vgraph/frame"
)

func TestPointers(t *testing.T) {
	tests := []struct {
		mode    frame.StepMode
		divisor uint32
	}{
		{frame.StepInstance, 1},
		{frame.StepVertex, 0},
	}
	want := []Pointer{
		{Index: 0, Size: 2, Type: Float, Offset: 0},
		{Index: 2, Size: 4, Type: Float, Offset: 8},
		{Index: 3, Size: 1, Type: Float, Offset: 24},
		{Index: 4, Size: 1, Type: Float, Offset: 28},
		{Index: 5, Size: 1, Type: UnsignedInt, Integer: true, Offset: 32},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			got := Pointers(tt.mode)
			if len(got) != len(want) {
				t.Fatalf("len = %d, want %d", len(got), len(want))
			}
			for i, w := range want {
				w.Stride = 36
				w.Divisor = tt.divisor
				if got[i] != w {
					t.Errorf("pointer %d = %+v, want %+v", i, got[i], w)
				}
			}
		})
	}
}

func TestVertexSource(t *testing.T) {
	tests := []struct {
		dialect Dialect
		header  string
	}{
		{Desktop330, "#version 330 core\n"},
		{ES300, "#version 300 es\n"},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.String(), func(t *testing.T) {
			src := VertexSource(tt.dialect)
			if !strings.HasPrefix(src, tt.header) {
				t.Errorf("source does not start with %q", tt.header)
			}
			for _, line := range []string{
				"layout(location = 0) in vec2 pos;",
				"layout(location = 2) in vec4 line_color;",
				"layout(location = 3) in float line_zindex;",
				"layout(location = 4) in float line_width;",
				"layout(location = 5) in uint line_flags;",
				"uniform mat3x2 matrix;",
				"uniform vec2 canvas_resolution;",
			} {
				if !strings.Contains(src, line) {
					t.Errorf("source missing %q", line)
				}
			}
			if strings.Contains(src, "location = 1") {
				t.Error("location 1 is reserved")
			}

			frag := FragmentSource(tt.dialect)
			if !strings.HasPrefix(frag, tt.header) {
				t.Errorf("fragment does not start with %q", tt.header)
			}
		})
	}
}

func TestESPrecision(t *testing.T) {
	if !strings.Contains(FragmentSource(ES300), "precision highp float;") {
		t.Error("ES fragment shader needs a default float precision")
	}
	if strings.Contains(FragmentSource(Desktop330), "precision") {
		t.Error("desktop shader should not declare precision")
	}
}

func TestBlend(t *testing.T) {
	want := [4]uint32{0x0302, 0x0303, 1, 0x0303}
	if Blend != want {
		t.Errorf("Blend = %#x, want %#x", Blend, want)
	}
}
