package frame

import (
	"encoding/binary"
	"errors"
	"math"
	"math/rand/v2"
	"testing"
	"unsafe"

	"github.com/gogpu/vgraph"
)

func TestVertexLayoutMatchesMemory(t *testing.T) {
	var v VertexInstance
	if got := unsafe.Sizeof(v); got != VertexSize {
		t.Fatalf("Sizeof(VertexInstance) = %d, want %d", got, VertexSize)
	}

	want := map[string]uintptr{
		"pos":         unsafe.Offsetof(v.Pos),
		"line_color":  unsafe.Offsetof(v.Color),
		"line_zindex": unsafe.Offsetof(v.ZIndex),
		"line_width":  unsafe.Offsetof(v.Width),
		"line_flags":  unsafe.Offsetof(v.Flags),
	}
	locations := map[string]uint32{"pos": 0, "line_color": 2, "line_zindex": 3, "line_width": 4, "line_flags": 5}

	var end uint32
	for _, a := range Attributes {
		if uintptr(a.Offset) != want[a.Name] {
			t.Errorf("%s offset = %d, want %d", a.Name, a.Offset, want[a.Name])
		}
		if a.Location != locations[a.Name] {
			t.Errorf("%s location = %d, want %d", a.Name, a.Location, locations[a.Name])
		}
		if a.Location == 1 {
			t.Errorf("%s uses reserved location 1", a.Name)
		}
		end = max(end, a.Offset+a.Size())
	}
	if end != VertexSize {
		t.Errorf("attributes end at %d, want %d", end, VertexSize)
	}
	if Attributes[4].Type != Uint32 {
		t.Errorf("flags type = %v, want u32", Attributes[4].Type)
	}
}

func TestStepMode(t *testing.T) {
	if StepInstance.Divisor() != 1 {
		t.Errorf("instance divisor = %d, want 1", StepInstance.Divisor())
	}
	if StepVertex.Divisor() != 0 {
		t.Errorf("vertex divisor = %d, want 0", StepVertex.Divisor())
	}
	var zero StepMode
	if zero != StepInstance {
		t.Error("default step mode is not per-instance")
	}
}

func TestVertexFlags(t *testing.T) {
	v := VertexInstance{Flags: FlagRounded}
	if v.Closed() || !v.Rounded() {
		t.Errorf("flags %b decoded as closed=%v rounded=%v", v.Flags, v.Closed(), v.Rounded())
	}
}

func quadMesh(n int) Mesh {
	// n quads in a row, 4 vertices and 6 indices each.
	var m Mesh
	for q := 0; q < n; q++ {
		base := uint32(len(m.Vertices))
		x := float32(q)
		m.Vertices = append(m.Vertices,
			VertexInstance{Pos: [2]float32{x, 0}},
			VertexInstance{Pos: [2]float32{x + 1, 0}},
			VertexInstance{Pos: [2]float32{x + 1, 1}},
			VertexInstance{Pos: [2]float32{x, 1}},
		)
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

func checkBatches(t *testing.T, fb *FrameBuffer, maxIndices int) {
	t.Helper()
	for bi, b := range fb.Batches {
		if len(b.Indices) > maxIndices {
			t.Errorf("batch %d has %d indices, ceiling %d", bi, len(b.Indices), maxIndices)
		}
		if len(b.Vertices) > MaxVertices {
			t.Errorf("batch %d has %d vertices", bi, len(b.Vertices))
		}
		for i, idx := range b.Indices {
			if int(idx) >= len(b.Vertices) {
				t.Fatalf("batch %d index %d = %d, only %d vertices", bi, i, idx, len(b.Vertices))
			}
		}
	}
}

// positions returns the triangle corner positions in draw order.
func positions(fb *FrameBuffer) [][2]float32 {
	var out [][2]float32
	for _, b := range fb.Batches {
		for _, i := range b.Indices {
			out = append(out, b.Vertices[i].Pos)
		}
	}
	return out
}

func TestPacker_OffsetsIndices(t *testing.T) {
	p, err := NewPacker(MaxIndices)
	if err != nil {
		t.Fatal(err)
	}
	a, b := quadMesh(1), quadMesh(2)
	if err := p.Add(a); err != nil {
		t.Fatal(err)
	}
	if err := p.Add(b); err != nil {
		t.Fatal(err)
	}
	fb := p.Frame()
	if len(fb.Batches) != 1 {
		t.Fatalf("batches = %d, want 1", len(fb.Batches))
	}
	got := fb.Batches[0].Indices[6:]
	for i, idx := range got {
		if want := b.Indices[i] + 4; uint32(idx) != want {
			t.Errorf("index %d = %d, want %d", i, idx, want)
		}
	}
	if fb.VertexCount() != 12 || fb.IndexCount() != 18 {
		t.Errorf("counts = %d/%d, want 12/18", fb.VertexCount(), fb.IndexCount())
	}
	checkBatches(t, fb, MaxIndices)
}

func TestPacker_Batching(t *testing.T) {
	tests := []struct {
		name        string
		maxIndices  int
		meshes      []Mesh
		wantBatches int
	}{
		{"fits", 12, []Mesh{quadMesh(1), quadMesh(1)}, 1},
		{"new batch per mesh", 6, []Mesh{quadMesh(1), quadMesh(1), quadMesh(1)}, 3},
		{"mesh larger than batch is split", 6, []Mesh{quadMesh(3)}, 3},
		{"split with odd ceiling", 7, []Mesh{quadMesh(2)}, 2},
		{"mixed", 9, []Mesh{quadMesh(1), quadMesh(4), quadMesh(1)}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPacker(tt.maxIndices)
			if err != nil {
				t.Fatal(err)
			}
			var want [][2]float32
			for _, m := range tt.meshes {
				if err := p.Add(m); err != nil {
					t.Fatal(err)
				}
				for _, i := range m.Indices {
					want = append(want, m.Vertices[i].Pos)
				}
			}
			fb := p.Frame()
			checkBatches(t, fb, p.MaxIndices())
			if len(fb.Batches) != tt.wantBatches {
				t.Errorf("batches = %d, want %d", len(fb.Batches), tt.wantBatches)
			}
			got := positions(fb)
			if len(got) != len(want) {
				t.Fatalf("drew %d corners, want %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("corner %d = %v, want %v (geometry or order changed)", i, got[i], want[i])
				}
			}
		})
	}
}

func TestPacker_VertexCeiling(t *testing.T) {
	// Vertex-heavy mesh: one triangle referencing the last vertices of a
	// full 16-bit vertex array.
	big := Mesh{Vertices: make([]VertexInstance, MaxVertices)}
	big.Indices = []uint32{MaxVertices - 3, MaxVertices - 2, MaxVertices - 1}

	p, _ := NewPacker(MaxIndices)
	if err := p.Add(quadMesh(1)); err != nil {
		t.Fatal(err)
	}
	if err := p.Add(big); err != nil {
		t.Fatal(err)
	}
	fb := p.Frame()
	if len(fb.Batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(fb.Batches))
	}
	checkBatches(t, fb, MaxIndices)
}

func TestPacker_MeshBeyond16Bits(t *testing.T) {
	const nv = 70002
	m := Mesh{Vertices: make([]VertexInstance, nv)}
	for i := range m.Vertices {
		m.Vertices[i].Pos = [2]float32{float32(i), 0}
	}
	for i := uint32(0); i < nv; i += 3 {
		m.Indices = append(m.Indices, i, i+1, i+2)
	}

	p, _ := NewPacker(MaxIndices)
	if err := p.Add(m); err != nil {
		t.Fatal(err)
	}
	fb := p.Frame()
	if len(fb.Batches) < 2 {
		t.Fatalf("batches = %d, want the mesh split", len(fb.Batches))
	}
	checkBatches(t, fb, p.MaxIndices())

	got := positions(fb)
	if len(got) != len(m.Indices) {
		t.Fatalf("packed %d corners, want %d", len(got), len(m.Indices))
	}
	for k, i := range m.Indices {
		if got[k] != m.Vertices[i].Pos {
			t.Fatalf("corner %d = %v, want %v", k, got[k], m.Vertices[i].Pos)
		}
	}
}

func TestPacker_RandomMeshesStayInBounds(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for _, ceiling := range []int{3, 30, 300, MaxIndices} {
		p, err := NewPacker(ceiling)
		if err != nil {
			t.Fatal(err)
		}
		total := 0
		for m := 0; m < 40; m++ {
			nv := 3 + rng.IntN(200)
			mesh := Mesh{Vertices: make([]VertexInstance, nv)}
			for tri := rng.IntN(150); tri >= 0; tri-- {
				mesh.Indices = append(mesh.Indices, uint32(rng.IntN(nv)), uint32(rng.IntN(nv)), uint32(rng.IntN(nv)))
			}
			total += len(mesh.Indices)
			if err := p.Add(mesh); err != nil {
				t.Fatal(err)
			}
		}
		checkBatches(t, p.Frame(), p.MaxIndices())
		if got := p.Frame().IndexCount(); got != total {
			t.Errorf("ceiling %d: %d indices packed, want %d", ceiling, got, total)
		}
	}
}

func TestPacker_Reset(t *testing.T) {
	p, _ := NewPacker(6)
	for i := 0; i < 3; i++ {
		_ = p.Add(quadMesh(1))
	}
	p.Reset()
	if !p.Frame().IsEmpty() || len(p.Frame().Batches) != 0 {
		t.Fatal("Reset left geometry behind")
	}
	if err := p.Add(quadMesh(1)); err != nil {
		t.Fatal(err)
	}
	if len(p.Frame().Batches) != 1 || len(p.Frame().Batches[0].Indices) != 6 {
		t.Errorf("reused batch = %+v", p.Frame().Batches)
	}
}

func TestPacker_Errors(t *testing.T) {
	for _, n := range []int{-1, 0, 2, MaxIndices + 1} {
		if _, err := NewPacker(n); !errors.Is(err, vgraph.ErrCapacity) {
			t.Errorf("NewPacker(%d) err = %v, want ErrCapacity", n, err)
		}
	}

	p, _ := NewPacker(MaxIndices)
	bad := []Mesh{
		{Vertices: make([]VertexInstance, 3), Indices: []uint32{0, 1}},
		{Vertices: make([]VertexInstance, 3), Indices: []uint32{0, 1, 3}},
	}
	for _, m := range bad {
		if err := p.Add(m); !errors.Is(err, vgraph.ErrTessellation) {
			t.Errorf("Add(%v) err = %v, want ErrTessellation", m.Indices, err)
		}
	}
	if !p.Frame().IsEmpty() {
		t.Error("rejected meshes were packed")
	}
	if err := p.Add(Mesh{}); err != nil {
		t.Errorf("empty mesh: %v", err)
	}
	if len(p.Frame().Batches) != 0 {
		t.Error("empty mesh opened a batch")
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestViewport_Corners(t *testing.T) {
	tests := []Viewport{
		{Width: 800, Height: 600, DevicePixelRatio: 1},
		{Width: 1920, Height: 1080, DevicePixelRatio: 2},
		{Width: 333, Height: 777, DevicePixelRatio: 1.5},
		{Width: 1, Height: 1, DevicePixelRatio: 3},
		{Width: 4096, Height: 17, DevicePixelRatio: 0.75},
	}
	for _, v := range tests {
		m := v.Transform()
		w, h := v.LogicalSize()

		tl := m.TransformPoint(vgraph.Pt(0, 0))
		br := m.TransformPoint(vgraph.Pt(w, h))
		if !near(tl.X, -1) || !near(tl.Y, 1) {
			t.Errorf("%+v: top-left -> %v, want (-1, 1)", v, tl)
		}
		if !near(br.X, 1) || !near(br.Y, -1) {
			t.Errorf("%+v: bottom-right -> %v, want (1, -1)", v, br)
		}
		c := m.TransformPoint(vgraph.Pt(w/2, h/2))
		if !near(c.X, 0) || !near(c.Y, 0) {
			t.Errorf("%+v: center -> %v, want (0, 0)", v, c)
		}
	}
}

func TestViewport_Invalid(t *testing.T) {
	for _, v := range []Viewport{{}, {Width: -5, Height: 10, DevicePixelRatio: 1}, {Width: 10, Height: 0}} {
		if !v.Transform().IsIdentity() {
			t.Errorf("%+v: transform is not the identity", v)
		}
	}
	// An invalid ratio reads as 1.
	v := Viewport{Width: 100, Height: 50, DevicePixelRatio: math.NaN()}
	if w, h := v.LogicalSize(); w != 100 || h != 50 {
		t.Errorf("LogicalSize() = %v, %v", w, h)
	}
}

func TestViewport_Uniforms(t *testing.T) {
	v := Viewport{Width: 640, Height: 480, DevicePixelRatio: 2}
	u := v.Uniforms()
	if u.CanvasResolution != [2]float32{640, 480} {
		t.Errorf("CanvasResolution = %v", u.CanvasResolution)
	}
	m := v.Transform()
	for _, p := range []vgraph.Point{{X: 0, Y: 0}, {X: 320, Y: 240}, {X: 17, Y: 99}} {
		want := m.TransformPoint(p)
		x, y := u.Apply(float32(p.X), float32(p.Y))
		if math.Abs(float64(x)-want.X) > 1e-5 || math.Abs(float64(y)-want.Y) > 1e-5 {
			t.Errorf("Apply(%v) = (%v, %v), want %v", p, x, y, want)
		}
	}
	a := v.Aff3()
	if u.Matrix != [6]float32{a[0], a[3], a[1], a[4], a[2], a[5]} {
		t.Errorf("Matrix %v is not the column-major form of %v", u.Matrix, a)
	}
}

func TestEncode(t *testing.T) {
	verts := []VertexInstance{{
		Pos:    [2]float32{1, 2},
		Color:  [4]float32{1, 0, 0, 1},
		ZIndex: 0.1,
		Width:  20,
		Flags:  FlagRounded,
	}}
	buf := AppendVertices(nil, verts)
	if len(buf) != VertexSize {
		t.Fatalf("len = %d, want %d", len(buf), VertexSize)
	}
	f32 := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:])) }
	if f32(0) != 1 || f32(4) != 2 || f32(8) != 1 || f32(20) != 1 || f32(24) != 0.1 || f32(28) != 20 {
		t.Errorf("unexpected vertex encoding % x", buf)
	}
	if got := binary.LittleEndian.Uint32(buf[32:]); got != FlagRounded {
		t.Errorf("flags = %d", got)
	}
	// The encoding matches the in-memory layout on little-endian hosts.
	raw := unsafe.Slice((*byte)(unsafe.Pointer(&verts[0])), VertexSize)
	if string(raw) != string(buf) && binary.NativeEndian.Uint16([]byte{1, 0}) == 1 {
		t.Error("encoding differs from memory layout")
	}

	idx := AppendIndices(nil, []uint16{1, 2, 3})
	if len(idx) != 8 || binary.LittleEndian.Uint16(idx[4:]) != 3 || idx[6] != 0 {
		t.Errorf("indices = % x", idx)
	}
	if got := AppendIndices(nil, []uint16{1, 2}); len(got) != 4 {
		t.Errorf("even index count padded to %d bytes", len(got))
	}

	u := AppendUniforms(nil, Uniforms{Matrix: [6]float32{1, 2, 3, 4, 5, 6}, CanvasResolution: [2]float32{7, 8}})
	if len(u) != UniformSize {
		t.Fatalf("uniform len = %d", len(u))
	}
	if math.Float32frombits(binary.LittleEndian.Uint32(u[28:])) != 8 {
		t.Error("canvas_resolution.y not at byte 28")
	}
}
