// Package frame packs per-path triangle meshes into GPU-ready batches and
// computes the per-frame viewport uniforms.
//
// A FrameBuffer is rebuilt every frame. Each of its batches is addressable
// with 16-bit indices and is drawn with one indexed draw call.
package frame

// VertexSize is the byte size of one VertexInstance on the GPU.
//
// Layout:
//
//	pos    (2 x f32) =  8 bytes at 0   (location 0)
//	color  (4 x f32) = 16 bytes at 8   (location 2)
//	zindex (f32)     =  4 bytes at 24  (location 3)
//	width  (f32)     =  4 bytes at 28  (location 4)
//	flags  (u32)     =  4 bytes at 32  (location 5)
//
// Total = 36 bytes. Location 1 is reserved.
const VertexSize = 36

// Vertex flag bits. Other bits are reserved and must be zero.
const (
	FlagClosed  uint32 = 1 << 0
	FlagRounded uint32 = 1 << 1
)

// VertexInstance is the per-vertex attribute record. Its Go memory layout
// matches the GPU layout, so a slice of it can be uploaded as is on
// little-endian hosts.
type VertexInstance struct {
	Pos    [2]float32
	Color  [4]float32
	ZIndex float32
	Width  float32
	Flags  uint32
}

// Closed reports whether FlagClosed is set.
func (v VertexInstance) Closed() bool { return v.Flags&FlagClosed != 0 }

// Rounded reports whether FlagRounded is set.
func (v VertexInstance) Rounded() bool { return v.Flags&FlagRounded != 0 }
