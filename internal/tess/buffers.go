package tess

// Buffers is an indexed triangle list. Every three indices form one
// triangle. Indices are 32-bit; narrowing to 16-bit batches happens when
// meshes are packed for upload.
type Buffers[V any] struct {
	Vertices []V
	Indices  []uint32
}

// Reset empties the buffers, keeping their capacity.
func (b *Buffers[V]) Reset() {
	b.Vertices = b.Vertices[:0]
	b.Indices = b.Indices[:0]
}

// IsEmpty reports whether the buffers hold no triangles.
func (b *Buffers[V]) IsEmpty() bool {
	return len(b.Indices) == 0
}

// TriangleCount returns the number of triangles.
func (b *Buffers[V]) TriangleCount() int {
	return len(b.Indices) / 3
}
