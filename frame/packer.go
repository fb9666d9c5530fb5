package frame

import (
	"fmt"
	"slices"

	"github.com/gogpu/vgraph"
)

// Batch ceilings imposed by 16-bit indices. The index ceiling is one
// below 1<<16 so that 0xFFFF never appears as a primitive restart value.
const (
	MaxIndices  = 65535
	MaxVertices = 1 << 16
)

// Mesh is one path's indexed triangle list. Its indices are 32-bit so a
// single path may exceed one batch; Packer narrows them to 16 bits.
type Mesh struct {
	Vertices []VertexInstance
	Indices  []uint32
}

// Batch is a vertex and index array drawn with one indexed draw call.
// Every index is below len(Vertices).
type Batch struct {
	Vertices []VertexInstance
	Indices  []uint16
}

// FrameBuffer is the packed geometry of one frame.
type FrameBuffer struct {
	Batches []Batch
}

// IsEmpty reports whether there is nothing to draw.
func (f *FrameBuffer) IsEmpty() bool {
	return f == nil || f.IndexCount() == 0
}

// VertexCount returns the total vertex count over all batches.
func (f *FrameBuffer) VertexCount() int {
	if f == nil {
		return 0
	}
	n := 0
	for i := range f.Batches {
		n += len(f.Batches[i].Vertices)
	}
	return n
}

// IndexCount returns the total index count over all batches.
func (f *FrameBuffer) IndexCount() int {
	if f == nil {
		return 0
	}
	n := 0
	for i := range f.Batches {
		n += len(f.Batches[i].Indices)
	}
	return n
}

// Packer merges meshes into a FrameBuffer, offsetting indices by the
// running vertex count and starting a new batch whenever a mesh would
// cross a 16-bit ceiling. Meshes too large for one batch are split
// between triangles. Indices are never truncated or wrapped.
//
// A Packer is not safe for concurrent use.
type Packer struct {
	maxIndices int
	fb         FrameBuffer
	remap      []int32
}

// NewPacker returns a packer with the given per-batch index ceiling.
// maxIndices must be in [3, MaxIndices].
func NewPacker(maxIndices int) (*Packer, error) {
	if maxIndices < 3 || maxIndices > MaxIndices {
		return nil, fmt.Errorf("%w: index ceiling %d outside [3, %d]", vgraph.ErrCapacity, maxIndices, MaxIndices)
	}
	return &Packer{maxIndices: maxIndices - maxIndices%3}, nil
}

// MaxIndices returns the effective per-batch index ceiling, rounded down
// to whole triangles.
func (p *Packer) MaxIndices() int { return p.maxIndices }

// Reset discards packed geometry, keeping allocated batches for reuse.
// FrameBuffers returned earlier by Frame must not be used afterwards.
func (p *Packer) Reset() {
	for i := range p.fb.Batches {
		b := &p.fb.Batches[i]
		b.Vertices = b.Vertices[:0]
		b.Indices = b.Indices[:0]
	}
	p.fb.Batches = p.fb.Batches[:0]
}

// Frame returns the packed geometry.
func (p *Packer) Frame() *FrameBuffer {
	return &p.fb
}

// Add appends a mesh. Meshes with an index count that is not a multiple
// of three, or with an index outside their vertex array, are rejected
// with an error wrapping vgraph.ErrTessellation and nothing is added.
func (p *Packer) Add(m Mesh) error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: %d indices do not form triangles", vgraph.ErrTessellation, len(m.Indices))
	}
	for _, i := range m.Indices {
		if int(i) >= len(m.Vertices) {
			return fmt.Errorf("%w: index %d out of range for %d vertices", vgraph.ErrTessellation, i, len(m.Vertices))
		}
	}
	if len(m.Indices) == 0 {
		return nil
	}

	if len(m.Indices) <= p.maxIndices && len(m.Vertices) <= MaxVertices {
		b := p.current()
		if len(b.Indices)+len(m.Indices) > p.maxIndices || len(b.Vertices)+len(m.Vertices) > MaxVertices {
			b = p.newBatch()
		}
		base := uint32(len(b.Vertices))
		b.Vertices = append(b.Vertices, m.Vertices...)
		for _, i := range m.Indices {
			b.Indices = append(b.Indices, uint16(base+i))
		}
		return nil
	}

	p.split(m)
	return nil
}

// split distributes a mesh over as many batches as needed, copying only
// the vertices each batch references.
func (p *Packer) split(m Mesh) {
	if cap(p.remap) < len(m.Vertices) {
		p.remap = make([]int32, len(m.Vertices))
	}
	remap := p.remap[:len(m.Vertices)]
	clearRemap := func() {
		for i := range remap {
			remap[i] = -1
		}
	}
	clearRemap()

	b := p.current()
	for t := 0; t < len(m.Indices); t += 3 {
		tri := m.Indices[t : t+3]
		fresh := 0
		for k, i := range tri {
			if remap[i] < 0 && !slices.Contains(tri[:k], i) {
				fresh++
			}
		}
		if len(b.Indices)+3 > p.maxIndices || len(b.Vertices)+fresh > MaxVertices {
			b = p.newBatch()
			clearRemap()
		}
		for _, i := range tri {
			if remap[i] < 0 {
				remap[i] = int32(len(b.Vertices))
				b.Vertices = append(b.Vertices, m.Vertices[i])
			}
			b.Indices = append(b.Indices, uint16(remap[i]))
		}
	}
}

// current returns the open batch, creating the first one on demand.
func (p *Packer) current() *Batch {
	if len(p.fb.Batches) == 0 {
		return p.newBatch()
	}
	return &p.fb.Batches[len(p.fb.Batches)-1]
}

// newBatch opens a new batch, reusing the storage of an earlier frame
// when available. An empty open batch is reused as is.
func (p *Packer) newBatch() *Batch {
	if n := len(p.fb.Batches); n > 0 && len(p.fb.Batches[n-1].Indices) == 0 {
		return &p.fb.Batches[n-1]
	}
	if len(p.fb.Batches) < cap(p.fb.Batches) {
		p.fb.Batches = p.fb.Batches[:len(p.fb.Batches)+1]
		b := &p.fb.Batches[len(p.fb.Batches)-1]
		b.Vertices = b.Vertices[:0]
		b.Indices = b.Indices[:0]
		return b
	}
	p.fb.Batches = append(p.fb.Batches, Batch{})
	return &p.fb.Batches[len(p.fb.Batches)-1]
}
