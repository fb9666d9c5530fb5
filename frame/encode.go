package frame

import (
	"encoding/binary"
	"math"
)

// UniformSize is the byte size of the encoded uniform block: a mat3x2
// (three 8-byte columns) followed by a vec2.
const UniformSize = 32

// AppendVertices appends the little-endian encoding of vertices to dst.
func AppendVertices(dst []byte, vertices []VertexInstance) []byte {
	dst = grow(dst, len(vertices)*VertexSize)
	for i := range vertices {
		v := &vertices[i]
		dst = appendF32(dst, v.Pos[0])
		dst = appendF32(dst, v.Pos[1])
		dst = appendF32(dst, v.Color[0])
		dst = appendF32(dst, v.Color[1])
		dst = appendF32(dst, v.Color[2])
		dst = appendF32(dst, v.Color[3])
		dst = appendF32(dst, v.ZIndex)
		dst = appendF32(dst, v.Width)
		dst = binary.LittleEndian.AppendUint32(dst, v.Flags)
	}
	return dst
}

// AppendIndices appends the little-endian encoding of indices to dst,
// zero padded to a multiple of 4 bytes as GPU buffer writes require.
func AppendIndices(dst []byte, indices []uint16) []byte {
	dst = grow(dst, len(indices)*2+2)
	for _, i := range indices {
		dst = binary.LittleEndian.AppendUint16(dst, i)
	}
	if len(indices)%2 != 0 {
		dst = append(dst, 0, 0)
	}
	return dst
}

// AppendUniforms appends the encoded uniform block to dst.
func AppendUniforms(dst []byte, u Uniforms) []byte {
	dst = grow(dst, UniformSize)
	for _, f := range u.Matrix {
		dst = appendF32(dst, f)
	}
	dst = appendF32(dst, u.CanvasResolution[0])
	return appendF32(dst, u.CanvasResolution[1])
}

func appendF32(dst []byte, f float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(f))
}

func grow(dst []byte, n int) []byte {
	if cap(dst)-len(dst) >= n {
		return dst
	}
	out := make([]byte, len(dst), len(dst)+n)
	copy(out, dst)
	return out
}
