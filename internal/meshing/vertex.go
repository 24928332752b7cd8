package meshing

import (
	"encoding/binary"

	"voxelstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/x448/float16"
)

// VertexSize is the size of one encoded vertex in bytes.
const VertexSize = 12

// Vertex is the 12-byte chunk vertex consumed by the renderer:
//
//	offset 0: x and y as IEEE half floats (x in the low 16 bits)
//	offset 4: z as a half float in the low 16 bits; the high 16 bits carry the
//	          block material, which the position attribute ignores
//	offset 8: signed-byte normal, ±127 per unit axis
//	offset 11: padding
type Vertex struct {
	PosXY  uint32
	PosZ   uint32
	Normal [3]int8
	pad    uint8
}

// NewVertex packs a chunk-local position, face normal and material.
func NewVertex(pos mgl32.Vec3, normal [3]int8, material world.BlockID) Vertex {
	x := uint32(float16.Fromfloat32(pos.X()).Bits())
	y := uint32(float16.Fromfloat32(pos.Y()).Bits())
	z := uint32(float16.Fromfloat32(pos.Z()).Bits())
	return Vertex{
		PosXY:  x | y<<16,
		PosZ:   z | uint32(material)<<16,
		Normal: normal,
	}
}

// Position decodes the chunk-local position.
func (v Vertex) Position() mgl32.Vec3 {
	return mgl32.Vec3{
		float16.Frombits(uint16(v.PosXY)).Float32(),
		float16.Frombits(uint16(v.PosXY >> 16)).Float32(),
		float16.Frombits(uint16(v.PosZ)).Float32(),
	}
}

// Material returns the block material carried in the reserved z bits.
func (v Vertex) Material() world.BlockID {
	return world.BlockID(v.PosZ >> 16)
}

// AppendBytes appends the little-endian wire encoding of verts to dst.
func AppendBytes(dst []byte, verts []Vertex) []byte {
	for _, v := range verts {
		dst = binary.LittleEndian.AppendUint32(dst, v.PosXY)
		dst = binary.LittleEndian.AppendUint32(dst, v.PosZ)
		dst = append(dst, byte(v.Normal[0]), byte(v.Normal[1]), byte(v.Normal[2]), v.pad)
	}
	return dst
}

// Encode returns the wire encoding of verts.
func Encode(verts []Vertex) []byte {
	return AppendBytes(make([]byte, 0, len(verts)*VertexSize), verts)
}

// QuadIndices is the index pattern that turns each 4-vertex quad into two triangles.
var QuadIndices = [6]uint32{0, 1, 2, 2, 1, 3}

// MaxQuadsPerChunk bounds the number of quads one chunk mesh can contain:
// every unit face of the chunk's block lattice.
const MaxQuadsPerChunk = 3 * world.ChunkSide * world.ChunkSide * (world.ChunkSide + 1)

// IndexPattern returns the element indices for quads consecutive quads.
func IndexPattern(quads int) []uint32 {
	indices := make([]uint32, 0, quads*6)
	for q := 0; q < quads; q++ {
		base := uint32(q * 4)
		for _, i := range QuadIndices {
			indices = append(indices, base+i)
		}
	}
	return indices
}

// DrawCount returns the number of indices to draw for a vertex list.
func DrawCount(verts []Vertex) int {
	return len(verts) / 4 * 6
}
