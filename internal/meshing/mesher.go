package meshing

import (
	"voxelstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Neighbors holds the grids of the six adjacent chunks indexed by world.Face.
// A nil entry means the neighbour is not loaded.
type Neighbors [6]*world.BlockGrid

const initialVertexCapacity = 1024

var faceNormals = [6][3]int8{
	{-127, 0, 0},
	{127, 0, 0},
	{0, -127, 0},
	{0, 127, 0},
	{0, 0, -127},
	{0, 0, 127},
}

// faceCorners lists the unit-cube corners of each face in emission order.
// Paired with QuadIndices they give front faces pointing along the normal.
var faceCorners = [6][4][3]int{
	{{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 1, 1}},
	{{1, 0, 0}, {1, 1, 0}, {1, 0, 1}, {1, 1, 1}},
	{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}, {1, 0, 1}},
	{{0, 1, 0}, {0, 1, 1}, {1, 1, 0}, {1, 1, 1}},
	{{0, 0, 0}, {0, 1, 0}, {1, 0, 0}, {1, 1, 0}},
	{{0, 0, 1}, {1, 0, 1}, {0, 1, 1}, {1, 1, 1}},
}

// axisStride is the BlockGrid index step for a unit move along each axis.
var axisStride = [3]int{1, world.ChunkSide, world.ChunkSide * world.ChunkSide}

// Mesh emits one quad for every solid block face that touches empty space.
// Faces on the chunk boundary are tested against the neighbour grid; when the
// neighbour is absent the boundary layer emits nothing for that direction.
// Mesh only reads its inputs, so equal inputs always give equal output.
func Mesh(chunk *world.BlockGrid, neighbors Neighbors) []Vertex {
	verts := make([]Vertex, 0, initialVertexCapacity)
	for _, f := range world.Faces {
		axis, sign := f.Axis(), f.Sign()
		step := axisStride[axis] * sign
		boundary := 0
		if sign > 0 {
			boundary = world.ChunkSide - 1
		}
		// moving across the boundary wraps to the opposite layer of the neighbour
		wrap := -step * (world.ChunkSide - 1)
		nb := neighbors[f]

		var p [3]int
		for p[2] = 0; p[2] < world.ChunkSide; p[2]++ {
			for p[1] = 0; p[1] < world.ChunkSide; p[1]++ {
				for p[0] = 0; p[0] < world.ChunkSide; p[0]++ {
					i := world.BlockIndex(p[0], p[1], p[2])
					block := chunk[i]
					if block == world.BlockAir {
						continue
					}
					var adjacent world.BlockID
					if p[axis] == boundary {
						if nb == nil {
							continue
						}
						adjacent = nb[i+wrap]
					} else {
						adjacent = chunk[i+step]
					}
					if adjacent != world.BlockAir {
						continue
					}
					verts = appendQuad(verts, p, f, block)
				}
			}
		}
	}
	return verts
}

func appendQuad(verts []Vertex, p [3]int, f world.Face, block world.BlockID) []Vertex {
	for _, c := range faceCorners[f] {
		pos := mgl32.Vec3{
			float32(p[0] + c[0]),
			float32(p[1] + c[1]),
			float32(p[2] + c[2]),
		}
		verts = append(verts, NewVertex(pos, faceNormals[f], block))
	}
	return verts
}
