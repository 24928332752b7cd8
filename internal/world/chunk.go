package world

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ChunkSide is the edge length of a cubic chunk in blocks. Index arithmetic
	// throughout the module depends on it, so it is fixed at compile time.
	ChunkSide = 16

	// ChunkVolume is the number of blocks in one chunk.
	ChunkVolume = ChunkSide * ChunkSide * ChunkSide
)

// ChunkCoord identifies a chunk in chunk space.
type ChunkCoord struct {
	X, Y, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Add returns the coordinate offset by o.
func (c ChunkCoord) Add(o ChunkCoord) ChunkCoord {
	return ChunkCoord{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

// Origin returns the world-space position of the chunk's minimum corner.
func (c ChunkCoord) Origin() mgl32.Vec3 {
	return mgl32.Vec3{
		float32(c.X * ChunkSide),
		float32(c.Y * ChunkSide),
		float32(c.Z * ChunkSide),
	}
}

// DistanceTo is the Euclidean distance from pos to the chunk origin in world units.
func (c ChunkCoord) DistanceTo(pos mgl32.Vec3) float32 {
	return c.Origin().Sub(pos).Len()
}

// ChunkCoordAt returns the coordinate of the chunk containing world position pos.
func ChunkCoordAt(pos mgl32.Vec3) ChunkCoord {
	return ChunkCoord{
		X: floorDiv(int(floor32(pos.X())), ChunkSide),
		Y: floorDiv(int(floor32(pos.Y())), ChunkSide),
		Z: floorDiv(int(floor32(pos.Z())), ChunkSide),
	}
}

// ChunkCoordOfBlock returns the chunk containing the block at world coordinates
// and the block's local coordinates inside it.
func ChunkCoordOfBlock(x, y, z int) (ChunkCoord, int, int, int) {
	c := ChunkCoord{X: floorDiv(x, ChunkSide), Y: floorDiv(y, ChunkSide), Z: floorDiv(z, ChunkSide)}
	return c, mod(x, ChunkSide), mod(y, ChunkSide), mod(z, ChunkSide)
}

// BlockIndex converts local coordinates to an index into a BlockGrid.
func BlockIndex(x, y, z int) int {
	return x + ChunkSide*(y+ChunkSide*z)
}

// BlockGrid holds the block identifiers of one chunk, indexed by BlockIndex.
// It is a value type: assigning it copies every block.
type BlockGrid [ChunkVolume]BlockID

// At returns the block at local coordinates.
func (g *BlockGrid) At(x, y, z int) BlockID {
	return g[BlockIndex(x, y, z)]
}

// Set stores a block at local coordinates.
func (g *BlockGrid) Set(x, y, z int, id BlockID) {
	g[BlockIndex(x, y, z)] = id
}

// Fill sets every block in the grid to id.
func (g *BlockGrid) Fill(id BlockID) {
	for i := range g {
		g[i] = id
	}
}

// Empty reports whether the grid contains no solid block.
func (g *BlockGrid) Empty() bool {
	for _, b := range g {
		if b != BlockAir {
			return false
		}
	}
	return true
}

// Chunk owns the block data of one chunk. It is created once when its
// coordinate first enters the world and is only mutated on the control thread.
type Chunk struct {
	Coord  ChunkCoord
	Blocks BlockGrid
}

// NewChunk creates a chunk at coord with the given initial blocks.
func NewChunk(coord ChunkCoord, blocks *BlockGrid) *Chunk {
	c := &Chunk{Coord: coord}
	if blocks != nil {
		c.Blocks = *blocks
	}
	return c
}

// GetBlock returns the block at local coordinates, or air when out of bounds.
func (c *Chunk) GetBlock(x, y, z int) BlockID {
	if x < 0 || x >= ChunkSide || y < 0 || y >= ChunkSide || z < 0 || z >= ChunkSide {
		return BlockAir
	}
	return c.Blocks.At(x, y, z)
}

// SetBlock sets the block at local coordinates. Out of bounds writes are ignored.
func (c *Chunk) SetBlock(x, y, z int, id BlockID) {
	if x < 0 || x >= ChunkSide || y < 0 || y >= ChunkSide || z < 0 || z >= ChunkSide {
		return
	}
	c.Blocks.Set(x, y, z, id)
}

// CopyBlocks returns a detached copy of the chunk's block grid.
func (c *Chunk) CopyBlocks() *BlockGrid {
	g := c.Blocks
	return &g
}
