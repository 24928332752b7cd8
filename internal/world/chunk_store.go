package world

import (
	"errors"
	"fmt"
)

var (
	// ErrChunkExists is returned when a chunk is put at an occupied coordinate.
	ErrChunkExists = errors.New("chunk already exists")
	// ErrNoChunk is returned when an operation targets an absent chunk.
	ErrNoChunk = errors.New("chunk does not exist")
)

// ChunkStore maps chunk coordinates to block data. It is the only source of
// CPU-side voxel data and is owned by the control thread: mesh jobs never
// call into it and read detached snapshot copies instead.
type ChunkStore struct {
	chunks map[ChunkCoord]*Chunk
}

// NewChunkStore creates an empty chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks: make(map[ChunkCoord]*Chunk),
	}
}

// Put inserts a new chunk with a copy of blocks. Resident data is never
// overwritten: a second Put at the same coordinate returns ErrChunkExists.
func (cs *ChunkStore) Put(coord ChunkCoord, blocks *BlockGrid) (*Chunk, error) {
	if _, ok := cs.chunks[coord]; ok {
		return nil, fmt.Errorf("put %v: %w", coord, ErrChunkExists)
	}
	ch := NewChunk(coord, blocks)
	cs.chunks[coord] = ch
	return ch, nil
}

// Get returns the chunk at coord and whether it exists.
func (cs *ChunkStore) Get(coord ChunkCoord) (*Chunk, bool) {
	ch, ok := cs.chunks[coord]
	return ch, ok
}

// Has reports whether a chunk exists at coord.
func (cs *ChunkStore) Has(coord ChunkCoord) bool {
	_, ok := cs.chunks[coord]
	return ok
}

// Len returns the number of resident chunks.
func (cs *ChunkStore) Len() int {
	return len(cs.chunks)
}

// GetBlock returns the block at world coordinates and whether its chunk exists.
func (cs *ChunkStore) GetBlock(x, y, z int) (BlockID, bool) {
	coord, lx, ly, lz := ChunkCoordOfBlock(x, y, z)
	ch, ok := cs.chunks[coord]
	if !ok {
		return BlockAir, false
	}
	return ch.GetBlock(lx, ly, lz), true
}

// SetBlock sets the block at world coordinates. It returns the coordinates of
// every chunk whose mesh is affected: the owning chunk first, followed by
// existing neighbours that share the edited cell's face.
func (cs *ChunkStore) SetBlock(x, y, z int, id BlockID) ([]ChunkCoord, error) {
	coord, lx, ly, lz := ChunkCoordOfBlock(x, y, z)
	ch, ok := cs.chunks[coord]
	if !ok {
		return nil, fmt.Errorf("set block (%d,%d,%d): %w", x, y, z, ErrNoChunk)
	}
	if ch.GetBlock(lx, ly, lz) == id {
		return nil, nil
	}
	ch.SetBlock(lx, ly, lz, id)

	affected := []ChunkCoord{coord}
	local := [3]int{lx, ly, lz}
	for _, f := range Faces {
		axis, sign := f.Axis(), f.Sign()
		if (sign < 0 && local[axis] != 0) || (sign > 0 && local[axis] != ChunkSide-1) {
			continue
		}
		nb := coord.Add(f.Offset())
		if cs.Has(nb) {
			affected = append(affected, nb)
		}
	}
	return affected, nil
}
