// Package snapshot builds point-in-time copies of chunk data for mesh jobs.
//
// One Snapshot is built per scheduling batch. It holds a single copy of every
// neighbour chunk the batch needs and is shared by all of the batch's jobs.
// Once sealed it is never written again; each job drops its reference when it
// finishes and whichever job drops the last one frees the copies.
package snapshot

import (
	"fmt"

	"voxelstream/internal/meshing"
	"voxelstream/internal/world"

	"go.uber.org/atomic"
)

// Source is the read side of the chunk store.
type Source interface {
	Get(coord world.ChunkCoord) (*world.Chunk, bool)
}

// Stats counts snapshot activity. It is safe for concurrent use.
type Stats struct {
	Created atomic.Int64
	Freed   atomic.Int64
	Copies  atomic.Int64
}

// Live returns the number of snapshots created but not yet freed.
func (s *Stats) Live() int64 {
	return s.Created.Load() - s.Freed.Load()
}

// Snapshot is the reference count shared by the jobs of one batch. The
// copied grids themselves travel with each job's Neighbors; only the count
// and the freed flag are touched after Seal.
type Snapshot struct {
	refs  atomic.Int32
	freed atomic.Bool
	stats *Stats
}

// Refs returns the current reference count.
func (s *Snapshot) Refs() int32 {
	return s.refs.Load()
}

// Freed reports whether the last reference has been released.
func (s *Snapshot) Freed() bool {
	return s.freed.Load()
}

// Release drops one reference. The caller that drops the last reference
// frees the copied chunks.
func (s *Snapshot) Release() {
	n := s.refs.Dec()
	switch {
	case n == 0:
		s.free()
	case n < 0:
		panic(fmt.Sprintf("snapshot released %d times more than acquired", -n))
	}
}

func (s *Snapshot) free() {
	if !s.freed.CompareAndSwap(false, true) {
		panic("snapshot freed twice")
	}
	if s.stats != nil {
		s.stats.Freed.Inc()
	}
}

// Builder assembles the Snapshot for one batch on the control thread.
type Builder struct {
	src    Source
	snap   *Snapshot
	chunks map[world.ChunkCoord]*world.BlockGrid
	sealed bool
}

// NewBuilder starts a snapshot with a zero reference count. stats may be nil.
func NewBuilder(src Source, stats *Stats) *Builder {
	if stats != nil {
		stats.Created.Inc()
	}
	return &Builder{
		src:    src,
		snap:   &Snapshot{stats: stats},
		chunks: make(map[world.ChunkCoord]*world.BlockGrid),
	}
}

// Acquire collects the six neighbours of coord and takes one reference on
// behalf of the job that will mesh coord. Present neighbours are copied into
// the snapshot the first time any job in the batch needs them; absent ones
// stay nil.
func (b *Builder) Acquire(coord world.ChunkCoord) meshing.Neighbors {
	if b.sealed {
		panic("snapshot: acquire after seal")
	}
	var nb meshing.Neighbors
	for _, f := range world.Faces {
		nb[f] = b.capture(coord.Add(f.Offset()))
	}
	b.snap.refs.Inc()
	return nb
}

func (b *Builder) capture(coord world.ChunkCoord) *world.BlockGrid {
	if g, ok := b.chunks[coord]; ok {
		return g
	}
	ch, ok := b.src.Get(coord)
	if !ok {
		return nil
	}
	g := ch.CopyBlocks()
	b.chunks[coord] = g
	if b.snap.stats != nil {
		b.snap.stats.Copies.Inc()
	}
	return g
}

// Copies returns the number of distinct chunks copied so far. It is zero
// after Seal.
func (b *Builder) Copies() int {
	return len(b.chunks)
}

// Seal finishes construction and returns the snapshot. All references must
// have been acquired before any job is started. A snapshot that no job
// acquired is freed immediately.
func (b *Builder) Seal() *Snapshot {
	b.sealed = true
	b.chunks = nil
	if b.snap.refs.Load() == 0 {
		b.snap.free()
	}
	return b.snap
}
