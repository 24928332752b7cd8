package world

import (
	"context"
	"runtime"
	"sync"
)

// GeneratedChunk is the output of one generation job.
type GeneratedChunk struct {
	Coord  ChunkCoord
	Blocks *BlockGrid
}

// ChunkStreamer generates chunk content asynchronously. Request and Drain are
// called from the control thread only; workers never touch the store and hand
// their grids back through a results channel.
type ChunkStreamer struct {
	jobs    chan ChunkCoord
	results chan GeneratedChunk
	pending map[ChunkCoord]struct{}

	maxPending int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	store *ChunkStore
	gen   TerrainGenerator
}

// NewChunkStreamer creates a streamer with the given number of generation
// workers; zero or less means one per CPU.
func NewChunkStreamer(store *ChunkStore, gen TerrainGenerator, workers int) *ChunkStreamer {
	if workers <= 0 {
		workers = max(runtime.NumCPU(), 1)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cs := &ChunkStreamer{
		jobs:       make(chan ChunkCoord, 4096),
		results:    make(chan GeneratedChunk, 4096),
		pending:    make(map[ChunkCoord]struct{}),
		maxPending: 4096,
		ctx:        ctx,
		cancel:     cancel,
		store:      store,
		gen:        gen,
	}
	for i := 0; i < workers; i++ {
		cs.wg.Add(1)
		go cs.worker()
	}
	return cs
}

// Close stops the generation workers. Pending requests are dropped.
func (cs *ChunkStreamer) Close() {
	cs.cancel()
	cs.wg.Wait()
}

func (cs *ChunkStreamer) worker() {
	defer cs.wg.Done()
	for {
		select {
		case coord := <-cs.jobs:
			out := GeneratedChunk{Coord: coord, Blocks: cs.gen.Generate(coord)}
			select {
			case cs.results <- out:
			case <-cs.ctx.Done():
				return
			}
		case <-cs.ctx.Done():
			return
		}
	}
}

// Request enqueues generation of coord unless it is already resident or
// pending. It reports whether a job was queued.
func (cs *ChunkStreamer) Request(coord ChunkCoord) bool {
	if cs.store.Has(coord) {
		return false
	}
	if _, ok := cs.pending[coord]; ok {
		return false
	}
	if cs.maxPending > 0 && len(cs.pending) >= cs.maxPending {
		return false
	}
	select {
	case cs.jobs <- coord:
		cs.pending[coord] = struct{}{}
		return true
	default:
		return false
	}
}

// RequestBox requests every chunk within the per-axis radius of center,
// nearest rings first so the observer's surroundings arrive before the edges.
func (cs *ChunkStreamer) RequestBox(center, radius ChunkCoord) int {
	queued := 0
	maxR := max(radius.X, radius.Y, radius.Z)
	for r := 0; r <= maxR; r++ {
		for dz := -min(r, radius.Z); dz <= min(r, radius.Z); dz++ {
			for dy := -min(r, radius.Y); dy <= min(r, radius.Y); dy++ {
				for dx := -min(r, radius.X); dx <= min(r, radius.X); dx++ {
					if max(abs(dx), abs(dy), abs(dz)) != r {
						continue
					}
					if cs.Request(center.Add(ChunkCoord{X: dx, Y: dy, Z: dz})) {
						queued++
					}
				}
			}
		}
	}
	return queued
}

// Drain passes every finished chunk to apply without blocking and returns the
// number applied.
func (cs *ChunkStreamer) Drain(apply func(GeneratedChunk)) int {
	n := 0
	for {
		select {
		case out := <-cs.results:
			delete(cs.pending, out.Coord)
			apply(out)
			n++
		default:
			return n
		}
	}
}

// Pending returns the number of requested chunks not yet drained.
func (cs *ChunkStreamer) Pending() int {
	return len(cs.pending)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
