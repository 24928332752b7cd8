package world

import (
	"testing"
	"time"
)

type flatGenerator struct{}

func (flatGenerator) Generate(coord ChunkCoord) *BlockGrid {
	g := new(BlockGrid)
	if coord.Y < 0 {
		g.Fill(BlockStone)
	}
	return g
}

func drainUntil(t *testing.T, cs *ChunkStreamer, store *ChunkStore, want int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for store.Len() < want {
		if time.Now().After(deadline) {
			t.Fatalf("timed out: %d of %d chunks generated", store.Len(), want)
		}
		cs.Drain(func(out GeneratedChunk) {
			if _, err := store.Put(out.Coord, out.Blocks); err != nil {
				t.Fatalf("put %v: %v", out.Coord, err)
			}
		})
		time.Sleep(time.Millisecond)
	}
}

func TestRequestBoxGeneratesEveryChunkOnce(t *testing.T) {
	store := NewChunkStore()
	cs := NewChunkStreamer(store, flatGenerator{}, 4)
	defer cs.Close()

	queued := cs.RequestBox(ChunkCoord{}, ChunkCoord{X: 2, Y: 1, Z: 2})
	if queued != 5*3*5 {
		t.Fatalf("queued %d jobs, want %d", queued, 5*3*5)
	}
	// Repeated requests for pending coordinates are ignored.
	if again := cs.RequestBox(ChunkCoord{}, ChunkCoord{X: 2, Y: 1, Z: 2}); again != 0 {
		t.Fatalf("re-request queued %d jobs", again)
	}

	drainUntil(t, cs, store, 75)
	if cs.Pending() != 0 {
		t.Fatalf("pending = %d after drain", cs.Pending())
	}
	ch, ok := store.Get(ChunkCoord{Y: -1})
	if !ok || ch.Blocks.At(0, 0, 0) != BlockStone {
		t.Fatalf("generated content missing for (0,-1,0)")
	}
	// Resident chunks are never requested again.
	if cs.Request(ChunkCoord{}) {
		t.Fatalf("resident chunk was requested")
	}
}
