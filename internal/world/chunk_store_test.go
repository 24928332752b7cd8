package world

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/kr/pretty"
)

func TestPutRejectsDuplicate(t *testing.T) {
	cs := NewChunkStore()
	var first BlockGrid
	first.Fill(BlockStone)
	coord := ChunkCoord{X: 1, Y: 2, Z: 3}
	if _, err := cs.Put(coord, &first); err != nil {
		t.Fatalf("first put: %v", err)
	}

	var second BlockGrid
	second.Fill(BlockGrass)
	_, err := cs.Put(coord, &second)
	if !errors.Is(err, ErrChunkExists) {
		t.Fatalf("duplicate put: got %v, want ErrChunkExists", err)
	}
	ch, _ := cs.Get(coord)
	if ch.Blocks.At(0, 0, 0) != BlockStone {
		t.Fatalf("duplicate put overwrote resident data")
	}
}

func TestPutCopiesInput(t *testing.T) {
	cs := NewChunkStore()
	var grid BlockGrid
	cs.Put(ChunkCoord{}, &grid)
	grid.Set(1, 1, 1, BlockDirt)
	ch, _ := cs.Get(ChunkCoord{})
	if ch.Blocks.At(1, 1, 1) != BlockAir {
		t.Fatalf("store observed caller mutation after Put")
	}
}

func TestGetAbsent(t *testing.T) {
	cs := NewChunkStore()
	if ch, ok := cs.Get(ChunkCoord{X: 5}); ok || ch != nil {
		t.Fatalf("absent coordinate: got (%v, %v), want (nil, false)", ch, ok)
	}
	if _, ok := cs.GetBlock(80, 0, 0); ok {
		t.Fatalf("GetBlock reported presence for absent chunk")
	}
}

func TestSetBlockReportsBorderNeighbours(t *testing.T) {
	cs := NewChunkStore()
	for _, c := range []ChunkCoord{{}, {X: -1}, {Y: 1}, {Z: 1}} {
		cs.Put(c, nil)
	}

	// Interior edit only touches the owning chunk.
	affected, err := cs.SetBlock(5, 5, 5, BlockStone)
	if err != nil {
		t.Fatal(err)
	}
	if diff := pretty.Diff(affected, []ChunkCoord{{}}); len(diff) > 0 {
		t.Fatalf("interior edit: %v", diff)
	}

	// Corner cell (0,15,15) borders -X, +Y and +Z.
	affected, err = cs.SetBlock(0, ChunkSide-1, ChunkSide-1, BlockStone)
	if err != nil {
		t.Fatal(err)
	}
	want := []ChunkCoord{{}, {X: -1}, {Y: 1}, {Z: 1}}
	if diff := pretty.Diff(affected, want); len(diff) > 0 {
		t.Fatalf("corner edit: %v", diff)
	}

	// Writing the same value again is a no-op.
	affected, _ = cs.SetBlock(0, ChunkSide-1, ChunkSide-1, BlockStone)
	if len(affected) != 0 {
		t.Fatalf("repeated edit reported %v", affected)
	}

	if _, err := cs.SetBlock(-100, 0, 0, BlockStone); !errors.Is(err, ErrNoChunk) {
		t.Fatalf("edit of absent chunk: got %v, want ErrNoChunk", err)
	}
}

func TestChunkCoordAtFloors(t *testing.T) {
	cases := []struct {
		pos  mgl32.Vec3
		want ChunkCoord
	}{
		{mgl32.Vec3{0, 0, 0}, ChunkCoord{}},
		{mgl32.Vec3{15.9, 16, 31.99}, ChunkCoord{X: 0, Y: 1, Z: 1}},
		{mgl32.Vec3{-0.5, -16, -16.01}, ChunkCoord{X: -1, Y: -1, Z: -2}},
	}
	for _, c := range cases {
		if got := ChunkCoordAt(c.pos); got != c.want {
			t.Errorf("ChunkCoordAt(%v) = %v, want %v", c.pos, got, c.want)
		}
	}
}

func TestBlockIndexLayout(t *testing.T) {
	if got := BlockIndex(1, 2, 3); got != 1+ChunkSide*(2+ChunkSide*3) {
		t.Fatalf("BlockIndex(1,2,3) = %d", got)
	}
	if got := BlockIndex(ChunkSide-1, ChunkSide-1, ChunkSide-1); got != ChunkVolume-1 {
		t.Fatalf("last index = %d, want %d", got, ChunkVolume-1)
	}
}
