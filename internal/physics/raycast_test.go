package physics

import (
	"testing"

	"voxelstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRaycastHitsFloor(t *testing.T) {
	store := world.NewChunkStore()
	g := new(world.BlockGrid)
	for z := 0; z < world.ChunkSide; z++ {
		for x := 0; x < world.ChunkSide; x++ {
			g.Set(x, 0, z, world.BlockStone)
		}
	}
	store.Put(world.ChunkCoord{}, g)

	res := Raycast(mgl32.Vec3{4.5, 5.5, 4.5}, mgl32.Vec3{0, -1, 0}, MinReachDistance, MaxReachDistance, store)
	if !res.Hit {
		t.Fatalf("ray missed the floor")
	}
	if res.HitPosition != [3]int{4, 0, 4} {
		t.Fatalf("hit %v, want [4 0 4]", res.HitPosition)
	}
	if res.AdjacentPosition != [3]int{4, 1, 4} {
		t.Fatalf("adjacent %v, want [4 1 4]", res.AdjacentPosition)
	}
}

func TestRaycastIgnoresUnloadedChunks(t *testing.T) {
	store := world.NewChunkStore()
	res := Raycast(mgl32.Vec3{0.5, 0.5, 0.5}, mgl32.Vec3{1, 0, 0}, MinReachDistance, MaxReachDistance, store)
	if res.Hit {
		t.Fatalf("hit %v in an empty world", res.HitPosition)
	}
}
