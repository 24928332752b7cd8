package world

import "testing"

func TestGeneratorColumnsMatchHeight(t *testing.T) {
	g := NewGenerator(7)
	for cy := 0; cy < 8; cy++ {
		coord := ChunkCoord{X: 2, Y: cy, Z: -3}
		grid := g.Generate(coord)
		for lz := 0; lz < ChunkSide; lz++ {
			for lx := 0; lx < ChunkSide; lx++ {
				h := g.HeightAt(coord.X*ChunkSide+lx, coord.Z*ChunkSide+lz)
				for ly := 0; ly < ChunkSide; ly++ {
					wy := cy*ChunkSide + ly
					solid := grid.At(lx, ly, lz).Solid()
					if solid != (wy <= h) {
						t.Fatalf("chunk %v cell (%d,%d,%d): solid=%v, surface=%d", coord, lx, ly, lz, solid, h)
					}
					if wy == h && grid.At(lx, ly, lz) != BlockGrass {
						t.Fatalf("surface block at %v (%d,%d,%d) = %d, want grass", coord, lx, ly, lz, grid.At(lx, ly, lz))
					}
				}
			}
		}
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	a := NewGenerator(99).Generate(ChunkCoord{X: 1, Y: 3, Z: 1})
	b := NewGenerator(99).Generate(ChunkCoord{X: 1, Y: 3, Z: 1})
	if *a != *b {
		t.Fatalf("same seed and coordinate produced different grids")
	}
}

func TestGeneratorSkyIsEmpty(t *testing.T) {
	g := NewGenerator(1)
	// base 48 + amplitude 48 keeps every surface at or below y=96
	if grid := g.Generate(ChunkCoord{Y: 8}); !grid.Empty() {
		t.Fatalf("expected chunk far above the surface to be empty")
	}
}
