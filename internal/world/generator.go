package world

import (
	"math"
)

// TerrainGenerator supplies the initial block content of a chunk. It must be
// safe for concurrent use: generation runs on worker goroutines.
type TerrainGenerator interface {
	Generate(coord ChunkCoord) *BlockGrid
}

// Generator produces heightmap terrain from octave value noise.
type Generator struct {
	seed        int64
	scale       float64
	baseHeight  int
	amp         float64
	octaves     int
	persistence float64
	lacunarity  float64
	dirtDepth   int
}

// NewGenerator creates a generator with default terrain settings.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed:        seed,
		scale:       1.0 / 96.0,
		baseHeight:  48,
		amp:         48,
		octaves:     5,
		persistence: 0.5,
		lacunarity:  2.0,
		dirtDepth:   3,
	}
}

// HeightAt computes the surface height (block Y) at world X,Z.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	x := float64(worldX) * g.scale
	z := float64(worldZ) * g.scale
	n := octaveNoise2D(x, z, g.seed, g.octaves, g.persistence, g.lacunarity)
	return int(math.Floor(float64(g.baseHeight) + n*g.amp))
}

// Generate fills a new grid for coord: stone below the surface, a few layers
// of dirt, grass on top and air above.
func (g *Generator) Generate(coord ChunkCoord) *BlockGrid {
	grid := new(BlockGrid)
	baseY := coord.Y * ChunkSide
	for lz := 0; lz < ChunkSide; lz++ {
		for lx := 0; lx < ChunkSide; lx++ {
			h := g.HeightAt(coord.X*ChunkSide+lx, coord.Z*ChunkSide+lz)
			top := min(h-baseY, ChunkSide-1)
			for ly := 0; ly <= top; ly++ {
				wy := baseY + ly
				switch {
				case wy == h:
					grid.Set(lx, ly, lz, BlockGrass)
				case wy >= h-g.dirtDepth:
					grid.Set(lx, ly, lz, BlockDirt)
				default:
					grid.Set(lx, ly, lz, BlockStone)
				}
			}
		}
	}
	return grid
}
