package physics

import (
	"math"

	"voxelstream/internal/profiling"
	"voxelstream/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 8.0
)

// BlockSource resolves blocks in world block coordinates. The second result
// is false when the block's chunk is not loaded.
type BlockSource interface {
	GetBlock(x, y, z int) (world.BlockID, bool)
}

// RaycastResult is the first solid block along a ray and the empty cell the
// ray passed through just before it.
type RaycastResult struct {
	HitPosition      [3]int
	AdjacentPosition [3]int
	Distance         float32
	Hit              bool
}

// Raycast marches from start along direction in fixed steps and stops at the
// first solid block. Block (x,y,z) occupies [x,x+1)×[y,y+1)×[z,z+1).
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, blocks BlockSource) RaycastResult {
	defer profiling.Track("physics.Raycast")()

	const stepSize = float32(0.02)
	dir := direction.Normalize()
	steps := int(maxDist / stepSize)

	prev := cellAt(start)
	for i := 0; i <= steps; i++ {
		dist := float32(i) * stepSize
		if dist < minDist {
			continue
		}
		cell := cellAt(start.Add(dir.Mul(dist)))
		if id, ok := blocks.GetBlock(cell[0], cell[1], cell[2]); ok && id.Solid() {
			return RaycastResult{
				HitPosition:      cell,
				AdjacentPosition: prev,
				Distance:         dist,
				Hit:              true,
			}
		}
		prev = cell
	}
	return RaycastResult{}
}

func cellAt(p mgl32.Vec3) [3]int {
	return [3]int{
		int(math.Floor(float64(p.X()))),
		int(math.Floor(float64(p.Y()))),
		int(math.Floor(float64(p.Z()))),
	}
}
