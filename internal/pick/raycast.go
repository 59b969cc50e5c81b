// Package pick finds voxels along a ray.
package pick

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"chunkmesh/internal/profiling"
	"chunkmesh/internal/world"
)

const stepSize = float32(0.02)

// BlockSource answers voxel queries in world coordinates.
type BlockSource interface {
	Get(x, y, z int) world.Block
}

// Result stores the result of a raycast. AdjacentPosition is the last empty
// voxel before the hit, where a block placed by the ray would go.
type Result struct {
	HitPosition      [3]int
	AdjacentPosition [3]int
	Distance         float32
	Hit              bool
}

// Raycast steps from start along direction and stops at the first non-air
// voxel between minDist and maxDist. Voxel (x, y, z) spans [x, x+1) on each
// axis.
func Raycast(start mgl32.Vec3, direction mgl32.Vec3, minDist, maxDist float32, src BlockSource) Result {
	defer profiling.Track("pick.Raycast")()
	steps := int(maxDist / stepSize)

	lastEmptyPos := voxelAt(start)
	result := Result{Hit: false}

	for i := 0; i <= steps; i++ {
		dist := float32(i) * stepSize
		if dist < minDist {
			continue
		}

		pos := start.Add(direction.Mul(dist))
		blockPos := voxelAt(pos)

		if !src.Get(blockPos[0], blockPos[1], blockPos[2]).IsAir() {
			result.HitPosition = blockPos
			result.AdjacentPosition = lastEmptyPos
			result.Distance = dist
			result.Hit = true
			return result
		}

		lastEmptyPos = blockPos
	}

	return result
}

func voxelAt(p mgl32.Vec3) [3]int {
	return [3]int{
		int(math.Floor(float64(p.X()))),
		int(math.Floor(float64(p.Y()))),
		int(math.Floor(float64(p.Z()))),
	}
}
