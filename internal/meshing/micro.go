package meshing

import (
	"sync"

	"chunkmesh/internal/registry"
	"chunkmesh/internal/world"
)

// MaxScale is the largest subdivision whose occupancy fits a uint64 mask.
const MaxScale = 4

// MicroBox is an axis-aligned box in subdivision units inside one voxel,
// half-open on every axis.
type MicroBox struct {
	X0, Y0, Z0, X1, Y1, Z1 uint8
}

// PlaneRect is a rectangle on an s×s boundary layer, in subdivision units.
type PlaneRect struct {
	U, V, W, H uint8
}

// maskBit returns the occupancy bit for micro cell (x, y, z).
func maskBit(s, x, y, z int) uint64 {
	return 1 << uint((y*s+z)*s+x)
}

// FullMask is the occupancy of a completely filled voxel.
func FullMask(s int) uint64 {
	n := s * s * s
	if n >= 64 {
		return ^uint64(0)
	}
	return 1<<uint(n) - 1
}

// OccupancyMask returns the canonical micro occupancy of a voxel. Shapes that
// do not take part in the parity grid (air, thin shapes) report false.
func OccupancyMask(reg *registry.Registry, b world.Block, s int) (uint64, bool) {
	d := reg.Get(b.ID)
	if d == nil {
		return 0, false
	}
	switch d.Shape {
	case registry.ShapeCube, registry.ShapeAxisCube:
		return FullMask(s), true
	case registry.ShapeSlab:
		return shapeMask(s, func(x, y, z int) bool { return inHalf(s, y, b.Top()) }), true
	case registry.ShapeStairs:
		back := stairBack(b.Facing())
		return shapeMask(s, func(x, y, z int) bool {
			return inHalf(s, y, b.Top()) || back(s, x, z)
		}), true
	}
	return 0, false
}

func shapeMask(s int, filled func(x, y, z int) bool) uint64 {
	var m uint64
	for y := 0; y < s; y++ {
		for z := 0; z < s; z++ {
			for x := 0; x < s; x++ {
				if filled(x, y, z) {
					m |= maskBit(s, x, y, z)
				}
			}
		}
	}
	return m
}

// inHalf tests the cell center against the voxel's mid plane.
func inHalf(s, y int, top bool) bool {
	c := 2*y + 1 // cell center in units of half a cell
	if top {
		return c > s
	}
	return c < s
}

// stairBack selects the full-height half of a stair, on the side it faces.
func stairBack(f world.Facing) func(s, x, z int) bool {
	switch f {
	case world.FacingNorth:
		return func(s, x, z int) bool { return 2*z+1 < s }
	case world.FacingSouth:
		return func(s, x, z int) bool { return 2*z+1 > s }
	case world.FacingWest:
		return func(s, x, z int) bool { return 2*x+1 < s }
	default:
		return func(s, x, z int) bool { return 2*x+1 > s }
	}
}

type maskKey struct {
	s    uint8
	mask uint64
}

// Both tables are append-only: an entry, once stored, is never replaced.
var (
	boxTable  sync.Map // maskKey -> []MicroBox
	rectTable sync.Map // maskKey -> []PlaneRect
)

// BoxesForMask decomposes an occupancy mask into disjoint boxes. Results are
// memoized per (s, mask) and shared between builds; callers must not modify
// the returned slice. Masks outside the table domain, or whose decomposition
// fails verification, fall back to one box per set cell.
func BoxesForMask(s int, mask uint64) []MicroBox {
	if mask == 0 {
		return nil
	}
	if s < 1 || s > MaxScale || mask&^FullMask(s) != 0 {
		return cellBoxes(s, mask)
	}
	key := maskKey{uint8(s), mask}
	if v, ok := boxTable.Load(key); ok {
		return v.([]MicroBox)
	}
	boxes := decomposeBoxes(s, mask)
	if !boxesCover(s, mask, boxes) {
		boxes = cellBoxes(s, mask)
	}
	v, _ := boxTable.LoadOrStore(key, boxes)
	return v.([]MicroBox)
}

// decomposeBoxes grows each box greedily: an x run first, then z rows of
// that run, then y layers of the resulting rectangle.
func decomposeBoxes(s int, mask uint64) []MicroBox {
	var used uint64
	free := func(x, y, z int) bool {
		b := maskBit(s, x, y, z)
		return mask&b != 0 && used&b == 0
	}
	rowFree := func(x0, x1, y, z int) bool {
		for x := x0; x < x1; x++ {
			if !free(x, y, z) {
				return false
			}
		}
		return true
	}

	var out []MicroBox
	for y := 0; y < s; y++ {
		for z := 0; z < s; z++ {
			for x := 0; x < s; x++ {
				if !free(x, y, z) {
					continue
				}
				x1 := x + 1
				for x1 < s && free(x1, y, z) {
					x1++
				}
				z1 := z + 1
				for z1 < s && rowFree(x, x1, y, z1) {
					z1++
				}
				y1 := y + 1
			layers:
				for ; y1 < s; y1++ {
					for zz := z; zz < z1; zz++ {
						if !rowFree(x, x1, y1, zz) {
							break layers
						}
					}
				}
				for yy := y; yy < y1; yy++ {
					for zz := z; zz < z1; zz++ {
						for xx := x; xx < x1; xx++ {
							used |= maskBit(s, xx, yy, zz)
						}
					}
				}
				out = append(out, MicroBox{uint8(x), uint8(y), uint8(z), uint8(x1), uint8(y1), uint8(z1)})
			}
		}
	}
	return out
}

// boxesCover reports whether boxes are disjoint and cover exactly mask.
func boxesCover(s int, mask uint64, boxes []MicroBox) bool {
	var seen uint64
	for _, b := range boxes {
		for y := int(b.Y0); y < int(b.Y1); y++ {
			for z := int(b.Z0); z < int(b.Z1); z++ {
				for x := int(b.X0); x < int(b.X1); x++ {
					bit := maskBit(s, x, y, z)
					if seen&bit != 0 {
						return false
					}
					seen |= bit
				}
			}
		}
	}
	return seen == mask
}

// cellBoxes is the per-cell fallback. Bits beyond the s³ cells are ignored.
func cellBoxes(s int, mask uint64) []MicroBox {
	if s < 1 {
		return nil
	}
	var out []MicroBox
	for i := 0; i < 64 && i < s*s*s; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		x, z, y := i%s, (i/s)%s, i/(s*s)
		out = append(out, MicroBox{uint8(x), uint8(y), uint8(z), uint8(x + 1), uint8(y + 1), uint8(z + 1)})
	}
	return out
}

// BoundaryLayer extracts the s×s layer of mask touching face f, as a plane
// mask with bit v*s+u. The (u, v) axes follow the plane families: X planes
// use (z, y), Y planes (x, z) and Z planes (x, y).
func BoundaryLayer(s int, mask uint64, f world.Face) uint64 {
	layer := 0
	if f.Positive() {
		layer = s - 1
	}
	var out uint64
	for v := 0; v < s; v++ {
		for u := 0; u < s; u++ {
			var bit uint64
			switch f.Axis() {
			case 0:
				bit = maskBit(s, layer, v, u)
			case 1:
				bit = maskBit(s, u, layer, v)
			default:
				bit = maskBit(s, u, v, layer)
			}
			if mask&bit != 0 {
				out |= 1 << uint(v*s+u)
			}
		}
	}
	return out
}

// RectsForPlaneMask decomposes an s×s plane mask into disjoint rectangles,
// memoized like BoxesForMask.
func RectsForPlaneMask(s int, mask uint64) []PlaneRect {
	if mask == 0 || s < 1 || s > MaxScale {
		return nil
	}
	mask &= 1<<uint(s*s) - 1
	key := maskKey{uint8(s), mask}
	if v, ok := rectTable.Load(key); ok {
		return v.([]PlaneRect)
	}
	var used uint64
	free := func(u, v int) bool {
		b := uint64(1) << uint(v*s+u)
		return mask&b != 0 && used&b == 0
	}
	var out []PlaneRect
	for v := 0; v < s; v++ {
		for u := 0; u < s; u++ {
			if !free(u, v) {
				continue
			}
			u1 := u + 1
			for u1 < s && free(u1, v) {
				u1++
			}
			v1 := v + 1
		rows:
			for ; v1 < s; v1++ {
				for uu := u; uu < u1; uu++ {
					if !free(uu, v1) {
						break rows
					}
				}
			}
			for vv := v; vv < v1; vv++ {
				for uu := u; uu < u1; uu++ {
					used |= 1 << uint(vv*s+uu)
				}
			}
			out = append(out, PlaneRect{uint8(u), uint8(v), uint8(u1 - u), uint8(v1 - v)})
		}
	}
	r, _ := rectTable.LoadOrStore(key, out)
	return r.([]PlaneRect)
}
