package meshing

import (
	"fmt"

	"chunkmesh/internal/registry"
	"chunkmesh/internal/world"
)

// FaceKey packs what decides whether two face cells may merge: presence,
// facing along the plane normal, material and quantized light. Zero means
// "no face".
type FaceKey uint32

const (
	keyPresent  FaceKey = 1 << 31
	keyPositive FaceKey = 1 << 30
)

// MakeFaceKey builds a present key.
func MakeFaceKey(positive bool, mat registry.MaterialID, light uint8) FaceKey {
	k := keyPresent | FaceKey(mat)<<8 | FaceKey(light)
	if positive {
		k |= keyPositive
	}
	return k
}

// Present reports whether the cell holds a face.
func (k FaceKey) Present() bool { return k&keyPresent != 0 }

// Positive reports whether the face points along +axis.
func (k FaceKey) Positive() bool { return k&keyPositive != 0 }

// Material returns the face's render material.
func (k FaceKey) Material() registry.MaterialID { return registry.MaterialID(k >> 8) }

// Light returns the quantized light sampled for the face.
func (k FaceKey) Light() uint8 { return uint8(k) }

func (k FaceKey) String() string {
	if !k.Present() {
		return "none"
	}
	sign := "-"
	if k.Positive() {
		sign = "+"
	}
	return fmt.Sprintf("%smat%d@%d", sign, k.Material(), k.Light())
}

// family is one of the three plane orientations.
type family int

const (
	familyX family = iota
	familyY
	familyZ
)

// familyOf maps a face to the planes it lies on.
func familyOf(f world.Face) family {
	switch f.Axis() {
	case 0:
		return familyX
	case 1:
		return familyY
	}
	return familyZ
}

// planeGrid is a stack of N planes of W×H face cells, stored plane-major so
// a single plane is a contiguous slice.
type planeGrid struct {
	N, W, H int
	keys    []FaceKey
}

func newPlaneGrid(n, w, h int) planeGrid {
	return planeGrid{N: n, W: w, H: h, keys: make([]FaceKey, n*w*h)}
}

// toggle flips the parity of one cell. A cell that becomes set stores key; a
// cell that cancels is cleared. Out-of-range cells are ignored.
func (g *planeGrid) toggle(plane, u, v int, key FaceKey) {
	if plane < 0 || plane >= g.N || u < 0 || u >= g.W || v < 0 || v >= g.H {
		return
	}
	i := (plane*g.H+v)*g.W + u
	if g.keys[i] != 0 {
		g.keys[i] = 0
	} else {
		g.keys[i] = key
	}
}

// set stores key without toggling. Out-of-range cells are ignored.
func (g *planeGrid) set(plane, u, v int, key FaceKey) {
	if plane < 0 || plane >= g.N || u < 0 || u >= g.W || v < 0 || v >= g.H {
		return
	}
	g.keys[(plane*g.H+v)*g.W+u] = key
}

func (g *planeGrid) at(plane, u, v int) FaceKey {
	return g.keys[(plane*g.H+v)*g.W+u]
}

// plane returns one plane as a mask sharing the grid's storage.
func (g *planeGrid) plane(p int) PlaneMask {
	n := g.W * g.H
	return PlaneMask{W: g.W, H: g.H, Cells: g.keys[p*n : (p+1)*n]}
}

// faceGrids is the parity accumulator of one layer: X planes hold
// (S·sx+1) planes of (S·sz)×(S·sy) cells with u=z and v=y, Y planes
// (S·sy+1) planes of (S·sx)×(S·sz) with u=x and v=z, Z planes (S·sz+1)
// planes of (S·sx)×(S·sy) with u=x and v=y.
//
// Faces shared by two identical blocks that do not occlude each other bypass
// parity: both sides are stored in kept, one grid per facing, so they never
// cancel.
type faceGrids struct {
	s       int
	size    world.Size
	x, y, z planeGrid
	kept    [2]*faceGrids
}

func newFaceGrids(size world.Size, s int) *faceGrids {
	mx, my, mz := size.X*s, size.Y*s, size.Z*s
	return &faceGrids{
		s:    s,
		size: size,
		x:    newPlaneGrid(mx+1, mz, my),
		y:    newPlaneGrid(my+1, mx, mz),
		z:    newPlaneGrid(mz+1, mx, my),
	}
}

// keep returns the non-cancelling grid for one facing, allocating it on
// first use.
func (g *faceGrids) keep(positive bool) *faceGrids {
	i := 0
	if positive {
		i = 1
	}
	if g.kept[i] == nil {
		g.kept[i] = newFaceGrids(g.size, g.s)
	}
	return g.kept[i]
}

func (g *faceGrids) grid(fam family) *planeGrid {
	switch fam {
	case familyX:
		return &g.x
	case familyY:
		return &g.y
	}
	return &g.z
}

// planeOf returns the plane index and in-plane (u, v) of a micro cell face,
// given the micro cell's chunk-local coordinates.
func planeOf(f world.Face, mx, my, mz int) (fam family, plane, u, v int) {
	fam = familyOf(f)
	switch fam {
	case familyX:
		plane, u, v = mx, mz, my
	case familyY:
		plane, u, v = my, mx, mz
	default:
		plane, u, v = mz, mx, my
	}
	if f.Positive() {
		plane++
	}
	return fam, plane, u, v
}
