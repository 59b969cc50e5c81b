package meshing

import (
	"github.com/go-gl/mathgl/mgl32"

	"chunkmesh/internal/lighting"
	"chunkmesh/internal/registry"
	"chunkmesh/internal/world"
	"chunkmesh/pkg/blockmodel"
)

// emitThin writes pane, fence, gate and carpet geometry straight into the
// mesh. Thin shapes never touch the parity grids and never wait on seams.
func (b *builder) emitThin() {
	size := b.buf.Size
	for z := 0; z < size.Z; z++ {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				blk := b.buf.At(x, y, z)
				d := b.reg.Get(blk.ID)
				if d == nil || !d.Shape.Thin() || d.Model == nil {
					continue
				}
				for _, el := range b.thinElements(blk, d, x, y, z) {
					b.emitElement(blk, x, y, z, el)
				}
			}
		}
	}
}

// thinElements returns the model boxes of a thin voxel: the base elements,
// rotated for gates, plus an arm toward every connecting side neighbor.
// An unconnected pane shows its north and south arms.
func (b *builder) thinElements(blk world.Block, d *registry.BlockDefinition, x, y, z int) []blockmodel.Element {
	switch d.Shape {
	case registry.ShapeGate:
		turns := 0
		if f := blk.Facing(); f == world.FacingWest || f == world.FacingEast {
			turns = 1
		}
		if turns == 0 {
			return d.Model.Elements
		}
		out := make([]blockmodel.Element, len(d.Model.Elements))
		for i, el := range d.Model.Elements {
			out[i] = el.RotateY(turns)
		}
		return out
	case registry.ShapePane, registry.ShapeFence:
		out := append([]blockmodel.Element(nil), d.Model.Elements...)
		connected := 0
		for i, side := range blockmodel.Sides {
			dx, _, dz := world.SideFaces[i].Delta()
			nd := b.reg.Get(b.buf.At(x+dx, y, z+dz).ID)
			if nd != nil && nd.Shape.Connects() {
				out = append(out, d.Model.Arms[side]...)
				connected++
			}
		}
		if connected == 0 && d.Shape == registry.ShapePane {
			out = append(out, d.Model.Arms["north"]...)
			out = append(out, d.Model.Arms["south"]...)
		}
		return out
	}
	return d.Model.Elements
}

// emitElement emits the visible faces of one element box. A face flush with
// the voxel boundary is dropped when the neighbor across it hides it.
func (b *builder) emitElement(blk world.Block, x, y, z int, el blockmodel.Element) {
	lo, hi := el.Bounds()
	base := mgl32.Vec3{float32(b.ox + x), float32(y), float32(b.oz + z)}
	wlo, whi := base.Add(lo), base.Add(hi)

	// clip to the chunk's horizontal extent
	size := b.buf.Size
	minX, maxX := float32(b.ox), float32(b.ox+size.X)
	minZ, maxZ := float32(b.oz), float32(b.oz+size.Z)
	wlo[0], whi[0] = max(wlo[0], minX), min(whi[0], maxX)
	wlo[2], whi[2] = max(wlo[2], minZ), min(whi[2], maxZ)
	if wlo[0] >= whi[0] || wlo[2] >= whi[2] {
		return
	}

	for _, f := range world.AllFaces {
		if flush(f, lo, hi) {
			dx, dy, dz := f.Delta()
			if b.reg.Occludes(blk, b.buf.At(x+dx, y+dy, z+dz), f) {
				continue
			}
		}
		origin, du, dv := boxFace(wlo, whi, f)
		center := origin.Add(du.Mul(0.5)).Add(dv.Mul(0.5))
		light := lighting.Quantize(b.light.SampleFace(center, f, b.m.opts.Light))
		b.mesh.Part(b.reg.MaterialFor(blk, f)).AddFaceRect(f, origin, du, dv, lightRGBA(light))
		b.stats.ThinQuads++
	}
}

// flush reports whether face f of a box in voxel units lies on the voxel
// boundary.
func flush(f world.Face, lo, hi mgl32.Vec3) bool {
	switch f {
	case world.FacePosX:
		return hi.X() >= 1
	case world.FaceNegX:
		return lo.X() <= 0
	case world.FacePosY:
		return hi.Y() >= 1
	case world.FaceNegY:
		return lo.Y() <= 0
	case world.FacePosZ:
		return hi.Z() >= 1
	default:
		return lo.Z() <= 0
	}
}

// boxFace returns the rectangle of face f of the box [lo, hi].
func boxFace(lo, hi mgl32.Vec3, f world.Face) (origin, du, dv mgl32.Vec3) {
	d := hi.Sub(lo)
	switch f {
	case world.FacePosX, world.FaceNegX:
		origin = lo
		if f == world.FacePosX {
			origin[0] = hi[0]
		}
		return origin, mgl32.Vec3{0, 0, d.Z()}, mgl32.Vec3{0, d.Y(), 0}
	case world.FacePosY, world.FaceNegY:
		origin = lo
		if f == world.FacePosY {
			origin[1] = hi[1]
		}
		return origin, mgl32.Vec3{d.X(), 0, 0}, mgl32.Vec3{0, 0, d.Z()}
	default:
		origin = lo
		if f == world.FacePosZ {
			origin[2] = hi[2]
		}
		return origin, mgl32.Vec3{d.X(), 0, 0}, mgl32.Vec3{0, d.Y(), 0}
	}
}
