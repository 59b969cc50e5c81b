package meshing

import "chunkmesh/internal/world"

// Seam ownership on X and Z is half-open: a chunk owns planes [0, S·n) and
// its positive boundary plane belongs to the next chunk, which seeds it onto
// its own plane 0. Y planes are always local.

// ownsPlane reports whether plane p of a family (n planes) is emitted. The
// positive boundary plane is emitted only while the positive neighbor is
// missing, closing the chunk until that neighbor takes the seam over.
func (b *builder) ownsPlane(fam family, p, n int) bool {
	if p < n-1 {
		return true
	}
	switch fam {
	case familyX:
		return !b.buf.Neighbors.PosX
	case familyZ:
		return !b.buf.Neighbors.PosZ
	}
	return true
}

// seed projects the negative neighbors' boundary faces onto plane 0. A
// missing neighbor is treated as empty, so nothing is seeded for it.
func (b *builder) seed(l layer, g *faceGrids) {
	if b.buf.Neighbors.NegX {
		b.seedSide(l, g, world.FaceNegX)
	}
	if b.buf.Neighbors.NegZ {
		b.seedSide(l, g, world.FaceNegZ)
	}
}

// seedSide toggles, for every halo voxel across side, the micro rectangles
// of its boundary layer as faces pointing into this chunk. Where our own
// voxel is solid the toggles cancel; elsewhere they leave the neighbor's
// face, which this chunk now owns. Every block is seeded, whatever its seam
// flags, so a resident seam is always closed.
func (b *builder) seedSide(l layer, g *faceGrids, side world.Face) {
	size := b.buf.Size
	s := b.s
	face := side.Opposite()
	fam := familyOf(side)
	span := size.Z
	if fam == familyZ {
		span = size.X
	}
	for y := 0; y < size.Y; y++ {
		for i := 0; i < span; i++ {
			nx, nz := -1, i
			if fam == familyZ {
				nx, nz = i, -1
			}
			nb := b.buf.At(nx, y, nz)
			d := b.reg.Get(nb.ID)
			if ll, ok := layerOf(d); !ok || ll != l {
				continue
			}
			mask, ok := OccupancyMask(b.reg, nb, s)
			if !ok {
				continue
			}
			// mirrors keptFaces on the neighbor's side of the seam
			keep := b.keptFaces(d, nb, nx, y, nz)&face.Bit() != 0
			mat := b.reg.MaterialFor(nb, face)
			for _, r := range RectsForPlaneMask(s, BoundaryLayer(s, mask, face)) {
				for dv := 0; dv < int(r.H); dv++ {
					for du := 0; du < int(r.W); du++ {
						u := i*s + int(r.U) + du
						v := y*s + int(r.V) + dv
						if keep {
							b.keepCell(g, fam, 0, u, v, face, mat)
						} else {
							b.toggleCell(g, fam, 0, u, v, face, mat)
						}
					}
				}
			}
		}
	}
}
