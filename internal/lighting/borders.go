package lighting

import (
	"fmt"
	"slices"

	"chunkmesh/internal/world"
)

// Borders are the edge cells of a field on its four lateral sides, exported
// so that neighboring chunks can fill their rings. NegX/PosX hold the x=0 and
// x=last cell columns indexed y*nz+z; NegZ/PosZ hold z=0 and z=last indexed
// y*nx+x (interior cells only, ring excluded).
type Borders struct {
	Coord      world.ChunkCoord
	Scale      int
	NX, NY, NZ int // interior cell counts

	NegX, PosX [channelCount][]float32
	NegZ, PosZ [channelCount][]float32
}

// BordersFromField captures the edge samples of f.
func BordersFromField(coord world.ChunkCoord, f *Field) *Borders {
	nx, ny, nz := f.Cells()
	b := &Borders{Coord: coord, Scale: f.Scale, NX: nx, NY: ny, NZ: nz}
	for c := Channel(0); c < channelCount; c++ {
		b.NegX[c] = make([]float32, ny*nz)
		b.PosX[c] = make([]float32, ny*nz)
		b.NegZ[c] = make([]float32, ny*nx)
		b.PosZ[c] = make([]float32, ny*nx)
		for y := 0; y < ny; y++ {
			for z := 0; z < nz; z++ {
				b.NegX[c][y*nz+z] = f.At(c, 0, y, z)
				b.PosX[c][y*nz+z] = f.At(c, nx-1, y, z)
			}
			for x := 0; x < nx; x++ {
				b.NegZ[c][y*nx+x] = f.At(c, x, y, 0)
				b.PosZ[c][y*nx+x] = f.At(c, x, y, nz-1)
			}
		}
	}
	return b
}

// Equal reports whether two border sets hold the same samples. Nil equals
// only nil.
func (b *Borders) Equal(o *Borders) bool {
	if b == nil || o == nil {
		return b == o
	}
	if b.Coord != o.Coord || b.Scale != o.Scale || b.NX != o.NX || b.NY != o.NY || b.NZ != o.NZ {
		return false
	}
	for c := Channel(0); c < channelCount; c++ {
		if !slices.Equal(b.NegX[c], o.NegX[c]) || !slices.Equal(b.PosX[c], o.PosX[c]) ||
			!slices.Equal(b.NegZ[c], o.NegZ[c]) || !slices.Equal(b.PosZ[c], o.PosZ[c]) {
			return false
		}
	}
	return true
}

// Edge returns the exported edge on the given lateral face, or nil.
func (b *Borders) Edge(c Channel, face world.Face) []float32 {
	switch face {
	case world.FaceNegX:
		return b.NegX[c]
	case world.FacePosX:
		return b.PosX[c]
	case world.FaceNegZ:
		return b.NegZ[c]
	case world.FacePosZ:
		return b.PosZ[c]
	}
	return nil
}

// ApplyNeighborBorders fills the ring on side face of f from the borders of
// the neighbor lying across that face.
func (f *Field) ApplyNeighborBorders(face world.Face, nb *Borders) error {
	nx, ny, nz := f.Cells()
	if nb.NX != nx || nb.NY != ny || nb.NZ != nz {
		return fmt.Errorf("neighbor borders %dx%dx%d do not match field %dx%dx%d", nb.NX, nb.NY, nb.NZ, nx, ny, nz)
	}
	for c := Channel(0); c < channelCount; c++ {
		edge := nb.Edge(c, face.Opposite())
		if edge == nil {
			return fmt.Errorf("face %s has no lateral border", face)
		}
		for y := 0; y < ny; y++ {
			switch face {
			case world.FaceNegX, world.FacePosX:
				x := -1
				if face == world.FacePosX {
					x = nx
				}
				for z := 0; z < nz; z++ {
					f.Set(c, x, y, z, edge[y*nz+z])
				}
			default:
				z := -1
				if face == world.FacePosZ {
					z = nz
				}
				for x := 0; x < nx; x++ {
					f.Set(c, x, y, z, edge[y*nx+x])
				}
			}
		}
	}
	return nil
}
