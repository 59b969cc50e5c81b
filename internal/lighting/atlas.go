package lighting

import "math"

// Atlas packs a field into a 2-D RGBA texture for the renderer: one tile per
// cell layer, each tile covering the horizontal extent plus the ring. Texels
// carry block, sky and beacon light in R, G and B; A is always 255.
type Atlas struct {
	TileW, TileH  int // texels per tile: x cells + 2, z cells + 2
	Cols, Rows    int
	Width, Height int
	Layers        int
	// Chunk origin in world voxels and the field scale, so the renderer can
	// map a world position to a texel.
	OriginX, OriginZ int
	Scale            int
	Pix              []uint8 // row-major RGBA, stride Width*4
}

// BuildAtlas lays the layers of f out on a grid of ceil(sqrt(layers))
// columns.
func BuildAtlas(f *Field) *Atlas {
	_, ny, _ := f.Cells()
	cols := int(math.Ceil(math.Sqrt(float64(ny))))
	if cols < 1 {
		cols = 1
	}
	rows := (ny + cols - 1) / cols
	a := &Atlas{
		TileW:   f.nx,
		TileH:   f.nz,
		Cols:    cols,
		Rows:    rows,
		Layers:  ny,
		OriginX: f.OriginX,
		OriginZ: f.OriginZ,
		Scale:   f.Scale,
	}
	a.Width = cols * a.TileW
	a.Height = rows * a.TileH
	a.Pix = make([]uint8, a.Width*a.Height*4)

	for y := 0; y < ny; y++ {
		for tz := 0; tz < a.TileH; tz++ {
			for tx := 0; tx < a.TileW; tx++ {
				i := a.offset(y, tx, tz)
				cx, cz := tx-1, tz-1
				a.Pix[i+0] = Quantize(f.At(ChannelBlock, cx, y, cz))
				a.Pix[i+1] = Quantize(f.At(ChannelSky, cx, y, cz))
				a.Pix[i+2] = Quantize(f.At(ChannelBeacon, cx, y, cz))
				a.Pix[i+3] = 255
			}
		}
	}
	return a
}

// Tile returns the grid column and row of a layer's tile.
func (a *Atlas) Tile(layer int) (col, row int) {
	return layer % a.Cols, layer / a.Cols
}

func (a *Atlas) offset(layer, tx, tz int) int {
	col, row := a.Tile(layer)
	px := col*a.TileW + tx
	py := row*a.TileH + tz
	return (py*a.Width + px) * 4
}

// Texel returns the RGBA of tile texel (tx, tz) in a layer; texel (0, 0) is
// the ring corner at cell (-1, -1).
func (a *Atlas) Texel(layer, tx, tz int) [4]uint8 {
	i := a.offset(layer, tx, tz)
	return [4]uint8{a.Pix[i], a.Pix[i+1], a.Pix[i+2], a.Pix[i+3]}
}
