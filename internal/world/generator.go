package world

import "math"

// Palette names the voxels the demo generator places. Callers resolve them
// from the block registry; a zero Block disables that feature.
type Palette struct {
	Stone  Block
	Dirt   Block
	Grass  Block
	Log    Block
	Glass  Block
	Slab   Block // lower half; the generator sets the upper-half state itself
	Stairs Block
	Fence  Block
	Pane   Block
	Carpet Block
	Gate   Block
}

// Generator fills chunks with a noise heightmap plus scattered micro and thin
// shapes so every meshing path is exercised.
type Generator struct {
	seed       int64
	noise      heightNoise
	scale      float64
	baseHeight int
	amp        float64
	palette    Palette
}

// NewGenerator creates a generator with default terrain settings.
func NewGenerator(seed int64, palette Palette) *Generator {
	return &Generator{
		seed:       seed,
		noise:      heightNoise{seed: seed, octaves: 4, persistence: 0.5, lacunarity: 2},
		scale:      1.0 / 48.0,
		baseHeight: 24,
		amp:        16,
		palette:    palette,
	}
}

// HeightAt computes the surface height (block Y) at world X,Z.
func (g *Generator) HeightAt(worldX, worldZ int) int {
	x := float64(worldX) * g.scale
	z := float64(worldZ) * g.scale
	n := g.noise.at(x, z)
	height := float64(g.baseHeight) + (n-0.5)*2*g.amp
	if height < 1 {
		height = 1
	}
	return int(math.Floor(height))
}

// PopulateChunk fills a chunk using the heightmap and decorates the surface.
func (g *Generator) PopulateChunk(c *Chunk) {
	size := c.Size()
	p := g.palette
	for lz := 0; lz < size.Z; lz++ {
		for lx := 0; lx < size.X; lx++ {
			worldX := c.X*size.X + lx
			worldZ := c.Z*size.Z + lz
			top := min(g.HeightAt(worldX, worldZ), size.Y-2)
			for ly := 0; ly < top; ly++ {
				if ly < top-3 {
					c.Set(lx, ly, lz, p.Stone)
				} else {
					c.Set(lx, ly, lz, p.Dirt)
				}
			}
			c.Set(lx, top, lz, p.Grass)
			g.decorate(c, lx, top+1, lz, hash2(int64(worldX), int64(worldZ), g.seed^0x5bd1e995))
		}
	}
	c.dirty = true
}

// decorate places at most one feature on the voxel above the surface.
func (g *Generator) decorate(c *Chunk, lx, ly, lz int, h uint64) {
	if ly >= c.Size().Y {
		return
	}
	p := g.palette
	place := func(b Block) {
		if !b.IsAir() {
			c.Set(lx, ly, lz, b)
		}
	}
	switch h % 97 {
	case 0, 1:
		place(Block{ID: p.Slab.ID, State: SlabState(h&0x100 != 0)})
	case 2, 3:
		place(Block{ID: p.Stairs.ID, State: StairState(Facing((h>>8)&3), h&0x400 != 0)})
	case 4:
		place(p.Fence)
	case 5:
		place(p.Pane)
	case 6, 7:
		place(p.Carpet)
	case 8:
		place(Block{ID: p.Gate.ID, State: GateState(Facing((h >> 8) & 3))})
	case 9:
		place(p.Glass)
	case 10:
		if p.Log.IsAir() {
			return
		}
		for dy := 0; dy < 4 && ly+dy < c.Size().Y; dy++ {
			c.Set(lx, ly+dy, lz, Block{ID: p.Log.ID, State: AxisState(AxisY)})
		}
	}
}
