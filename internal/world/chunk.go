package world

const (
	// Default chunk dimensions
	DefaultChunkSizeX = 16
	DefaultChunkSizeY = 128
	DefaultChunkSizeZ = 16

	// SectionHeight is the height of one lazily allocated storage slice.
	SectionHeight = 16
)

// ChunkCoord addresses a chunk on the horizontal grid.
type ChunkCoord struct {
	X, Z int
}

// Neighbor returns the coordinate one step across the given lateral face.
// Vertical faces return the coordinate itself.
func (c ChunkCoord) Neighbor(f Face) ChunkCoord {
	dx, _, dz := f.Delta()
	return ChunkCoord{X: c.X + dx, Z: c.Z + dz}
}

// Size describes chunk dimensions in voxels.
type Size struct {
	X, Y, Z int
}

// DefaultSize is the size used when a config leaves it unset.
var DefaultSize = Size{X: DefaultChunkSizeX, Y: DefaultChunkSizeY, Z: DefaultChunkSizeZ}

// Valid reports whether all dimensions are positive.
func (s Size) Valid() bool {
	return s.X > 0 && s.Y > 0 && s.Z > 0
}

// section holds SectionHeight layers; nil blocks means all air.
type section struct {
	blocks []Block
	solid  int
}

// Chunk is a fixed-size column of voxels at (X, Z).
type Chunk struct {
	X, Z     int
	size     Size
	sections []*section
	dirty    bool
}

// NewChunk creates an empty chunk at the given chunk coordinates.
func NewChunk(x, z int, size Size) *Chunk {
	n := (size.Y + SectionHeight - 1) / SectionHeight
	return &Chunk{
		X:        x,
		Z:        z,
		size:     size,
		sections: make([]*section, n),
		dirty:    true,
	}
}

// Coord returns the chunk coordinate.
func (c *Chunk) Coord() ChunkCoord {
	return ChunkCoord{X: c.X, Z: c.Z}
}

// Size returns the chunk dimensions.
func (c *Chunk) Size() Size {
	return c.size
}

func (c *Chunk) inBounds(x, y, z int) bool {
	return x >= 0 && x < c.size.X && y >= 0 && y < c.size.Y && z >= 0 && z < c.size.Z
}

// indexInSection converts local section coordinates (x, localY, z) to a flat index
func (c *Chunk) indexInSection(x, localY, z int) int {
	return (localY*c.size.Z+z)*c.size.X + x
}

// Get returns the voxel at local coordinates; out of range is air.
func (c *Chunk) Get(x, y, z int) Block {
	if !c.inBounds(x, y, z) {
		return Air
	}
	sec := c.sections[y/SectionHeight]
	if sec == nil || sec.blocks == nil {
		return Air
	}
	return sec.blocks[c.indexInSection(x, y%SectionHeight, z)]
}

// Set stores a voxel at local coordinates. It reports whether the value changed.
func (c *Chunk) Set(x, y, z int, b Block) bool {
	if !c.inBounds(x, y, z) {
		return false
	}
	secIdx := y / SectionHeight
	sec := c.sections[secIdx]
	if b.IsAir() && (sec == nil || sec.blocks == nil) {
		return false
	}
	if sec == nil {
		sec = &section{}
		c.sections[secIdx] = sec
	}
	if sec.blocks == nil {
		sec.blocks = make([]Block, SectionHeight*c.size.X*c.size.Z)
	}
	idx := c.indexInSection(x, y%SectionHeight, z)
	old := sec.blocks[idx]
	if old == b {
		return false
	}
	sec.blocks[idx] = b
	switch {
	case old.IsAir() && !b.IsAir():
		sec.solid++
	case !old.IsAir() && b.IsAir():
		sec.solid--
	}
	if sec.solid == 0 {
		// drop storage for sections that became empty
		c.sections[secIdx] = nil
	}
	c.dirty = true
	return true
}

// Fill sets every voxel in the inclusive-exclusive box [x0,x1)×[y0,y1)×[z0,z1).
func (c *Chunk) Fill(x0, y0, z0, x1, y1, z1 int, b Block) {
	for y := y0; y < y1; y++ {
		for z := z0; z < z1; z++ {
			for x := x0; x < x1; x++ {
				c.Set(x, y, z, b)
			}
		}
	}
}

// IsDirty returns whether the chunk has been modified since its last mesh
func (c *Chunk) IsDirty() bool {
	return c.dirty
}

// SetClean marks the chunk as meshed
func (c *Chunk) SetClean() {
	c.dirty = false
}

// SolidCount returns the number of non-air voxels.
func (c *Chunk) SolidCount() int {
	n := 0
	for _, sec := range c.sections {
		if sec != nil {
			n += sec.solid
		}
	}
	return n
}
