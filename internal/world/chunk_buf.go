package world

// NeighborsLoaded records which lateral neighbor chunks were resident when a
// snapshot was taken.
type NeighborsLoaded struct {
	NegX, PosX, NegZ, PosZ bool
}

// All reports whether every lateral neighbor is resident.
func (n NeighborsLoaded) All() bool {
	return n.NegX && n.PosX && n.NegZ && n.PosZ
}

// Has reports presence for the neighbor across a lateral face.
func (n NeighborsLoaded) Has(f Face) bool {
	switch f {
	case FaceNegX:
		return n.NegX
	case FacePosX:
		return n.PosX
	case FaceNegZ:
		return n.NegZ
	case FacePosZ:
		return n.PosZ
	}
	return true
}

// Set updates presence for the neighbor across a lateral face.
func (n *NeighborsLoaded) Set(f Face, v bool) {
	switch f {
	case FaceNegX:
		n.NegX = v
	case FacePosX:
		n.PosX = v
	case FaceNegZ:
		n.NegZ = v
	case FacePosZ:
		n.PosZ = v
	}
}

// ChunkBuf is an immutable-by-convention copy of one chunk plus a one-cell
// halo on the horizontal axes. Local x runs over [-1, X] and z over [-1, Z];
// y outside [0, Y) is always air since chunks are full height.
type ChunkBuf struct {
	Coord     ChunkCoord
	Size      Size
	Neighbors NeighborsLoaded
	blocks    []Block
}

// NewChunkBuf allocates an all-air buffer.
func NewChunkBuf(coord ChunkCoord, size Size) *ChunkBuf {
	return &ChunkBuf{
		Coord:  coord,
		Size:   size,
		blocks: make([]Block, (size.X+2)*size.Y*(size.Z+2)),
	}
}

func (b *ChunkBuf) index(x, y, z int) int {
	return (y*(b.Size.Z+2)+(z+1))*(b.Size.X+2) + (x + 1)
}

func (b *ChunkBuf) contains(x, y, z int) bool {
	return x >= -1 && x <= b.Size.X && z >= -1 && z <= b.Size.Z && y >= 0 && y < b.Size.Y
}

// At returns the voxel at local coordinates, halo included.
func (b *ChunkBuf) At(x, y, z int) Block {
	if !b.contains(x, y, z) {
		return Air
	}
	return b.blocks[b.index(x, y, z)]
}

// Set writes a voxel at local coordinates, halo included. Writes outside the
// halo are ignored.
func (b *ChunkBuf) Set(x, y, z int, v Block) {
	if !b.contains(x, y, z) {
		return
	}
	b.blocks[b.index(x, y, z)] = v
}

// Interior reports whether the local coordinate is owned by this chunk.
func (b *ChunkBuf) Interior(x, y, z int) bool {
	return x >= 0 && x < b.Size.X && z >= 0 && z < b.Size.Z && y >= 0 && y < b.Size.Y
}

// Origin returns the world coordinates of local (0, 0, 0).
func (b *ChunkBuf) Origin() (x, z int) {
	return b.Coord.X * b.Size.X, b.Coord.Z * b.Size.Z
}

// CopyChunk copies a chunk's voxels into the interior.
func (b *ChunkBuf) CopyChunk(c *Chunk) {
	for y := 0; y < b.Size.Y; y++ {
		for z := 0; z < b.Size.Z; z++ {
			for x := 0; x < b.Size.X; x++ {
				b.blocks[b.index(x, y, z)] = c.Get(x, y, z)
			}
		}
	}
}
