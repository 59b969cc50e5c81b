package world

import (
	"sort"
	"sync"

	"chunkmesh/internal/profiling"
)

// ChunkStore is the coordinate-keyed set of resident chunks. Builds never hold
// references to neighbors; they take a Snapshot with a halo instead.
type ChunkStore struct {
	// Map of chunks indexed by their coordinates
	chunks   map[ChunkCoord]*Chunk
	mu       sync.RWMutex
	modCount uint64 // Increases on any chunk add/remove/edit
	size     Size
}

// NewChunkStore creates a new chunk store for chunks of the given size.
func NewChunkStore(size Size) *ChunkStore {
	if !size.Valid() {
		size = DefaultSize
	}
	return &ChunkStore{
		chunks: make(map[ChunkCoord]*Chunk),
		size:   size,
	}
}

// ChunkSize returns the dimensions of every chunk in the store.
func (cs *ChunkStore) ChunkSize() Size {
	return cs.size
}

// GetChunk returns the chunk at the specified chunk coordinates.
// If the chunk doesn't exist and create is true, an empty one is added.
func (cs *ChunkStore) GetChunk(coord ChunkCoord, create bool) *Chunk {
	cs.mu.RLock()
	chunk, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	if !exists && create {
		cs.mu.Lock()
		// Double-check locking: another goroutine might have created it while we were waiting for the lock
		if existing, ok := cs.chunks[coord]; ok {
			cs.mu.Unlock()
			return existing
		}
		chunk = NewChunk(coord.X, coord.Z, cs.size)
		cs.chunks[coord] = chunk
		cs.modCount++
		cs.mu.Unlock()
	}
	return chunk
}

// ChunkCoordAt returns the chunk holding world column (x, z) and the local offsets.
func (cs *ChunkStore) ChunkCoordAt(x, z int) (coord ChunkCoord, lx, lz int) {
	coord = ChunkCoord{X: floorDiv(x, cs.size.X), Z: floorDiv(z, cs.size.Z)}
	return coord, mod(x, cs.size.X), mod(z, cs.size.Z)
}

// Get returns the voxel at world coordinates; missing chunks read as air.
func (cs *ChunkStore) Get(x, y, z int) Block {
	coord, lx, lz := cs.ChunkCoordAt(x, z)
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	chunk, ok := cs.chunks[coord]
	if !ok {
		return Air
	}
	return chunk.Get(lx, y, lz)
}

// Set writes a voxel at world coordinates, creating the chunk if needed. It
// returns every resident chunk whose mesh depends on the cell: the owner plus
// neighbors whose halo covers it. Nothing is returned if the value is unchanged.
func (cs *ChunkStore) Set(x, y, z int, b Block) []ChunkCoord {
	coord, lx, lz := cs.ChunkCoordAt(x, z)
	chunk := cs.GetChunk(coord, true)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	if !chunk.Set(lx, y, lz, b) {
		return nil
	}
	cs.modCount++

	touched := []ChunkCoord{coord}
	mark := func(f Face) {
		nc := coord.Neighbor(f)
		if nb, ok := cs.chunks[nc]; ok {
			nb.dirty = true
			touched = append(touched, nc)
		}
	}
	// Mark neighbor chunks dirty if we touched a border block
	if lx == 0 {
		mark(FaceNegX)
	} else if lx == cs.size.X-1 {
		mark(FacePosX)
	}
	if lz == 0 {
		mark(FaceNegZ)
	} else if lz == cs.size.Z-1 {
		mark(FacePosZ)
	}
	return touched
}

// HasChunk checks if a chunk exists without creating it.
func (cs *ChunkStore) HasChunk(coord ChunkCoord) bool {
	cs.mu.RLock()
	_, exists := cs.chunks[coord]
	cs.mu.RUnlock()
	return exists
}

// AddChunk adds a pre-generated chunk to the store. It reports false if a
// chunk already occupies the coordinate or the chunk has the wrong size.
func (cs *ChunkStore) AddChunk(chunk *Chunk) bool {
	if chunk.Size() != cs.size {
		return false
	}
	coord := chunk.Coord()
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[coord]; ok {
		return false
	}
	cs.chunks[coord] = chunk
	cs.modCount++
	return true
}

// RemoveChunk drops a chunk. It reports whether one was present.
func (cs *ChunkStore) RemoveChunk(coord ChunkCoord) bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if _, ok := cs.chunks[coord]; !ok {
		return false
	}
	delete(cs.chunks, coord)
	cs.modCount++
	return true
}

// Coords returns the resident chunk coordinates in (Z, X) order.
func (cs *ChunkStore) Coords() []ChunkCoord {
	cs.mu.RLock()
	out := make([]ChunkCoord, 0, len(cs.chunks))
	for c := range cs.chunks {
		out = append(out, c)
	}
	cs.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Z != out[j].Z {
			return out[i].Z < out[j].Z
		}
		return out[i].X < out[j].X
	})
	return out
}

// Neighbors reports which lateral neighbors of coord are resident.
func (cs *ChunkStore) Neighbors(coord ChunkCoord) NeighborsLoaded {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.neighborsLocked(coord)
}

func (cs *ChunkStore) neighborsLocked(coord ChunkCoord) NeighborsLoaded {
	var n NeighborsLoaded
	for _, f := range SideFaces {
		_, ok := cs.chunks[coord.Neighbor(f)]
		n.Set(f, ok)
	}
	return n
}

// Snapshot copies a chunk and its one-cell halo under a single read lock so
// the result is consistent for the duration of a build.
func (cs *ChunkStore) Snapshot(coord ChunkCoord) (*ChunkBuf, bool) {
	defer profiling.Track("world.Snapshot")()
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	chunk, ok := cs.chunks[coord]
	if !ok {
		return nil, false
	}
	sx, sy, sz := cs.size.X, cs.size.Y, cs.size.Z
	buf := NewChunkBuf(coord, cs.size)
	buf.Neighbors = cs.neighborsLocked(coord)
	buf.CopyChunk(chunk)

	// halo: every local (x, z) in [-1, S] outside the interior
	for z := -1; z <= sz; z++ {
		for x := -1; x <= sx; x++ {
			if x >= 0 && x < sx && z >= 0 && z < sz {
				continue
			}
			nc := ChunkCoord{X: coord.X + floorDiv(x, sx), Z: coord.Z + floorDiv(z, sz)}
			nb, ok := cs.chunks[nc]
			if !ok {
				continue
			}
			lx, lz := mod(x, sx), mod(z, sz)
			for y := 0; y < sy; y++ {
				buf.Set(x, y, z, nb.Get(lx, y, lz))
			}
		}
	}
	return buf, true
}

// GetModCount returns the current modification count.
func (cs *ChunkStore) GetModCount() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.modCount
}

// EvictFarChunks removes chunks outside the given radius (in chunks) around
// (cx, cz) and returns their coordinates.
func (cs *ChunkStore) EvictFarChunks(cx, cz, radius int) []ChunkCoord {
	defer profiling.Track("world.EvictFarChunks")()
	var removed []ChunkCoord
	cs.mu.Lock()
	for coord := range cs.chunks {
		dx := coord.X - cx
		dz := coord.Z - cz
		if dx*dx+dz*dz > radius*radius {
			delete(cs.chunks, coord)
			cs.modCount++
			removed = append(removed, coord)
		}
	}
	cs.mu.Unlock()
	return removed
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
