package meshing

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"chunkmesh/internal/registry"
	"chunkmesh/internal/world"
)

// MeshBuild holds the triangles of one material. Every quad contributes four
// vertices and six indices.
type MeshBuild struct {
	Positions []float32 // xyz
	Normals   []float32 // xyz
	UVs       []float32 // uv, world units so textures tile per voxel
	Colors    []uint8   // rgba
	Indices   []uint32
}

// AddQuad appends a quad. Corners are given in order around the quad; the
// triangle winding is chosen so it faces along n.
func (m *MeshBuild) AddQuad(corners [4]mgl32.Vec3, n mgl32.Vec3, uvs [4]mgl32.Vec2, rgba [4]uint8) {
	base := uint32(len(m.Positions) / 3)
	for i, c := range corners {
		m.Positions = append(m.Positions, c.X(), c.Y(), c.Z())
		m.Normals = append(m.Normals, n.X(), n.Y(), n.Z())
		m.UVs = append(m.UVs, uvs[i].X(), uvs[i].Y())
		m.Colors = append(m.Colors, rgba[0], rgba[1], rgba[2], rgba[3])
	}
	if corners[1].Sub(corners[0]).Cross(corners[2].Sub(corners[0])).Dot(n) >= 0 {
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	} else {
		m.Indices = append(m.Indices, base, base+2, base+1, base, base+3, base+2)
	}
}

// AddFaceRect appends the rectangle origin + [0,1]·du + [0,1]·dv facing f.
func (m *MeshBuild) AddFaceRect(f world.Face, origin, du, dv mgl32.Vec3, rgba [4]uint8) {
	w, h := du.Len(), dv.Len()
	m.AddQuad(
		[4]mgl32.Vec3{origin, origin.Add(du), origin.Add(du).Add(dv), origin.Add(dv)},
		f.Normal(),
		[4]mgl32.Vec2{{0, 0}, {w, 0}, {w, h}, {0, h}},
		rgba,
	)
}

// QuadCount returns the number of quads.
func (m *MeshBuild) QuadCount() int {
	return len(m.Indices) / 6
}

// VertexCount returns the number of vertices.
func (m *MeshBuild) VertexCount() int {
	return len(m.Positions) / 3
}

// Quad returns the corners and normal of quad i.
func (m *MeshBuild) Quad(i int) (corners [4]mgl32.Vec3, normal mgl32.Vec3) {
	for k := 0; k < 4; k++ {
		j := (4*i + k) * 3
		corners[k] = mgl32.Vec3{m.Positions[j], m.Positions[j+1], m.Positions[j+2]}
	}
	j := 4 * i * 3
	return corners, mgl32.Vec3{m.Normals[j], m.Normals[j+1], m.Normals[j+2]}
}

// AABB is an axis-aligned bounding box in world units.
type AABB struct {
	Min, Max mgl32.Vec3
}

func emptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{Min: mgl32.Vec3{inf, inf, inf}, Max: mgl32.Vec3{-inf, -inf, -inf}}
}

func (b *AABB) extend(p mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// ChunkMesh is the CPU-side mesh of one chunk, grouped by material.
type ChunkMesh struct {
	Coord world.ChunkCoord
	BBox  AABB
	Parts map[registry.MaterialID]*MeshBuild
}

// NewChunkMesh returns an empty mesh.
func NewChunkMesh(coord world.ChunkCoord) *ChunkMesh {
	return &ChunkMesh{
		Coord: coord,
		Parts: make(map[registry.MaterialID]*MeshBuild),
	}
}

// Part returns the build for a material, creating it on first use.
func (c *ChunkMesh) Part(mat registry.MaterialID) *MeshBuild {
	p, ok := c.Parts[mat]
	if !ok {
		p = &MeshBuild{}
		c.Parts[mat] = p
	}
	return p
}

// MaterialIDs lists the materials present, ascending.
func (c *ChunkMesh) MaterialIDs() []registry.MaterialID {
	ids := make([]registry.MaterialID, 0, len(c.Parts))
	for id := range c.Parts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// QuadCount sums quads over all parts.
func (c *ChunkMesh) QuadCount() int {
	n := 0
	for _, p := range c.Parts {
		n += p.QuadCount()
	}
	return n
}

// finalize drops empty parts and computes the bounding box. A mesh without
// parts keeps a zero box.
func (c *ChunkMesh) finalize() {
	c.BBox = emptyAABB()
	for id, p := range c.Parts {
		if p.QuadCount() == 0 {
			delete(c.Parts, id)
			continue
		}
		for i := 0; i+2 < len(p.Positions); i += 3 {
			c.BBox.extend(mgl32.Vec3{p.Positions[i], p.Positions[i+1], p.Positions[i+2]})
		}
	}
	if len(c.Parts) == 0 {
		c.BBox = AABB{}
	}
}

// lightRGBA turns a quantized light level into a vertex color.
func lightRGBA(l uint8) [4]uint8 {
	return [4]uint8{l, l, l, 255}
}
