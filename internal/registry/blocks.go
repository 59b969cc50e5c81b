package registry

import (
	"errors"
	"fmt"

	"chunkmesh/internal/world"
	"chunkmesh/pkg/blockmodel"
)

var (
	// ErrContradictorySeam reports seam flags that cannot both hold.
	ErrContradictorySeam = errors.New("contradictory seam flags")
	ErrUnknownShape      = errors.New("unknown shape")
	ErrDuplicateBlock    = errors.New("duplicate block")
)

// MaterialID indexes the registry's material table. Zero means no material.
type MaterialID uint16

const MaterialNone MaterialID = 0

// Material is one render material. Parts of a chunk mesh are grouped by it.
type Material struct {
	Name        string
	AlphaCutoff float32
}

// SeamPolicy tunes how a block takes part in seam seeding and face culling.
type SeamPolicy struct {
	// DontOccludeSame: an identical neighbor does not hide this block's face.
	DontOccludeSame bool
	// DontProjectFixups is accepted for content written for engines with
	// seam fix-up passes. Seam seeding does not read it: every block is
	// projected so resident seams stay closed.
	DontProjectFixups bool
}

// BlockDefinition holds the per-type flags the mesher reads. It is data only;
// behavior is selected by Shape, never by methods on the definition.
type BlockDefinition struct {
	ID          world.BlockID
	Name        string
	Shape       Shape
	Materials   [3]MaterialID // indexed by world.FaceRole
	Seam        SeamPolicy
	AlphaCutoff float32
	Fluid       bool
	Emission    float32 // block light emitted, [0,1]
	Beacon      float32 // beacon light emitted, [0,1]
	// Model is the element geometry of thin shapes.
	Model *blockmodel.Model
}

// OccludesSame reports whether identical adjacent blocks hide their shared face.
func (d *BlockDefinition) OccludesSame() bool {
	return !d.Seam.DontOccludeSame
}

// Opaque reports whether the block fully hides what is behind its full faces
// and stops skylight.
func (d *BlockDefinition) Opaque() bool {
	return (d.Shape.FullCube() || d.Shape.Micro()) && d.AlphaCutoff == 0 && !d.Fluid
}

// Registry is the read-only block and material table shared by builds.
type Registry struct {
	blocks      []*BlockDefinition // dense by ID; nil for unused IDs
	names       map[string]world.BlockID
	materials   []Material // index 0 is the "none" material
	materialIDs map[string]MaterialID
}

// New returns a registry holding only air.
func New() *Registry {
	r := &Registry{
		names:       make(map[string]world.BlockID),
		materials:   []Material{{Name: ""}},
		materialIDs: make(map[string]MaterialID),
	}
	r.blocks = append(r.blocks, &BlockDefinition{ID: world.BlockIDAir, Name: "air", Shape: ShapeNone})
	r.names["air"] = world.BlockIDAir
	return r
}

// Material interns a material name and returns its ID.
func (r *Registry) Material(name string) MaterialID {
	if name == "" {
		return MaterialNone
	}
	if id, ok := r.materialIDs[name]; ok {
		return id
	}
	id := MaterialID(len(r.materials))
	r.materials = append(r.materials, Material{Name: name})
	r.materialIDs[name] = id
	return id
}

// RegisterBlock adds a definition. A zero ID assigns the next free one.
func (r *Registry) RegisterBlock(def BlockDefinition) (world.BlockID, error) {
	if def.Name == "" {
		return 0, fmt.Errorf("block without a name")
	}
	if _, ok := r.names[def.Name]; ok {
		return 0, fmt.Errorf("%w: %s", ErrDuplicateBlock, def.Name)
	}
	if def.ID == world.BlockIDAir {
		def.ID = world.BlockID(len(r.blocks))
	}
	for int(def.ID) >= len(r.blocks) {
		r.blocks = append(r.blocks, nil)
	}
	if r.blocks[def.ID] != nil {
		return 0, fmt.Errorf("%w: id %d used by %s and %s", ErrDuplicateBlock, def.ID, r.blocks[def.ID].Name, def.Name)
	}
	if def.Shape.Thin() && def.Model == nil {
		m, _ := blockmodel.Builtin(def.Shape.String())
		def.Model = m
	}
	for _, mid := range def.Materials {
		if mid != MaterialNone && int(mid) < len(r.materials) && def.AlphaCutoff > r.materials[mid].AlphaCutoff {
			r.materials[mid].AlphaCutoff = def.AlphaCutoff
		}
	}
	d := def
	r.blocks[def.ID] = &d
	r.names[def.Name] = def.ID
	return def.ID, nil
}

// Get returns the definition for an ID, or nil when unregistered.
func (r *Registry) Get(id world.BlockID) *BlockDefinition {
	if int(id) >= len(r.blocks) {
		return nil
	}
	return r.blocks[id]
}

// Lookup finds a block ID by name.
func (r *Registry) Lookup(name string) (world.BlockID, bool) {
	id, ok := r.names[name]
	return id, ok
}

// Block returns the default-state voxel for a block name, or air.
func (r *Registry) Block(name string) world.Block {
	id, ok := r.names[name]
	if !ok {
		return world.Air
	}
	return world.Block{ID: id}
}

// MaterialInfo returns the material entry for an ID.
func (r *Registry) MaterialInfo(id MaterialID) Material {
	if int(id) >= len(r.materials) {
		return Material{}
	}
	return r.materials[id]
}

// MaterialCount returns the number of materials including "none".
func (r *Registry) MaterialCount() int {
	return len(r.materials)
}

// BlockCount returns the number of registered block IDs including air.
func (r *Registry) BlockCount() int {
	n := 0
	for _, d := range r.blocks {
		if d != nil {
			n++
		}
	}
	return n
}

// MaterialFor resolves the material shown on a face of a voxel. Axis cubes
// show their top material on both ends of their axis.
func (r *Registry) MaterialFor(b world.Block, f world.Face) MaterialID {
	d := r.Get(b.ID)
	if d == nil {
		return MaterialNone
	}
	role := f.Role()
	if d.Shape == ShapeAxisCube {
		axis := b.AxisOf()
		switch {
		case axis == world.AxisX && f.Axis() == 0,
			axis == world.AxisZ && f.Axis() == 2,
			axis == world.AxisY && f.Axis() == 1:
			role = world.RoleTop
		default:
			role = world.RoleSide
		}
	}
	return d.Materials[role]
}

// OcclusionMask returns a 6-bit mask (world.Face order) of the faces of b
// that are full opaque squares.
func (r *Registry) OcclusionMask(b world.Block) uint8 {
	d := r.Get(b.ID)
	if d == nil || !d.Opaque() {
		return 0
	}
	switch d.Shape {
	case ShapeCube, ShapeAxisCube:
		return 0x3F
	case ShapeSlab:
		if b.Top() {
			return world.FacePosY.Bit()
		}
		return world.FaceNegY.Bit()
	case ShapeStairs:
		m := world.FaceNegY.Bit()
		if b.Top() {
			m = world.FacePosY.Bit()
		}
		return m | stairBackFace(b.Facing()).Bit()
	}
	return 0
}

// stairBackFace is the lateral face covered by the stair's full-height half.
func stairBackFace(f world.Facing) world.Face {
	switch f {
	case world.FacingNorth:
		return world.FaceNegZ
	case world.FacingSouth:
		return world.FacePosZ
	case world.FacingWest:
		return world.FaceNegX
	default:
		return world.FacePosX
	}
}

// Occludes reports whether the neighbor nb, lying across face f of here,
// hides here's face f.
func (r *Registry) Occludes(here, nb world.Block, f world.Face) bool {
	if h := r.Get(here.ID); h != nil && h.Seam.DontOccludeSame && here.ID == nb.ID {
		return false
	}
	return r.OcclusionMask(nb)&f.Opposite().Bit() != 0
}
