package meshing

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"chunkmesh/internal/lighting"
	"chunkmesh/internal/profiling"
	"chunkmesh/internal/registry"
	"chunkmesh/internal/world"
)

// DefaultScale is the default number of micro cells per voxel edge.
const DefaultScale = 2

var (
	ErrUnsupportedScale = errors.New("unsupported micro scale")
	ErrSizeMismatch     = errors.New("light field does not match chunk")
)

// Options configures a Mesher.
type Options struct {
	Scale int
	Light lighting.Params
	// Logger receives one perf line per build when set.
	Logger *log.Logger
}

// DefaultOptions returns scale 2 with the default light params.
func DefaultOptions() Options {
	return Options{Scale: DefaultScale, Light: lighting.DefaultParams()}
}

// Mesher turns chunk snapshots into meshes. It holds no per-build state and
// is safe for concurrent use.
type Mesher struct {
	reg  *registry.Registry
	opts Options
}

// NewMesher validates opts and returns a mesher over reg.
func NewMesher(reg *registry.Registry, opts Options) (*Mesher, error) {
	if reg == nil {
		return nil, errors.New("mesher needs a registry")
	}
	if opts.Scale != 2 && opts.Scale != 4 {
		return nil, fmt.Errorf("%w: %d (want 2 or 4)", ErrUnsupportedScale, opts.Scale)
	}
	if err := opts.Light.Validate(); err != nil {
		return nil, err
	}
	return &Mesher{reg: reg, opts: opts}, nil
}

// Registry returns the block registry the mesher reads.
func (m *Mesher) Registry() *registry.Registry {
	return m.reg
}

// Stats reports stage timings and output sizes of one build.
type Stats struct {
	Scan, Seed, Emit, Thin, Total time.Duration
	Quads                         int
	ThinQuads                     int
	Layers                        int
}

// BuildResult is the output of one chunk build.
type BuildResult struct {
	Mesh *ChunkMesh
	// Borders carries the light field's edges for neighbor rings; nil when
	// the build had no field.
	Borders *lighting.Borders
	// Awaiting lists lateral neighbors that were not resident. The chunk
	// should be rebuilt when any of them arrives.
	Awaiting []world.ChunkCoord
	Stats    Stats
}

// layer selects which parity accumulator a block type feeds.
type layer uint8

const (
	layerOpaque layer = iota
	layerTranslucent
	layerCount
)

// layerOf reports the accumulation layer of a block, false for blocks that
// never enter the parity grid.
func layerOf(d *registry.BlockDefinition) (layer, bool) {
	if d == nil || !(d.Shape.FullCube() || d.Shape.Micro()) {
		return 0, false
	}
	if d.Opaque() {
		return layerOpaque, true
	}
	return layerTranslucent, true
}

// builder carries the state of a single build.
type builder struct {
	m     *Mesher
	reg   *registry.Registry
	buf   *world.ChunkBuf
	light *lighting.Field
	s     int
	ox    int
	oz    int
	mesh  *ChunkMesh
	stats *Stats
	merge merger
}

// Build meshes one chunk snapshot. light may be nil, in which case every
// face gets the visual minimum. The result depends only on the inputs.
func (m *Mesher) Build(buf *world.ChunkBuf, light *lighting.Field) (*BuildResult, error) {
	if buf == nil {
		return nil, errors.New("nil chunk buffer")
	}
	if !buf.Size.Valid() {
		return nil, fmt.Errorf("invalid chunk size %+v", buf.Size)
	}
	if light != nil && light.Size != buf.Size {
		return nil, fmt.Errorf("%w: field %+v, chunk %+v", ErrSizeMismatch, light.Size, buf.Size)
	}

	res := &BuildResult{Mesh: NewChunkMesh(buf.Coord)}
	done := profiling.Measure("meshing.Build", &res.Stats.Total)

	ox, oz := buf.Origin()
	b := &builder{
		m:     m,
		reg:   m.reg,
		buf:   buf,
		light: light,
		s:     m.opts.Scale,
		ox:    ox,
		oz:    oz,
		mesh:  res.Mesh,
		stats: &res.Stats,
	}

	present := b.layersPresent()
	grids := make([]*faceGrids, layerCount)

	stop := profiling.Measure("meshing.Scan", &res.Stats.Scan)
	for l := layer(0); l < layerCount; l++ {
		if !present[l] {
			continue
		}
		grids[l] = newFaceGrids(buf.Size, b.s)
		b.scan(l, grids[l])
		res.Stats.Layers++
	}
	stop()

	stop = profiling.Measure("meshing.Seed", &res.Stats.Seed)
	for l, g := range grids {
		if g != nil {
			b.seed(layer(l), g)
		}
	}
	stop()

	stop = profiling.Measure("meshing.Emit", &res.Stats.Emit)
	for _, g := range grids {
		if g != nil {
			b.emit(g)
		}
	}
	stop()

	stop = profiling.Measure("meshing.Thin", &res.Stats.Thin)
	b.emitThin()
	stop()

	res.Mesh.finalize()
	if light != nil {
		res.Borders = lighting.BordersFromField(buf.Coord, light)
	}
	for _, f := range world.SideFaces {
		if !buf.Neighbors.Has(f) {
			res.Awaiting = append(res.Awaiting, buf.Coord.Neighbor(f))
		}
	}
	res.Stats.Quads = res.Mesh.QuadCount()
	done()

	if m.opts.Logger != nil {
		st := res.Stats
		m.opts.Logger.Printf("mesh (%d,%d): scan=%sms seed=%sms emit=%sms thin=%sms total=%sms quads=%d",
			buf.Coord.X, buf.Coord.Z,
			profiling.FormatMs(st.Scan), profiling.FormatMs(st.Seed), profiling.FormatMs(st.Emit),
			profiling.FormatMs(st.Thin), profiling.FormatMs(st.Total), st.Quads)
	}
	return res, nil
}

// layersPresent reports which layers the chunk or its seeding halo use.
func (b *builder) layersPresent() [layerCount]bool {
	var out [layerCount]bool
	size := b.buf.Size
	for y := 0; y < size.Y; y++ {
		for z := -1; z < size.Z; z++ {
			for x := -1; x < size.X; x++ {
				if x < 0 && z < 0 {
					continue
				}
				if l, ok := layerOf(b.reg.Get(b.buf.At(x, y, z).ID)); ok {
					out[l] = true
				}
			}
		}
	}
	return out
}

// scan toggles every box face of every voxel in the layer, in z, y, x order.
func (b *builder) scan(l layer, g *faceGrids) {
	size := b.buf.Size
	s := b.s
	for z := 0; z < size.Z; z++ {
		for y := 0; y < size.Y; y++ {
			for x := 0; x < size.X; x++ {
				blk := b.buf.At(x, y, z)
				d := b.reg.Get(blk.ID)
				if ll, ok := layerOf(d); !ok || ll != l {
					continue
				}
				mask, ok := OccupancyMask(b.reg, blk, s)
				if !ok {
					continue
				}
				var mats [6]registry.MaterialID
				for _, f := range world.AllFaces {
					mats[f] = b.reg.MaterialFor(blk, f)
				}
				kept := b.keptFaces(d, blk, x, y, z)
				for _, box := range BoxesForMask(s, mask) {
					b.toggleBox(g, x*s, y*s, z*s, box, &mats, kept)
				}
			}
		}
	}
}

// keptFaces returns the faces of a full cube that touch an identical block
// when the type does not occlude its own kind. Halo voxels count, so the
// result is the same on both sides of a seam.
func (b *builder) keptFaces(d *registry.BlockDefinition, blk world.Block, x, y, z int) uint8 {
	if !d.Seam.DontOccludeSame || !d.Shape.FullCube() {
		return 0
	}
	var kept uint8
	for _, f := range world.AllFaces {
		dx, dy, dz := f.Delta()
		if b.buf.At(x+dx, y+dy, z+dz).ID == blk.ID {
			kept |= f.Bit()
		}
	}
	return kept
}

// toggleBox toggles the six faces of a micro box whose voxel starts at micro
// coordinates (bx, by, bz). Faces in kept are stored outside the parity grid.
func (b *builder) toggleBox(g *faceGrids, bx, by, bz int, box MicroBox, mats *[6]registry.MaterialID, kept uint8) {
	x0, y0, z0 := bx+int(box.X0), by+int(box.Y0), bz+int(box.Z0)
	x1, y1, z1 := bx+int(box.X1), by+int(box.Y1), bz+int(box.Z1)
	for _, f := range world.AllFaces {
		// the micro cells of the box that touch face f
		cx0, cy0, cz0, cx1, cy1, cz1 := x0, y0, z0, x1, y1, z1
		switch f {
		case world.FacePosX:
			cx0 = x1 - 1
		case world.FaceNegX:
			cx1 = x0 + 1
		case world.FacePosY:
			cy0 = y1 - 1
		case world.FaceNegY:
			cy1 = y0 + 1
		case world.FacePosZ:
			cz0 = z1 - 1
		case world.FaceNegZ:
			cz1 = z0 + 1
		}
		for mz := cz0; mz < cz1; mz++ {
			for my := cy0; my < cy1; my++ {
				for mx := cx0; mx < cx1; mx++ {
					fam, plane, u, v := planeOf(f, mx, my, mz)
					if kept&f.Bit() != 0 {
						b.keepCell(g, fam, plane, u, v, f, mats[f])
						continue
					}
					b.toggleCell(g, fam, plane, u, v, f, mats[f])
				}
			}
		}
	}
}

// toggleCell flips one face cell, sampling light at the cell's center.
func (b *builder) toggleCell(g *faceGrids, fam family, plane, u, v int, f world.Face, mat registry.MaterialID) {
	light := lighting.Quantize(b.light.SampleFace(b.cellCenter(fam, plane, u, v), f, b.m.opts.Light))
	g.grid(fam).toggle(plane, u, v, MakeFaceKey(f.Positive(), mat, light))
}

// keepCell stores one face cell in the non-cancelling grid of its facing.
func (b *builder) keepCell(g *faceGrids, fam family, plane, u, v int, f world.Face, mat registry.MaterialID) {
	light := lighting.Quantize(b.light.SampleFace(b.cellCenter(fam, plane, u, v), f, b.m.opts.Light))
	g.keep(f.Positive()).grid(fam).set(plane, u, v, MakeFaceKey(f.Positive(), mat, light))
}

// cellCenter returns the world position of the center of a face cell.
func (b *builder) cellCenter(fam family, plane, u, v int) mgl32.Vec3 {
	s := float32(b.s)
	at := func(i int) float32 { return (float32(i) + 0.5) / s }
	p := float32(plane) / s
	switch fam {
	case familyX:
		return mgl32.Vec3{float32(b.ox) + p, at(v), float32(b.oz) + at(u)}
	case familyY:
		return mgl32.Vec3{float32(b.ox) + at(u), p, float32(b.oz) + at(v)}
	}
	return mgl32.Vec3{float32(b.ox) + at(u), at(v), float32(b.oz) + p}
}

// emit merges every owned plane, kept faces included, and appends the quads.
func (b *builder) emit(g *faceGrids) {
	for _, k := range g.kept {
		if k != nil {
			b.emit(k)
		}
	}
	var rects []Rect
	for _, fam := range []family{familyX, familyY, familyZ} {
		grid := g.grid(fam)
		for p := 0; p < grid.N; p++ {
			if !b.ownsPlane(fam, p, grid.N) {
				continue
			}
			rects = b.merge.merge(grid.plane(p), rects[:0])
			for _, r := range rects {
				b.emitRect(fam, p, r)
			}
		}
	}
}

// emitRect turns a merged rectangle into a quad in world space.
func (b *builder) emitRect(fam family, plane int, r Rect) {
	s := float32(b.s)
	p := float32(plane) / s
	u0, v0 := float32(r.U)/s, float32(r.V)/s
	du, dv := float32(r.W)/s, float32(r.H)/s
	ox, oz := float32(b.ox), float32(b.oz)

	var face world.Face
	var origin, uVec, vVec mgl32.Vec3
	switch fam {
	case familyX:
		face = world.FaceNegX
		origin = mgl32.Vec3{ox + p, v0, oz + u0}
		uVec, vVec = mgl32.Vec3{0, 0, du}, mgl32.Vec3{0, dv, 0}
	case familyY:
		face = world.FaceNegY
		origin = mgl32.Vec3{ox + u0, p, oz + v0}
		uVec, vVec = mgl32.Vec3{du, 0, 0}, mgl32.Vec3{0, 0, dv}
	default:
		face = world.FaceNegZ
		origin = mgl32.Vec3{ox + u0, v0, oz + p}
		uVec, vVec = mgl32.Vec3{du, 0, 0}, mgl32.Vec3{0, dv, 0}
	}
	if r.Key.Positive() {
		face = face.Opposite()
	}
	b.mesh.Part(r.Key.Material()).AddFaceRect(face, origin, uVec, vVec, lightRGBA(r.Key.Light()))
}
