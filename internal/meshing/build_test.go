package meshing

import (
	"bytes"
	"errors"
	"log"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"chunkmesh/internal/lighting"
	"chunkmesh/internal/world"
)

var testSize = world.Size{X: 4, Y: 8, Z: 4}

func fillRandom(store *world.ChunkStore, coord world.ChunkCoord, rng *rand.Rand, density float64) {
	c := store.GetChunk(coord, true)
	size := store.ChunkSize()
	for y := 0; y < size.Y; y++ {
		for z := 0; z < size.Z; z++ {
			for x := 0; x < size.X; x++ {
				c.Set(x, y, z, randomSolids(rng, density))
			}
		}
	}
}

func TestNewMesherRejectsScale(t *testing.T) {
	for _, s := range []int{0, 1, 3, 8} {
		opts := DefaultOptions()
		opts.Scale = s
		if _, err := NewMesher(testReg, opts); !errors.Is(err, ErrUnsupportedScale) {
			t.Errorf("scale %d: got %v, want ErrUnsupportedScale", s, err)
		}
	}
	opts := DefaultOptions()
	opts.Light.VisualMin = 0
	if _, err := NewMesher(testReg, opts); !errors.Is(err, lighting.ErrInvalidParams) {
		t.Errorf("zero visual minimum: got %v, want ErrInvalidParams", err)
	}
}

func TestParityMatchesBruteForce(t *testing.T) {
	for _, s := range []int{2, 4} {
		for seed := int64(1); seed <= 5; seed++ {
			rng := rand.New(rand.NewSource(seed))
			store := world.NewChunkStore(testSize)
			fillRandom(store, world.ChunkCoord{}, rng, 0.55)
			buf, _ := store.Snapshot(world.ChunkCoord{})

			res := mustBuild(t, newTestMesher(t, s), buf)
			got := rasterize(t, res.Mesh, s)
			want := expectedFaces(volumeFromStore(store, s), s, 0, testSize.X, testSize.Y, 0, testSize.Z)
			compareFaces(t, got, want)
		}
	}
}

func TestSeamsEmittedExactlyOnce(t *testing.T) {
	const s = 2
	rng := rand.New(rand.NewSource(42))
	store := world.NewChunkStore(testSize)
	coords := []world.ChunkCoord{{X: 0, Z: 0}, {X: 1, Z: 0}, {X: 0, Z: 1}, {X: 1, Z: 1}}
	for _, c := range coords {
		fillRandom(store, c, rng, 0.5)
	}

	m := newTestMesher(t, s)
	got := make(map[faceCell]int)
	for _, c := range coords {
		buf, _ := store.Snapshot(c)
		res := mustBuild(t, m, buf)
		for cell, n := range rasterize(t, res.Mesh, s) {
			got[cell] += n
		}
	}
	want := expectedFaces(volumeFromStore(store, s), s, 0, 2*testSize.X, testSize.Y, 0, 2*testSize.Z)
	compareFaces(t, got, want)
}

func TestPositiveSeamBelongsToNeighbor(t *testing.T) {
	store := world.NewChunkStore(testSize)
	stone := testReg.Block("stone")
	store.GetChunk(world.ChunkCoord{}, true).Set(testSize.X-1, 0, 0, stone)
	buf, _ := store.Snapshot(world.ChunkCoord{})
	m := newTestMesher(t, 2)

	alone := rasterize(t, mustBuild(t, m, buf).Mesh, 2)
	seam := faceCell{axis: 0, plane: 2 * testSize.X, u: 0, v: 0, positive: true}
	if alone[seam] != 1 {
		t.Fatalf("without a +X neighbor the chunk closes its seam: got %d, want 1", alone[seam])
	}

	store.GetChunk(world.ChunkCoord{X: 1}, true)
	buf, _ = store.Snapshot(world.ChunkCoord{})
	owner := mustBuild(t, m, buf)
	if n := rasterize(t, owner.Mesh, 2)[seam]; n != 0 {
		t.Fatalf("with a +X neighbor the seam is not ours: got %d, want 0", n)
	}
	nbuf, _ := store.Snapshot(world.ChunkCoord{X: 1})
	if n := rasterize(t, mustBuild(t, m, nbuf).Mesh, 2)[seam]; n != 1 {
		t.Fatalf("neighbor should emit the seeded face: got %d, want 1", n)
	}
}

func TestHomogeneousChunkSixQuads(t *testing.T) {
	buf := world.NewChunkBuf(world.ChunkCoord{X: 3, Z: -2}, world.DefaultSize)
	stone := testReg.Block("stone")
	for y := 0; y < world.DefaultSize.Y; y++ {
		for z := 0; z < world.DefaultSize.Z; z++ {
			for x := 0; x < world.DefaultSize.X; x++ {
				buf.Set(x, y, z, stone)
			}
		}
	}
	for _, s := range []int{2, 4} {
		res := mustBuild(t, newTestMesher(t, s), buf)
		if got := res.Mesh.QuadCount(); got != 6 {
			t.Fatalf("scale %d: got %d quads, want 6", s, got)
		}
		if len(res.Awaiting) != 4 {
			t.Errorf("awaiting: got %v, want all four neighbors", res.Awaiting)
		}
		bb := res.Mesh.BBox
		if bb.Min.X() != 48 || bb.Max.X() != 64 || bb.Min.Z() != -32 || bb.Max.Z() != -16 || bb.Min.Y() != 0 || bb.Max.Y() != 128 {
			t.Errorf("bbox: got %v..%v", bb.Min, bb.Max)
		}
	}

	// surrounded by stone, only the top and bottom remain
	for z := -1; z <= world.DefaultSize.Z; z++ {
		for x := -1; x <= world.DefaultSize.X; x++ {
			if buf.Interior(x, 0, z) {
				continue
			}
			for y := 0; y < world.DefaultSize.Y; y++ {
				buf.Set(x, y, z, stone)
			}
		}
	}
	buf.Neighbors = world.NeighborsLoaded{NegX: true, PosX: true, NegZ: true, PosZ: true}
	res := mustBuild(t, newTestMesher(t, 2), buf)
	if got := res.Mesh.QuadCount(); got != 2 {
		t.Fatalf("enclosed chunk: got %d quads, want 2", got)
	}
	if len(res.Awaiting) != 0 {
		t.Errorf("enclosed chunk awaits %v", res.Awaiting)
	}
}

func TestEmptyChunk(t *testing.T) {
	buf := world.NewChunkBuf(world.ChunkCoord{}, testSize)
	res := mustBuild(t, newTestMesher(t, 2), buf)
	if res.Mesh.QuadCount() != 0 || len(res.Mesh.Parts) != 0 {
		t.Fatalf("empty chunk: got %d quads in %d parts", res.Mesh.QuadCount(), len(res.Mesh.Parts))
	}
	if res.Mesh.BBox != (AABB{}) {
		t.Errorf("empty chunk bbox: got %+v", res.Mesh.BBox)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	store := world.NewChunkStore(testSize)
	rng := rand.New(rand.NewSource(3))
	fillRandom(store, world.ChunkCoord{}, rng, 0.4)
	fillRandom(store, world.ChunkCoord{X: -1}, rng, 0.4)
	buf, _ := store.Snapshot(world.ChunkCoord{})
	m := newTestMesher(t, 2)
	light := lighting.Compute(buf, testReg)
	a, err := m.Build(buf, light)
	if err != nil {
		t.Fatal(err)
	}
	b, err := m.Build(buf, light)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a.Mesh, b.Mesh) {
		t.Fatalf("two builds of the same snapshot differ")
	}
}

func TestLightStaysInRange(t *testing.T) {
	store := world.NewChunkStore(world.DefaultSize)
	gen := world.NewGenerator(9, testReg.DemoPalette())
	c := world.NewChunk(0, 0, world.DefaultSize)
	gen.PopulateChunk(c)
	store.AddChunk(c)
	buf, _ := store.Snapshot(world.ChunkCoord{})

	m := newTestMesher(t, 2)
	res, err := m.Build(buf, lighting.Compute(buf, testReg))
	if err != nil {
		t.Fatal(err)
	}
	floor := lighting.Quantize(lighting.DefaultParams().VisualMin)
	for id, p := range res.Mesh.Parts {
		for i := 0; i < len(p.Colors); i += 4 {
			if p.Colors[i] < floor {
				t.Fatalf("material %d vertex %d: light %d below the visual minimum %d", id, i/4, p.Colors[i], floor)
			}
			if p.Colors[i+3] != 255 {
				t.Fatalf("alpha should be opaque, got %d", p.Colors[i+3])
			}
		}
	}
	if res.Borders == nil || res.Borders.NY != world.DefaultSize.Y {
		t.Errorf("borders missing from a lit build")
	}
}

func TestLightFieldMustMatch(t *testing.T) {
	buf := world.NewChunkBuf(world.ChunkCoord{}, testSize)
	field := lighting.NewField(world.ChunkCoord{}, world.DefaultSize, 1)
	if _, err := newTestMesher(t, 2).Build(buf, field); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("got %v, want ErrSizeMismatch", err)
	}
}

func TestTranslucentLayerKeepsOpaqueFaces(t *testing.T) {
	buf := world.NewChunkBuf(world.ChunkCoord{}, testSize)
	buf.Set(1, 0, 1, testReg.Block("stone"))
	buf.Set(1, 1, 1, testReg.Block("glass"))
	buf.Set(2, 1, 1, testReg.Block("glass"))
	res := mustBuild(t, newTestMesher(t, 2), buf)

	stoneMat := testReg.MaterialFor(testReg.Block("stone"), world.FacePosY)
	glassMat := testReg.MaterialFor(testReg.Block("glass"), world.FacePosY)
	if got := res.Mesh.Parts[stoneMat].QuadCount(); got != 6 {
		t.Errorf("stone under glass: got %d quads, want 6", got)
	}
	// two glass blocks merge into one 2x1x1 box
	if got := res.Mesh.Parts[glassMat].QuadCount(); got != 6 {
		t.Errorf("glass pair: got %d quads, want 6", got)
	}
	if res.Stats.Layers != 2 {
		t.Errorf("layers: got %d, want 2", res.Stats.Layers)
	}
}

// seamRegistry holds plain cubes, a cube that shows faces against its own
// kind and one flagged for seam fix-ups.
const seamRegistry = `
blocks:
  - name: stone
    shape: cube
  - name: clear
    shape: cube
    alpha_cutoff: 0.5
  - name: ice
    shape: cube
    alpha_cutoff: 0.5
    seam: { dont_occlude_same: true }
  - name: crate
    shape: cube
    seam: { dont_project_fixups: true }
`

// sharedPlaneCells places left at world x and right at x+1 with both chunks
// of the pair resident, builds both, and returns the +X and -X face cells on
// the plane between the two voxels, counting every emission.
func sharedPlaneCells(t *testing.T, m *Mesher, left, right world.Block, x int) (pos, neg int) {
	t.Helper()
	const s = DefaultScale
	store := world.NewChunkStore(testSize)
	coords := []world.ChunkCoord{{}, {X: 1}}
	for _, c := range coords {
		store.GetChunk(c, true)
	}
	store.Set(x, 2, 1, left)
	store.Set(x+1, 2, 1, right)
	for _, c := range coords {
		buf, _ := store.Snapshot(c)
		for cell, n := range rasterize(t, mustBuild(t, m, buf).Mesh, s) {
			if cell.axis != 0 || cell.plane != (x+1)*s {
				continue
			}
			if cell.positive {
				pos += n
			} else {
				neg += n
			}
		}
	}
	return pos, neg
}

func TestSeamPolicyFlags(t *testing.T) {
	reg := testRegistry(t, seamRegistry)
	m, err := NewMesher(reg, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	const face = DefaultScale * DefaultScale
	cases := []struct {
		name        string
		left, right string
		pos, neg    int
	}{
		{"stone against stone", "stone", "stone", 0, 0},
		{"stone against air", "stone", "", face, 0},
		{"air against stone", "", "stone", 0, face},
		{"clear against clear", "clear", "clear", 0, 0},
		{"ice against ice", "ice", "ice", face, face},
		{"ice against clear", "ice", "clear", 0, 0},
		{"crate against air", "crate", "", face, 0},
		{"air against crate", "", "crate", 0, face},
		{"crate against stone", "crate", "stone", 0, 0},
	}
	block := func(name string) world.Block {
		if name == "" {
			return world.Air
		}
		return reg.Block(name)
	}
	for _, c := range cases {
		// x=1 keeps the pair inside chunk 0, x=3 puts it across the seam
		for _, x := range []int{1, testSize.X - 1} {
			pos, neg := sharedPlaneCells(t, m, block(c.left), block(c.right), x)
			if pos != c.pos || neg != c.neg {
				t.Errorf("%s at x=%d: got +X %d -X %d, want %d and %d", c.name, x, pos, neg, c.pos, c.neg)
			}
		}
	}
}

func TestSelfShowingCubesMatchAcrossSeam(t *testing.T) {
	reg := testRegistry(t, seamRegistry)
	m, err := NewMesher(reg, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	ice := reg.Block("ice")
	inPos, inNeg := sharedPlaneCells(t, m, ice, ice, 1)
	seamPos, seamNeg := sharedPlaneCells(t, m, ice, ice, testSize.X-1)
	if inPos != seamPos || inNeg != seamNeg {
		t.Errorf("inside the chunk +X %d -X %d, across the seam +X %d -X %d", inPos, inNeg, seamPos, seamNeg)
	}
}

func TestPerfLogLine(t *testing.T) {
	var out bytes.Buffer
	opts := DefaultOptions()
	opts.Logger = log.New(&out, "", 0)
	m, err := NewMesher(testReg, opts)
	if err != nil {
		t.Fatal(err)
	}
	buf := world.NewChunkBuf(world.ChunkCoord{X: 2, Z: 5}, testSize)
	buf.Set(0, 0, 0, testReg.Block("stone"))
	if _, err := m.Build(buf, nil); err != nil {
		t.Fatal(err)
	}
	line := out.String()
	for _, want := range []string{"mesh (2,5):", "scan=", "seed=", "emit=", "thin=", "total=", "quads=6"} {
		if !strings.Contains(line, want) {
			t.Errorf("perf line %q is missing %q", line, want)
		}
	}
}

func BenchmarkBuildGeneratedChunk(b *testing.B) {
	store := world.NewChunkStore(world.DefaultSize)
	gen := world.NewGenerator(1, testReg.DemoPalette())
	for z := -1; z <= 1; z++ {
		for x := -1; x <= 1; x++ {
			c := world.NewChunk(x, z, world.DefaultSize)
			gen.PopulateChunk(c)
			store.AddChunk(c)
		}
	}
	buf, _ := store.Snapshot(world.ChunkCoord{})
	light := lighting.Compute(buf, testReg)
	m := newTestMesher(b, 2)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := m.Build(buf, light); err != nil {
			b.Fatal(err)
		}
	}
}
