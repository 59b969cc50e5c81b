package meshing

import (
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"chunkmesh/internal/world"
)

func TestThinFaceCulling(t *testing.T) {
	m := newTestMesher(t, 2)
	fence := testReg.Block("oak_fence")
	stone := testReg.Block("stone")

	cases := []struct {
		name  string
		setup func(buf *world.ChunkBuf)
		want  int
	}{
		{"lone post", func(buf *world.ChunkBuf) {}, 6},
		{"stone below hides the foot", func(buf *world.ChunkBuf) { buf.Set(1, 0, 1, stone) }, 5},
		// post plus two bars toward the stone; the bar ends against it are hidden
		{"arm toward stone", func(buf *world.ChunkBuf) { buf.Set(2, 1, 1, stone) }, 16},
		{"arm toward fence", func(buf *world.ChunkBuf) { buf.Set(1, 1, 2, fence) }, 6 + 12 + 6 + 12},
	}
	for _, c := range cases {
		buf := world.NewChunkBuf(world.ChunkCoord{}, testSize)
		buf.Set(1, 1, 1, fence)
		c.setup(buf)
		res := mustBuild(t, m, buf)
		if res.Stats.ThinQuads != c.want {
			t.Errorf("%s: got %d thin quads, want %d", c.name, res.Stats.ThinQuads, c.want)
		}
	}
}

func TestUnconnectedPaneSpansNorthSouth(t *testing.T) {
	buf := world.NewChunkBuf(world.ChunkCoord{}, testSize)
	buf.Set(1, 1, 1, testReg.Block("glass_pane"))
	res := mustBuild(t, newTestMesher(t, 2), buf)
	if res.Stats.ThinQuads != 18 {
		t.Fatalf("got %d thin quads, want 18", res.Stats.ThinQuads)
	}
	bb := res.Mesh.BBox
	want := AABB{Min: mgl32.Vec3{1 + 7.0/16, 1, 1}, Max: mgl32.Vec3{1 + 9.0/16, 2, 2}}
	if !bb.Min.ApproxEqual(want.Min) || !bb.Max.ApproxEqual(want.Max) {
		t.Fatalf("pane bounds: got %v..%v, want %v..%v", bb.Min, bb.Max, want.Min, want.Max)
	}
}

func TestGateFollowsFacing(t *testing.T) {
	gate, _ := testReg.Lookup("oak_fence_gate")
	m := newTestMesher(t, 2)
	bounds := func(f world.Facing) AABB {
		buf := world.NewChunkBuf(world.ChunkCoord{}, testSize)
		buf.Set(1, 1, 1, world.Block{ID: gate, State: world.GateState(f)})
		return mustBuild(t, m, buf).Mesh.BBox
	}
	north := bounds(world.FacingNorth)
	if north.Min.X() != 1 || north.Max.X() != 2 || north.Max.Z()-north.Min.Z() > 0.2 {
		t.Errorf("north gate should span x: %v..%v", north.Min, north.Max)
	}
	east := bounds(world.FacingEast)
	if east.Min.Z() != 1 || east.Max.Z() != 2 || east.Max.X()-east.Min.X() > 0.2 {
		t.Errorf("east gate should span z: %v..%v", east.Min, east.Max)
	}
}

func TestThinShapesIndependentOfSeams(t *testing.T) {
	m := newTestMesher(t, 2)
	build := func(neighbors world.NeighborsLoaded) *MeshBuild {
		buf := world.NewChunkBuf(world.ChunkCoord{}, testSize)
		buf.Neighbors = neighbors
		buf.Set(testSize.X-1, 0, 0, testReg.Block("oak_fence"))
		buf.Set(testSize.X, 0, 0, testReg.Block("stone"))
		buf.Set(-1, 0, 0, testReg.Block("oak_fence"))
		res := mustBuild(t, m, buf)
		return res.Mesh.Parts[testReg.MaterialFor(testReg.Block("oak_fence"), world.FacePosX)]
	}
	a := build(world.NeighborsLoaded{})
	b := build(world.NeighborsLoaded{NegX: true, PosX: true, NegZ: true, PosZ: true})
	if a == nil || !reflect.DeepEqual(a, b) {
		t.Fatalf("thin geometry changed with neighbor presence")
	}
}

func TestThinShapesStayOutOfParity(t *testing.T) {
	buf := world.NewChunkBuf(world.ChunkCoord{}, testSize)
	stone := testReg.Block("stone")
	buf.Set(1, 0, 1, stone)
	buf.Set(1, 1, 1, testReg.Block("white_carpet"))
	res := mustBuild(t, newTestMesher(t, 2), buf)
	if got := res.Mesh.Parts[testReg.MaterialFor(stone, world.FacePosY)].QuadCount(); got != 6 {
		t.Fatalf("stone under carpet: got %d quads, want 6", got)
	}
	// the carpet's underside rests on stone
	if res.Stats.ThinQuads != 5 {
		t.Fatalf("carpet: got %d thin quads, want 5", res.Stats.ThinQuads)
	}
}
