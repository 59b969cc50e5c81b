package meshing

import (
	"math/bits"
	"math/rand"
	"reflect"
	"testing"

	"chunkmesh/internal/world"
)

func TestBoxesForMaskEdgeCases(t *testing.T) {
	for _, s := range []int{1, 2, 3, 4} {
		if got := BoxesForMask(s, 0); len(got) != 0 {
			t.Errorf("s=%d empty mask: got %v, want no boxes", s, got)
		}
		got := BoxesForMask(s, FullMask(s))
		n := uint8(s)
		want := []MicroBox{{0, 0, 0, n, n, n}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("s=%d full mask: got %v, want %v", s, got, want)
		}
	}
}

func TestBoxesForMaskCoverExactly(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for _, s := range []int{2, 4} {
		for i := 0; i < 500; i++ {
			mask := rng.Uint64() & FullMask(s)
			boxes := BoxesForMask(s, mask)
			if !boxesCover(s, mask, boxes) {
				t.Fatalf("s=%d mask %#x: boxes %v do not tile the mask", s, mask, boxes)
			}
			if len(boxes) > bits.OnesCount64(mask) {
				t.Fatalf("s=%d mask %#x: %d boxes for %d cells", s, mask, len(boxes), bits.OnesCount64(mask))
			}
		}
	}
}

func TestBoxesForMaskMemoized(t *testing.T) {
	mask := uint64(0b1011_0110)
	a := BoxesForMask(2, mask)
	b := BoxesForMask(2, mask)
	if len(a) == 0 || &a[0] != &b[0] {
		t.Fatalf("second lookup should return the cached slice")
	}
}

func TestBoxesForMaskFallback(t *testing.T) {
	// bit 9 lies outside a 2x2x2 voxel
	got := BoxesForMask(2, 1|1<<9)
	want := []MicroBox{{0, 0, 0, 1, 1, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stray bits: got %v, want %v", got, want)
	}
	// scale 5 has no table; cells come back one by one
	got = BoxesForMask(5, 0b11)
	want = []MicroBox{{0, 0, 0, 1, 1, 1}, {1, 0, 0, 2, 1, 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scale 5: got %v, want %v", got, want)
	}
}

func TestOccupancyMasks(t *testing.T) {
	slab, _ := testReg.Lookup("stone_slab")
	stairs, _ := testReg.Lookup("oak_stairs")
	for _, s := range []int{2, 4} {
		full := s * s * s
		bottom, ok := OccupancyMask(testReg, world.Block{ID: slab}, s)
		if !ok || bits.OnesCount64(bottom) != full/2 {
			t.Fatalf("s=%d bottom slab: %d cells, want %d", s, bits.OnesCount64(bottom), full/2)
		}
		if bottom&maskBit(s, 0, 0, 0) == 0 || bottom&maskBit(s, 0, s-1, 0) != 0 {
			t.Errorf("s=%d bottom slab fills the wrong half: %#x", s, bottom)
		}
		top, _ := OccupancyMask(testReg, world.Block{ID: slab, State: world.SlabState(true)}, s)
		if top&bottom != 0 || top|bottom != FullMask(s) {
			t.Errorf("s=%d slab halves should partition the voxel", s)
		}

		st, ok := OccupancyMask(testReg, world.Block{ID: stairs, State: world.StairState(world.FacingEast, false)}, s)
		if !ok || bits.OnesCount64(st) != full*3/4 {
			t.Fatalf("s=%d stairs: %d cells, want %d", s, bits.OnesCount64(st), full*3/4)
		}
		if st&maskBit(s, s-1, s-1, 0) == 0 || st&maskBit(s, 0, s-1, 0) != 0 {
			t.Errorf("s=%d east stairs should rise on the +X side: %#x", s, st)
		}
	}
	if _, ok := OccupancyMask(testReg, testReg.Block("oak_fence"), 2); ok {
		t.Errorf("fences have no occupancy mask")
	}
	if _, ok := OccupancyMask(testReg, world.Air, 2); ok {
		t.Errorf("air has no occupancy mask")
	}
}

func TestBoundaryLayerAndRects(t *testing.T) {
	slab, _ := testReg.Lookup("stone_slab")
	const s = 4
	bottom, _ := OccupancyMask(testReg, world.Block{ID: slab}, s)

	// side layers of a bottom slab: the lower half of rows
	for _, f := range []world.Face{world.FacePosX, world.FaceNegZ} {
		layer := BoundaryLayer(s, bottom, f)
		if layer != 0x00FF {
			t.Errorf("%s layer: got %#04x, want 0x00ff", f, layer)
		}
		rects := RectsForPlaneMask(s, layer)
		want := []PlaneRect{{U: 0, V: 0, W: 4, H: 2}}
		if !reflect.DeepEqual(rects, want) {
			t.Errorf("%s rects: got %v, want %v", f, rects, want)
		}
	}
	if got := BoundaryLayer(s, bottom, world.FacePosY); got != 0 {
		t.Errorf("top layer of a bottom slab: got %#x, want 0", got)
	}
	if got := BoundaryLayer(s, bottom, world.FaceNegY); got != 0xFFFF {
		t.Errorf("bottom layer of a bottom slab: got %#x, want 0xffff", got)
	}
	if got := RectsForPlaneMask(2, 0); got != nil {
		t.Errorf("empty plane: got %v", got)
	}
	// an L shape needs two rectangles
	got := RectsForPlaneMask(2, 0b0111)
	want := []PlaneRect{{U: 0, V: 0, W: 2, H: 1}, {U: 0, V: 1, W: 1, H: 1}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("L shape: got %v, want %v", got, want)
	}
}
