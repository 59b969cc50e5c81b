package world

import (
	"crypto/sha256"
	"encoding/binary"
	"testing"
)

func testPalette() Palette {
	return Palette{
		Stone:  Block{ID: 1},
		Dirt:   Block{ID: 2},
		Grass:  Block{ID: 3},
		Slab:   Block{ID: 4},
		Stairs: Block{ID: 5},
		Fence:  Block{ID: 6},
	}
}

func hashChunkBlocks(c *Chunk) [32]byte {
	h := sha256.New()
	s := c.Size()
	var buf [4]byte
	for y := 0; y < s.Y; y++ {
		for z := 0; z < s.Z; z++ {
			for x := 0; x < s.X; x++ {
				b := c.Get(x, y, z)
				binary.LittleEndian.PutUint16(buf[0:], uint16(b.ID))
				binary.LittleEndian.PutUint16(buf[2:], b.State)
				h.Write(buf[:])
			}
		}
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func TestGeneratorDeterminism(t *testing.T) {
	size := Size{X: 16, Y: 64, Z: 16}
	a := NewChunk(3, -2, size)
	b := NewChunk(3, -2, size)
	NewGenerator(42, testPalette()).PopulateChunk(a)
	NewGenerator(42, testPalette()).PopulateChunk(b)
	if hashChunkBlocks(a) != hashChunkBlocks(b) {
		t.Errorf("same seed produced different chunks")
	}
}

func TestGeneratorSurface(t *testing.T) {
	size := Size{X: 8, Y: 64, Z: 8}
	g := NewGenerator(7, testPalette())
	c := NewChunk(0, 0, size)
	g.PopulateChunk(c)
	for z := 0; z < size.Z; z++ {
		for x := 0; x < size.X; x++ {
			h := min(g.HeightAt(x, z), size.Y-2)
			if got := c.Get(x, h, z).ID; got != 3 {
				t.Fatalf("surface at (%d,%d): got %d, want grass", x, z, got)
			}
			if got := c.Get(x, 0, z); got.IsAir() {
				t.Fatalf("column (%d,%d) has air at the bottom", x, z)
			}
		}
	}
}

func TestHash2Deterministic(t *testing.T) {
	if hash2(10, 20, 42) != hash2(10, 20, 42) {
		t.Errorf("hash2 not deterministic")
	}
	if hash2(1, 0, 42) == hash2(2, 0, 42) {
		t.Errorf("hash2 should differ for different X")
	}
}

func TestNoiseRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		v := heightNoise{seed: 5, octaves: 4, persistence: 0.5, lacunarity: 2}.at(float64(i)*0.37, float64(i)*0.11)
		if v < 0 || v > 1 {
			t.Fatalf("noise out of range: %f", v)
		}
	}
}

func BenchmarkPopulateChunk(b *testing.B) {
	g := NewGenerator(1, testPalette())
	size := DefaultSize
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		g.PopulateChunk(NewChunk(i%8, i/8, size))
	}
}
