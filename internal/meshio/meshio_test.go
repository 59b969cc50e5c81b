package meshio

import (
	"bytes"
	"errors"
	"image/color"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/klauspost/compress/zstd"
	"golang.org/x/image/bmp"

	"chunkmesh/internal/lighting"
	"chunkmesh/internal/meshing"
	"chunkmesh/internal/registry"
	"chunkmesh/internal/world"
)

var testSize = world.Size{X: 4, Y: 8, Z: 4}

func sampleBuf(reg *registry.Registry) *world.ChunkBuf {
	buf := world.NewChunkBuf(world.ChunkCoord{X: 2, Z: -3}, testSize)
	buf.Set(1, 0, 1, reg.Block("stone"))
	buf.Set(2, 0, 1, reg.Block("glass"))
	buf.Set(1, 1, 1, reg.Block("oak_fence"))
	return buf
}

func sampleMesh(t *testing.T) *meshing.ChunkMesh {
	t.Helper()
	reg := registry.Default()
	m, err := meshing.NewMesher(reg, meshing.DefaultOptions())
	if err != nil {
		t.Fatalf("NewMesher: %v", err)
	}
	buf := sampleBuf(reg)
	res, err := m.Build(buf, lighting.Compute(buf, reg))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return res.Mesh
}

func TestMeshRoundTrip(t *testing.T) {
	mesh := sampleMesh(t)
	var buf bytes.Buffer
	if err := WriteMesh(&buf, mesh); err != nil {
		t.Fatalf("WriteMesh: %v", err)
	}

	h, got, err := ReadMesh(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadMesh: %v", err)
	}
	if !reflect.DeepEqual(got, mesh) {
		t.Fatalf("decoded mesh differs from the original")
	}
	if h.CX != 2 || h.CZ != -3 || h.Quads != mesh.QuadCount() || h.Parts != len(mesh.Parts) {
		t.Errorf("header: got %+v", h)
	}

	h2, err := ReadHeader(bytes.NewReader(buf.Bytes()))
	if err != nil || h2 != h {
		t.Errorf("ReadHeader: got %+v, %v; want %+v", h2, err, h)
	}
}

func TestMeshFile(t *testing.T) {
	mesh := sampleMesh(t)
	path := filepath.Join(t.TempDir(), "dump", MeshFileName(mesh.Coord))
	if filepath.Base(path) != "mesh_2_-3.zst" {
		t.Fatalf("file name: got %s", filepath.Base(path))
	}
	if err := WriteMeshFile(path, mesh); err != nil {
		t.Fatalf("WriteMeshFile: %v", err)
	}
	_, got, err := ReadMeshFile(path)
	if err != nil {
		t.Fatalf("ReadMeshFile: %v", err)
	}
	if got.QuadCount() != mesh.QuadCount() {
		t.Errorf("quads: got %d, want %d", got.QuadCount(), mesh.QuadCount())
	}
}

func TestReadMeshRejectsForeignStreams(t *testing.T) {
	if _, _, err := ReadMesh(bytes.NewReader([]byte("not zstd at all"))); err == nil {
		t.Fatalf("garbage input should fail")
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd.NewWriter: %v", err)
	}
	enc.Write([]byte(`{"format":"chunkmesh.mesh","version":99}` + "\n"))
	enc.Close()
	_, _, err = ReadMesh(bytes.NewReader(buf.Bytes()))
	if !errors.Is(err, ErrFormat) {
		t.Fatalf("future version: got %v, want ErrFormat", err)
	}
}

func TestEmptyMeshRoundTrip(t *testing.T) {
	mesh := meshing.NewChunkMesh(world.ChunkCoord{X: -1})
	var buf bytes.Buffer
	if err := WriteMesh(&buf, mesh); err != nil {
		t.Fatalf("WriteMesh: %v", err)
	}
	_, got, err := ReadMesh(&buf)
	if err != nil {
		t.Fatalf("ReadMesh: %v", err)
	}
	if got.Parts == nil || len(got.Parts) != 0 || got.Coord != mesh.Coord {
		t.Fatalf("empty mesh: got %+v", got)
	}
}

func TestAtlasBMP(t *testing.T) {
	reg := registry.Default()
	buf := sampleBuf(reg)
	f := lighting.Compute(buf, reg)
	atlas := lighting.BuildAtlas(f)

	var out bytes.Buffer
	if err := WriteAtlasBMP(&out, atlas); err != nil {
		t.Fatalf("WriteAtlasBMP: %v", err)
	}
	img, err := bmp.Decode(&out)
	if err != nil {
		t.Fatalf("bmp.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != atlas.Width || b.Dy() != atlas.Height {
		t.Fatalf("image size: got %v, want %dx%d", b, atlas.Width, atlas.Height)
	}
	for _, layer := range []int{0, 1, atlas.Layers - 1} {
		col, row := atlas.Tile(layer)
		for _, tc := range [][2]int{{0, 0}, {2, 2}, {atlas.TileW - 1, atlas.TileH - 1}} {
			want := atlas.Texel(layer, tc[0], tc[1])
			px := color.NRGBAModel.Convert(img.At(col*atlas.TileW+tc[0], row*atlas.TileH+tc[1])).(color.NRGBA)
			if got := [4]uint8{px.R, px.G, px.B, px.A}; got != want {
				t.Errorf("layer %d texel %v: got %v, want %v", layer, tc, got, want)
			}
		}
	}

	bad := *atlas
	bad.Pix = bad.Pix[:4]
	if err := WriteAtlasBMP(&out, &bad); err == nil {
		t.Errorf("truncated atlas should be rejected")
	}
}

func TestAtlasFile(t *testing.T) {
	reg := registry.Default()
	atlas := lighting.BuildAtlas(lighting.Compute(sampleBuf(reg), reg))
	path := filepath.Join(t.TempDir(), AtlasFileName(world.ChunkCoord{X: 2, Z: -3}))
	if err := WriteAtlasFile(path, atlas); err != nil {
		t.Fatalf("WriteAtlasFile: %v", err)
	}
	if filepath.Base(path) != "light_2_-3.bmp" {
		t.Errorf("file name: got %s", filepath.Base(path))
	}
}
