// Package meshio dumps chunk meshes and light atlases to disk. A mesh dump is
// a zstd stream holding one JSON header line followed by a gob body; the
// header can be read without decoding the geometry.
package meshio

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"chunkmesh/internal/meshing"
	"chunkmesh/internal/registry"
	"chunkmesh/internal/world"
)

const (
	Format  = "chunkmesh.mesh"
	Version = 1
)

// ErrFormat is returned for streams that are not mesh dumps of a supported
// version.
var ErrFormat = errors.New("meshio: unsupported mesh dump")

// Header summarizes a dump.
type Header struct {
	Format  string     `json:"format"`
	Version int        `json:"version"`
	CX      int        `json:"cx"`
	CZ      int        `json:"cz"`
	Parts   int        `json:"parts"`
	Quads   int        `json:"quads"`
	Min     [3]float32 `json:"min"`
	Max     [3]float32 `json:"max"`
}

// HeaderFor describes a mesh.
func HeaderFor(m *meshing.ChunkMesh) Header {
	return Header{
		Format:  Format,
		Version: Version,
		CX:      m.Coord.X,
		CZ:      m.Coord.Z,
		Parts:   len(m.Parts),
		Quads:   m.QuadCount(),
		Min:     m.BBox.Min,
		Max:     m.BBox.Max,
	}
}

// WriteMesh compresses a mesh into w.
func WriteMesh(w io.Writer, m *meshing.ChunkMesh) error {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 64*1024)

	hb, err := json.Marshal(HeaderFor(m))
	if err != nil {
		enc.Close()
		return fmt.Errorf("encode header: %w", err)
	}
	hb = append(hb, '\n')
	if _, err := bw.Write(hb); err != nil {
		enc.Close()
		return err
	}
	if err := gob.NewEncoder(bw).Encode(m); err != nil {
		enc.Close()
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}

// ReadMesh decodes a dump written by WriteMesh.
func ReadMesh(r io.Reader) (Header, *meshing.ChunkMesh, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return Header{}, nil, err
	}
	defer dec.Close()
	br := bufio.NewReaderSize(dec, 64*1024)

	h, err := readHeader(br)
	if err != nil {
		return h, nil, err
	}
	var m meshing.ChunkMesh
	if err := gob.NewDecoder(br).Decode(&m); err != nil {
		return h, nil, fmt.Errorf("gob decode: %w", err)
	}
	if m.Parts == nil {
		m.Parts = make(map[registry.MaterialID]*meshing.MeshBuild)
	}
	if m.Coord.X != h.CX || m.Coord.Z != h.CZ || len(m.Parts) != h.Parts {
		return h, nil, fmt.Errorf("%w: header does not match body", ErrFormat)
	}
	return h, &m, nil
}

// ReadHeader decodes only the header line of a dump.
func ReadHeader(r io.Reader) (Header, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return Header{}, err
	}
	defer dec.Close()
	return readHeader(bufio.NewReader(dec))
}

func readHeader(br *bufio.Reader) (Header, error) {
	var h Header
	line, err := br.ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if h.Format != Format || h.Version != Version {
		return h, fmt.Errorf("%w: %s v%d", ErrFormat, h.Format, h.Version)
	}
	return h, nil
}

// MeshFileName is the dump file name of a chunk.
func MeshFileName(c world.ChunkCoord) string {
	return fmt.Sprintf("mesh_%d_%d.zst", c.X, c.Z)
}

// WriteMeshFile writes a dump to path, creating parent directories.
func WriteMeshFile(path string, m *meshing.ChunkMesh) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if err := WriteMesh(f, m); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ReadMeshFile reads a dump from path.
func ReadMeshFile(path string) (Header, *meshing.ChunkMesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, err
	}
	defer f.Close()
	return ReadMesh(f)
}
