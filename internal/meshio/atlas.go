package meshio

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/image/bmp"

	"chunkmesh/internal/lighting"
	"chunkmesh/internal/world"
)

// AtlasImage wraps an atlas as an image. The pixels are copied.
func AtlasImage(a *lighting.Atlas) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, a.Width, a.Height))
	copy(img.Pix, a.Pix)
	return img
}

// WriteAtlasBMP encodes an atlas as a BMP image.
func WriteAtlasBMP(w io.Writer, a *lighting.Atlas) error {
	if len(a.Pix) != a.Width*a.Height*4 {
		return fmt.Errorf("atlas %dx%d has %d bytes", a.Width, a.Height, len(a.Pix))
	}
	return bmp.Encode(w, AtlasImage(a))
}

// AtlasFileName is the atlas file name of a chunk.
func AtlasFileName(c world.ChunkCoord) string {
	return fmt.Sprintf("light_%d_%d.bmp", c.X, c.Z)
}

// WriteAtlasFile writes an atlas BMP to path, creating parent directories.
func WriteAtlasFile(path string, a *lighting.Atlas) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteAtlasBMP(f, a); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
