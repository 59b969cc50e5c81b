package lighting

import (
	"errors"
	"fmt"

	"chunkmesh/internal/world"
)

// Channel selects one of the three light channels.
type Channel int

const (
	ChannelBlock Channel = iota
	ChannelSky
	ChannelBeacon
	channelCount
)

func (c Channel) String() string {
	switch c {
	case ChannelBlock:
		return "block"
	case ChannelSky:
		return "sky"
	case ChannelBeacon:
		return "beacon"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// Params tunes how field values turn into face brightness.
type Params struct {
	// VisualMin floors every sample so unlit faces stay visible.
	VisualMin float32
	// SkyScale scales the sky channel before channels are combined.
	SkyScale float32
}

// DefaultParams matches the engine defaults: an 18/255 floor and full sky.
func DefaultParams() Params {
	return Params{VisualMin: 18.0 / 255.0, SkyScale: 1}
}

var ErrInvalidParams = errors.New("invalid light params")

func (p Params) Validate() error {
	if !(p.VisualMin > 0 && p.VisualMin <= 1) {
		return fmt.Errorf("%w: visual minimum %v outside (0, 1]", ErrInvalidParams, p.VisualMin)
	}
	if p.SkyScale < 0 || p.SkyScale > 1 {
		return fmt.Errorf("%w: sky scale %v outside [0, 1]", ErrInvalidParams, p.SkyScale)
	}
	return nil
}

// Field holds per-cell light for one chunk at Scale cells per voxel, plus a
// one-cell ring on the horizontal axes carrying the neighbors' edge values.
// Cells above the top are open sky; cells below the bottom are dark.
type Field struct {
	Size             world.Size
	Scale            int
	OriginX, OriginZ int // world coordinates of local voxel (0, 0, 0)

	nx, ny, nz int // cell dimensions including the ring
	ch         [channelCount][]float32
}

// NewField allocates a dark field for the chunk at coord.
func NewField(coord world.ChunkCoord, size world.Size, scale int) *Field {
	if scale < 1 {
		scale = 1
	}
	f := &Field{
		Size:    size,
		Scale:   scale,
		OriginX: coord.X * size.X,
		OriginZ: coord.Z * size.Z,
		nx:      size.X*scale + 2,
		ny:      size.Y * scale,
		nz:      size.Z*scale + 2,
	}
	for c := range f.ch {
		f.ch[c] = make([]float32, f.nx*f.ny*f.nz)
	}
	return f
}

// Cells returns the interior cell extent (ring excluded).
func (f *Field) Cells() (x, y, z int) {
	return f.nx - 2, f.ny, f.nz - 2
}

func (f *Field) index(cx, cy, cz int) int {
	return (cy*f.nz+(cz+1))*f.nx + (cx + 1)
}

func (f *Field) inRing(cx, cy, cz int) bool {
	return cx >= -1 && cx <= f.nx-2 && cz >= -1 && cz <= f.nz-2 && cy >= 0 && cy < f.ny
}

// At reads a channel at cell coordinates. x and z are clamped to the ring.
func (f *Field) At(c Channel, cx, cy, cz int) float32 {
	if cy >= f.ny {
		if c == ChannelSky {
			return 1
		}
		return 0
	}
	if cy < 0 {
		return 0
	}
	cx = clampInt(cx, -1, f.nx-2)
	cz = clampInt(cz, -1, f.nz-2)
	return f.ch[c][f.index(cx, cy, cz)]
}

// Set writes a channel at cell coordinates; writes outside the ring are dropped.
func (f *Field) Set(c Channel, cx, cy, cz int, v float32) {
	if !f.inRing(cx, cy, cz) {
		return
	}
	f.ch[c][f.index(cx, cy, cz)] = clamp01(v)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
