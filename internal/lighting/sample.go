package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"chunkmesh/internal/world"
)

// faceEpsilon moves a point on a face just inside the cell that owns it.
const faceEpsilon = 1e-3

// SampleFace returns the brightness of a face lying at world position p with
// outward normal n. It takes the brighter of the cell behind the face and the
// cell in front of it per channel, so both sides of a shared plane agree.
// A nil field yields the visual minimum.
func (f *Field) SampleFace(p mgl32.Vec3, n world.Face, params Params) float32 {
	if f == nil {
		return params.VisualMin
	}
	inside := p.Sub(n.Normal().Mul(faceEpsilon))
	s := float32(f.Scale)
	cx := int(math.Floor(float64((inside.X() - float32(f.OriginX)) * s)))
	cy := int(math.Floor(float64(inside.Y() * s)))
	cz := int(math.Floor(float64((inside.Z() - float32(f.OriginZ)) * s)))

	// keep the owning cell on the grid; the stepped cell may leave it
	cx = clampInt(cx, -1, f.nx-2)
	cy = clampInt(cy, 0, f.ny-1)
	cz = clampInt(cz, -1, f.nz-2)
	dx, dy, dz := n.Delta()

	var out float32
	for c := Channel(0); c < channelCount; c++ {
		v := max(f.At(c, cx, cy, cz), f.At(c, cx+dx, cy+dy, cz+dz))
		if c == ChannelSky {
			v *= params.SkyScale
		}
		out = max(out, v)
	}
	return min(max(out, params.VisualMin), 1)
}

// Quantize maps a brightness in [0, 1] to a byte.
func Quantize(v float32) uint8 {
	return uint8(clamp01(v)*255 + 0.5)
}
