package blockmodel

import "github.com/go-gl/mathgl/mgl32"

// Model describes a block's geometry as boxes on a 16×16×16 grid.
type Model struct {
	Parent   string            `json:"parent"`
	Textures map[string]string `json:"textures"`
	Elements []Element         `json:"elements"`
	// Arms are added toward a connected lateral neighbor, keyed by
	// "north" (-Z), "south" (+Z), "west" (-X) and "east" (+X).
	Arms map[string][]Element `json:"arms"`
}

type Element struct {
	From  [3]float32      `json:"from"`
	To    [3]float32      `json:"to"`
	Faces map[string]Face `json:"faces"`
}

type Face struct {
	Texture  string `json:"texture"`
	CullFace string `json:"cullface"`
}

// Side names used by Arms, in the order west, east, north, south.
var Sides = [4]string{"west", "east", "north", "south"}

// Bounds returns the element box in voxel units relative to the voxel origin.
func (e Element) Bounds() (min, max mgl32.Vec3) {
	for i := 0; i < 3; i++ {
		a, b := e.From[i], e.To[i]
		if a > b {
			a, b = b, a
		}
		min[i] = a / 16
		max[i] = b / 16
	}
	return min, max
}

// Valid reports whether the element has positive volume inside the voxel.
func (e Element) Valid() bool {
	for i := 0; i < 3; i++ {
		if e.From[i] < 0 || e.To[i] > 16 || e.From[i] >= e.To[i] {
			return false
		}
	}
	return true
}

// RotateY turns the element clockwise (seen from above) around the voxel
// center by the given number of quarter turns.
func (e Element) RotateY(quarterTurns int) Element {
	out := e
	for i := 0; i < ((quarterTurns%4)+4)%4; i++ {
		// (x, z) -> (16 - z, x)
		fx, fz := out.From[0], out.From[2]
		tx, tz := out.To[0], out.To[2]
		out.From[0], out.To[0] = 16-tz, 16-fz
		out.From[2], out.To[2] = fx, tx
	}
	return out
}

func cloneElements(in []Element) []Element {
	if in == nil {
		return nil
	}
	out := make([]Element, len(in))
	for i, e := range in {
		out[i] = e
		if e.Faces != nil {
			out[i].Faces = make(map[string]Face, len(e.Faces))
			for k, v := range e.Faces {
				out[i].Faces[k] = v
			}
		}
	}
	return out
}
