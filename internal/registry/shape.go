package registry

import "fmt"

// Shape selects the meshing path of a block type.
type Shape uint8

const (
	ShapeNone Shape = iota // air and invisible blocks
	ShapeCube
	ShapeAxisCube
	ShapeSlab
	ShapeStairs
	ShapePane
	ShapeFence
	ShapeGate
	ShapeCarpet
)

var shapeNames = [...]string{
	ShapeNone:     "none",
	ShapeCube:     "cube",
	ShapeAxisCube: "axis_cube",
	ShapeSlab:     "slab",
	ShapeStairs:   "stairs",
	ShapePane:     "pane",
	ShapeFence:    "fence",
	ShapeGate:     "gate",
	ShapeCarpet:   "carpet",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("shape(%d)", s)
}

// ParseShape maps a configuration name to a Shape.
func ParseShape(name string) (Shape, error) {
	for i, n := range shapeNames {
		if n == name {
			return Shape(i), nil
		}
	}
	return ShapeNone, fmt.Errorf("%w: %q", ErrUnknownShape, name)
}

// FullCube reports shapes that fill the whole voxel.
func (s Shape) FullCube() bool {
	return s == ShapeCube || s == ShapeAxisCube
}

// Micro reports shapes expressed as sub-voxel occupancy.
func (s Shape) Micro() bool {
	return s == ShapeSlab || s == ShapeStairs
}

// Thin reports shapes emitted directly, outside the parity grid.
func (s Shape) Thin() bool {
	return s == ShapePane || s == ShapeFence || s == ShapeGate || s == ShapeCarpet
}

// Connects reports shapes that pane and fence arms attach to.
func (s Shape) Connects() bool {
	return s == ShapePane || s == ShapeFence || s == ShapeGate || s.FullCube()
}
