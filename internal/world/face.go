package world

import "github.com/go-gl/mathgl/mgl32"

// Face identifies one of the six axis-aligned faces of a cell.
// The order matches occlusion mask bit positions.
type Face uint8

const (
	FacePosY Face = iota
	FaceNegY
	FacePosX
	FaceNegX
	FacePosZ
	FaceNegZ
)

// AllFaces lists the faces in index order.
var AllFaces = [6]Face{FacePosY, FaceNegY, FacePosX, FaceNegX, FacePosZ, FaceNegZ}

// FaceRole selects which material slot a face uses.
type FaceRole uint8

const (
	RoleTop FaceRole = iota
	RoleBottom
	RoleSide
)

// Delta returns the integer step out of this face.
func (f Face) Delta() (dx, dy, dz int) {
	switch f {
	case FacePosY:
		return 0, 1, 0
	case FaceNegY:
		return 0, -1, 0
	case FacePosX:
		return 1, 0, 0
	case FaceNegX:
		return -1, 0, 0
	case FacePosZ:
		return 0, 0, 1
	default:
		return 0, 0, -1
	}
}

// Normal returns the outward unit normal.
func (f Face) Normal() mgl32.Vec3 {
	dx, dy, dz := f.Delta()
	return mgl32.Vec3{float32(dx), float32(dy), float32(dz)}
}

// Opposite returns the face pointing the other way along the same axis.
func (f Face) Opposite() Face {
	return f ^ 1
}

// Positive reports whether the face points along +axis.
func (f Face) Positive() bool {
	return f&1 == 0
}

// Axis returns 0 for X, 1 for Y and 2 for Z.
func (f Face) Axis() int {
	switch f {
	case FacePosX, FaceNegX:
		return 0
	case FacePosY, FaceNegY:
		return 1
	default:
		return 2
	}
}

// Role classifies the face for material lookup.
func (f Face) Role() FaceRole {
	switch f {
	case FacePosY:
		return RoleTop
	case FaceNegY:
		return RoleBottom
	default:
		return RoleSide
	}
}

// Bit returns the face's bit in a 6-bit face mask.
func (f Face) Bit() uint8 {
	return 1 << f
}

func (f Face) String() string {
	switch f {
	case FacePosY:
		return "+y"
	case FaceNegY:
		return "-y"
	case FacePosX:
		return "+x"
	case FaceNegX:
		return "-x"
	case FacePosZ:
		return "+z"
	default:
		return "-z"
	}
}

// SideFaces are the four lateral faces, used for connector geometry.
var SideFaces = [4]Face{FaceNegX, FacePosX, FaceNegZ, FacePosZ}
