package world

// BlockID identifies a registered block type. Zero is air.
type BlockID uint16

const BlockIDAir BlockID = 0

// Block is one voxel: a type plus shape state (slab half, stair facing, ...).
type Block struct {
	ID    BlockID
	State uint16
}

// Air is the empty voxel.
var Air = Block{}

// IsAir reports whether the voxel is empty.
func (b Block) IsAir() bool {
	return b.ID == BlockIDAir
}

// Facing is a horizontal orientation used by stairs and gates.
type Facing uint8

const (
	FacingNorth Facing = iota // -Z
	FacingSouth               // +Z
	FacingWest                // -X
	FacingEast                // +X
)

func (f Facing) String() string {
	switch f {
	case FacingNorth:
		return "north"
	case FacingSouth:
		return "south"
	case FacingWest:
		return "west"
	case FacingEast:
		return "east"
	default:
		return "unknown"
	}
}

// ParseFacing maps a facing name back to its value.
func ParseFacing(s string) (Facing, bool) {
	switch s {
	case "north":
		return FacingNorth, true
	case "south":
		return FacingSouth, true
	case "west":
		return FacingWest, true
	case "east":
		return FacingEast, true
	}
	return 0, false
}

// Axis is the orientation of axis-aligned cubes such as logs.
type Axis uint8

const (
	AxisY Axis = iota
	AxisX
	AxisZ
)

// State layout:
//
//	bit 0..1  facing (stairs, gates) or axis (axis cubes)
//	bit 2     upper half (slabs, stairs)
const (
	stateFacingMask = 0x3
	stateTopBit     = 0x4
)

// SlabState encodes a slab occupying the lower or upper half.
func SlabState(top bool) uint16 {
	if top {
		return stateTopBit
	}
	return 0
}

// StairState encodes stair facing and half.
func StairState(f Facing, top bool) uint16 {
	return SlabState(top) | uint16(f)&stateFacingMask
}

// GateState encodes a closed gate facing.
func GateState(f Facing) uint16 {
	return uint16(f) & stateFacingMask
}

// AxisState encodes the axis of an axis cube.
func AxisState(a Axis) uint16 {
	return uint16(a) & stateFacingMask
}

// Top reports the upper-half bit of slab and stair states.
func (b Block) Top() bool { return b.State&stateTopBit != 0 }

// Facing returns the stair or gate facing.
func (b Block) Facing() Facing { return Facing(b.State & stateFacingMask) }

// AxisOf returns the axis of an axis cube.
func (b Block) AxisOf() Axis { return Axis(b.State & stateFacingMask) }
