package blockmodel

// Built-in thin-shape geometry. Panes and fences add an arm per connected
// side; gates are modelled facing north and rotated by the caller.

func box(x0, y0, z0, x1, y1, z1 float32) Element {
	return Element{From: [3]float32{x0, y0, z0}, To: [3]float32{x1, y1, z1}}
}

func builtinPane() *Model {
	return &Model{
		Elements: []Element{box(7, 0, 7, 9, 16, 9)},
		Arms: map[string][]Element{
			"north": {box(7, 0, 0, 9, 16, 7)},
			"south": {box(7, 0, 9, 9, 16, 16)},
			"west":  {box(0, 0, 7, 7, 16, 9)},
			"east":  {box(9, 0, 7, 16, 16, 9)},
		},
	}
}

func builtinFence() *Model {
	return &Model{
		Elements: []Element{box(6, 0, 6, 10, 16, 10)},
		Arms: map[string][]Element{
			"north": {box(7, 6, 0, 9, 9, 6), box(7, 12, 0, 9, 15, 6)},
			"south": {box(7, 6, 10, 9, 9, 16), box(7, 12, 10, 9, 15, 16)},
			"west":  {box(0, 6, 7, 6, 9, 9), box(0, 12, 7, 6, 15, 9)},
			"east":  {box(10, 6, 7, 16, 9, 9), box(10, 12, 7, 16, 15, 9)},
		},
	}
}

func builtinGate() *Model {
	return &Model{
		Elements: []Element{
			box(0, 5, 7, 2, 16, 9),
			box(14, 5, 7, 16, 16, 9),
			box(2, 6, 7, 14, 9, 9),
			box(2, 12, 7, 14, 15, 9),
		},
	}
}

func builtinCarpet() *Model {
	return &Model{Elements: []Element{box(0, 0, 0, 16, 1, 16)}}
}

// Builtin returns a fresh copy of a built-in model: pane, fence, gate or carpet.
func Builtin(name string) (*Model, bool) {
	switch name {
	case "pane":
		return builtinPane(), true
	case "fence":
		return builtinFence(), true
	case "gate":
		return builtinGate(), true
	case "carpet":
		return builtinCarpet(), true
	}
	return nil, false
}
