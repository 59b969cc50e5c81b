package registry

import "chunkmesh/internal/world"

// DemoPalette resolves the terrain generator's palette from the built-in
// block names. Names the registry lacks come back as air, which disables the
// matching feature.
func (r *Registry) DemoPalette() world.Palette {
	return world.Palette{
		Stone:  r.Block("stone"),
		Dirt:   r.Block("dirt"),
		Grass:  r.Block("grass"),
		Log:    r.Block("oak_log"),
		Glass:  r.Block("glass"),
		Slab:   r.Block("stone_slab"),
		Stairs: r.Block("oak_stairs"),
		Fence:  r.Block("oak_fence"),
		Pane:   r.Block("glass_pane"),
		Carpet: r.Block("white_carpet"),
		Gate:   r.Block("oak_fence_gate"),
	}
}
