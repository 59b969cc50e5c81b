package lighting

import (
	"chunkmesh/internal/profiling"
	"chunkmesh/internal/registry"
	"chunkmesh/internal/world"
)

// Step is the light lost per voxel of propagation.
const Step = float32(1) / 15

// beaconStep is smaller so beacon light carries further than block light.
const beaconStep = float32(1) / 31

// Compute derives a voxel-resolution field from a chunk snapshot. Skylight
// falls straight down each column until an opaque block, then every channel
// spreads through non-opaque cells. The halo columns are lit too, so the ring
// carries a local estimate until real neighbor borders are applied.
func Compute(buf *world.ChunkBuf, reg *registry.Registry) *Field {
	defer profiling.Track("lighting.Compute")()

	f := NewField(buf.Coord, buf.Size, 1)
	size := buf.Size
	opaque := make([]bool, f.nx*f.ny*f.nz)
	for y := 0; y < size.Y; y++ {
		for z := -1; z <= size.Z; z++ {
			for x := -1; x <= size.X; x++ {
				d := reg.Get(buf.At(x, y, z).ID)
				if d == nil {
					continue
				}
				i := f.index(x, y, z)
				opaque[i] = d.Opaque()
				if d.Emission > 0 {
					f.ch[ChannelBlock][i] = clamp01(d.Emission)
				}
				if d.Beacon > 0 {
					f.ch[ChannelBeacon][i] = clamp01(d.Beacon)
				}
			}
		}
	}

	var queues [channelCount][]int
	for z := -1; z <= size.Z; z++ {
		for x := -1; x <= size.X; x++ {
			for y := size.Y - 1; y >= 0; y-- {
				i := f.index(x, y, z)
				if opaque[i] {
					break
				}
				f.ch[ChannelSky][i] = 1
				queues[ChannelSky] = append(queues[ChannelSky], i)
			}
		}
	}
	for _, c := range []Channel{ChannelBlock, ChannelBeacon} {
		for i, v := range f.ch[c] {
			if v > 0 {
				queues[c] = append(queues[c], i)
			}
		}
	}

	f.propagate(ChannelSky, queues[ChannelSky], opaque, Step)
	f.propagate(ChannelBlock, queues[ChannelBlock], opaque, Step)
	f.propagate(ChannelBeacon, queues[ChannelBeacon], opaque, beaconStep)
	return f
}

// propagate runs a breadth-first flood from the queued cells. A cell is
// revisited only when it receives a brighter value, so the pass terminates.
func (f *Field) propagate(c Channel, queue []int, opaque []bool, step float32) {
	vals := f.ch[c]
	plane := f.nx * f.nz
	for head := 0; head < len(queue); head++ {
		i := queue[head]
		next := vals[i] - step
		if next <= 0 {
			continue
		}
		x := i % f.nx
		z := (i / f.nx) % f.nz
		y := i / plane
		try := func(j int) {
			if !opaque[j] && vals[j] < next {
				vals[j] = next
				queue = append(queue, j)
			}
		}
		if x > 0 {
			try(i - 1)
		}
		if x < f.nx-1 {
			try(i + 1)
		}
		if z > 0 {
			try(i - f.nx)
		}
		if z < f.nz-1 {
			try(i + f.nx)
		}
		if y > 0 {
			try(i - plane)
		}
		if y < f.ny-1 {
			try(i + plane)
		}
	}
}
