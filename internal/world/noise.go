package world

import "math"

// heightNoise is 2-D value noise summed over octaves. Lattice values come
// from an integer hash, so terrain is stable across runs for one seed.
type heightNoise struct {
	seed        int64
	octaves     int
	persistence float64
	lacunarity  float64
}

// at returns the normalized noise value in [0, 1].
func (n heightNoise) at(x, z float64) float64 {
	amplitude, frequency := 1.0, 1.0
	var sum, norm float64
	for i := 0; i < n.octaves; i++ {
		sum += amplitude * latticeNoise(x*frequency, z*frequency, n.seed+int64(i*131))
		norm += amplitude
		amplitude *= n.persistence
		frequency *= n.lacunarity
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// latticeNoise interpolates hashed corner values of the unit cell around
// (x, z) with a quintic fade.
func latticeNoise(x, z float64, seed int64) float64 {
	x0, z0 := math.Floor(x), math.Floor(z)
	ix, iz := int64(x0), int64(z0)
	fx, fz := smoother(x-x0), smoother(z-z0)

	corner := func(dx, dz int64) float64 {
		return float64(hash2(ix+dx, iz+dz, seed)&0xFFFFFFFF) / float64(0xFFFFFFFF)
	}
	south := mix(corner(0, 0), corner(1, 0), fx)
	north := mix(corner(0, 1), corner(1, 1), fx)
	return mix(south, north, fz)
}

func smoother(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func mix(a, b, t float64) float64 {
	return a + t*(b-a)
}

// hash2 is a SplitMix64 finalizer over the packed coordinates.
func hash2(x, z, seed int64) uint64 {
	v := uint64(x) + uint64(z)<<1 + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ v>>30) * 0xBF58476D1CE4E5B9
	v = (v ^ v>>27) * 0x94D049BB133111EB
	return v ^ v>>31
}
