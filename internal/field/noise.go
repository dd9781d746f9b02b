package field

import "github.com/chewxy/math32"

// Deterministic 3D value noise with multiple fBm octaves. No external
// noise library exists anywhere in the retrieved corpus; this is a
// direct generalization of the teacher's own 2D lattice-hash value noise
// from columns to full 3D sample points, using the same SplitMix64-style
// integer hash and fade/lerp shape.

func fade(t float32) float32 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// hash3 mixes three lattice coordinates and a seed into a 64-bit value
// using the SplitMix64 finalizer, matching the teacher's hash2.
func hash3(x, y, z int32, seed uint32) uint64 {
	v := uint64(uint32(x)) + uint64(uint32(y))<<1 + uint64(uint32(z))<<2 + uint64(seed)*0x9E3779B97F4A7C15
	v += 0x9E3779B97F4A7C15
	v = (v ^ (v >> 30)) * 0xBF58476D1CE4E5B9
	v = (v ^ (v >> 27)) * 0x94D049BB133111EB
	v = v ^ (v >> 31)
	return v
}

// latticeValue maps a lattice point's hash to [0, 1].
func latticeValue(x, y, z int32, seed uint32) float32 {
	h := hash3(x, y, z, seed)
	return float32(h>>11) / float32(1<<53)
}

// valueNoise3D returns trilinearly interpolated lattice noise in [0, 1]
// at a continuous 3D point.
func valueNoise3D(x, y, z float32, seed uint32) float32 {
	x0 := math32.Floor(x)
	y0 := math32.Floor(y)
	z0 := math32.Floor(z)
	ix0, iy0, iz0 := int32(x0), int32(y0), int32(z0)

	tx := fade(x - x0)
	ty := fade(y - y0)
	tz := fade(z - z0)

	c000 := latticeValue(ix0, iy0, iz0, seed)
	c100 := latticeValue(ix0+1, iy0, iz0, seed)
	c010 := latticeValue(ix0, iy0+1, iz0, seed)
	c110 := latticeValue(ix0+1, iy0+1, iz0, seed)
	c001 := latticeValue(ix0, iy0, iz0+1, seed)
	c101 := latticeValue(ix0+1, iy0, iz0+1, seed)
	c011 := latticeValue(ix0, iy0+1, iz0+1, seed)
	c111 := latticeValue(ix0+1, iy0+1, iz0+1, seed)

	x00 := lerp(c000, c100, tx)
	x10 := lerp(c010, c110, tx)
	x01 := lerp(c001, c101, tx)
	x11 := lerp(c011, c111, tx)

	y0i := lerp(x00, x10, ty)
	y1i := lerp(x01, x11, ty)

	return lerp(y0i, y1i, tz)
}

// octaveNoise3D accumulates fBm octaves of valueNoise3D, normalizing by
// total amplitude so the result stays within [0, 1].
func octaveNoise3D(x, y, z float32, seed uint32, octaves int, persistence, lacunarity float32) float32 {
	var total, amplitude, frequency, norm float32
	amplitude = 1
	frequency = 1
	for i := 0; i < octaves; i++ {
		octSeed := seed + uint32(i)*131
		total += valueNoise3D(x*frequency, y*frequency, z*frequency, octSeed) * amplitude
		norm += amplitude
		amplitude *= persistence
		frequency *= lacunarity
	}
	if norm == 0 {
		return 0
	}
	return total / norm
}
