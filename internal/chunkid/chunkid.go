// Package chunkid quantizes a cubical region's minimum-corner position
// and edge length into a stable, hashable identity.
package chunkid

import "github.com/chewxy/math32"

// ID is the quantized identity of a cubical region: (x, y, z, size)
// multiplied by a fixed density and floored to integers. Two nodes
// describing the same geometric region produce the same ID; the
// reconstruction of position and size from an ID is exact to the
// quantization grid as long as size is of the form root_size / 2^k.
type ID struct {
	X, Y, Z int32
	Size    uint32
}

// New quantizes a position and size at the given voxel density, ported
// verbatim from the original ChunkId::new arithmetic (multiply, floor,
// cast to integer).
func New(position [3]float32, size float32, density float32) ID {
	return ID{
		X:    int32(math32.Floor(position[0] * density)),
		Y:    int32(math32.Floor(position[1] * density)),
		Z:    int32(math32.Floor(position[2] * density)),
		Size: uint32(size * density),
	}
}

// Position reconstructs the minimum-corner position from the ID.
func (id ID) Position(density float32) [3]float32 {
	return [3]float32{
		float32(id.X) / density,
		float32(id.Y) / density,
		float32(id.Z) / density,
	}
}

// SizeF reconstructs the edge length from the ID.
func (id ID) SizeF(density float32) float32 {
	return float32(id.Size) / density
}
