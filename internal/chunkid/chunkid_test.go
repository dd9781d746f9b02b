package chunkid

import "testing"

const density = 32.0

func TestRoundTripPowerOfTwoSizes(t *testing.T) {
	rootSize := float32(128.0)
	for level := 0; level <= 6; level++ {
		size := rootSize
		for i := 0; i < level; i++ {
			size /= 2
		}
		pos := [3]float32{-64, -64, -64}
		for step := 0; step < level; step++ {
			pos[0] += size
		}
		id := New(pos, size, density)
		gotPos := id.Position(density)
		gotSize := id.SizeF(density)
		if gotPos[0] != pos[0] || gotPos[1] != pos[1] || gotPos[2] != pos[2] {
			t.Fatalf("level %d: position round trip mismatch: got %v want %v", level, gotPos, pos)
		}
		if gotSize != size {
			t.Fatalf("level %d: size round trip mismatch: got %v want %v", level, gotSize, size)
		}
	}
}

func TestSameRegionSameID(t *testing.T) {
	pos := [3]float32{1.5, 2.25, -3.75}
	size := float32(4.0)
	a := New(pos, size, density)
	b := New(pos, size, density)
	if a != b {
		t.Fatalf("identical regions produced different ids: %v != %v", a, b)
	}
}
