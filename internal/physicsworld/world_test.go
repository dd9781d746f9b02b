package physicsworld

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"planetforge/internal/chunk"
	"planetforge/internal/chunkid"
)

func flatTriangle(y float32) chunk.Triangle {
	return chunk.Triangle{
		A: mgl32.Vec3{-10, y, -10},
		B: mgl32.Vec3{10, y, -10},
		C: mgl32.Vec3{0, y, 10},
	}
}

func TestSyncRegistersAndUnregisters(t *testing.T) {
	w := New(15, mgl32.Vec3{0, 10, 0}, 0.5)

	id1 := chunkid.ID{X: 0, Y: 0, Z: 0, Size: 1}
	id2 := chunkid.ID{X: 1, Y: 0, Z: 0, Size: 1}
	c1 := &chunk.Chunk{UID: 1, ID: id1, Collision: []chunk.Triangle{flatTriangle(0)}}
	c2 := &chunk.Chunk{UID: 2, ID: id2, Collision: []chunk.Triangle{flatTriangle(0)}}

	w.Sync([]*chunk.Chunk{c1, c2})
	regs := w.RegisteredUIDs()
	if !regs[1] || !regs[2] || len(regs) != 2 {
		t.Fatalf("expected both uids registered, got %v", regs)
	}

	w.Sync([]*chunk.Chunk{c1})
	regs = w.RegisteredUIDs()
	if !regs[1] || regs[2] || len(regs) != 1 {
		t.Fatalf("expected only uid 1 registered after resync, got %v", regs)
	}
}

func TestUnregisterImmediate(t *testing.T) {
	w := New(15, mgl32.Vec3{0, 10, 0}, 0.5)
	id1 := chunkid.ID{X: 0, Y: 0, Z: 0, Size: 1}
	c1 := &chunk.Chunk{UID: 1, ID: id1, Collision: []chunk.Triangle{flatTriangle(0)}}
	w.Sync([]*chunk.Chunk{c1})

	w.Unregister(1)
	if w.RegisteredUIDs()[1] {
		t.Fatal("expected uid 1 to be unregistered immediately")
	}
}

func TestGravityPullsObserverTowardOrigin(t *testing.T) {
	w := New(15, mgl32.Vec3{0, 50, 0}, 0.5)
	startDist := w.Observer.Position.Len()

	for i := 0; i < 10; i++ {
		w.Step(1.0 / 60.0)
	}

	if w.Observer.Position.Len() >= startDist {
		t.Fatalf("expected observer to fall toward origin, started at %f now at %f",
			startDist, w.Observer.Position.Len())
	}
}

func TestObserverRestsOnFlatGround(t *testing.T) {
	w := New(15, mgl32.Vec3{0, 1, 0}, 0.5)
	id1 := chunkid.ID{X: 0, Y: 0, Z: 0, Size: 1}
	c1 := &chunk.Chunk{UID: 1, ID: id1, Collision: []chunk.Triangle{flatTriangle(0)}}
	w.Sync([]*chunk.Chunk{c1})

	for i := 0; i < 600; i++ {
		w.Step(1.0 / 60.0)
	}

	if w.Observer.Position.Y() < 0.5-1e-3 {
		t.Fatalf("expected observer to rest at or above radius 0.5, got y=%f", w.Observer.Position.Y())
	}
}
