package renderer

import (
	"testing"
	"time"

	"planetforge/internal/chunk"
	"planetforge/internal/chunkcache"
	"planetforge/internal/chunkid"
	"planetforge/internal/field"
	"planetforge/internal/meshbuild"
	"planetforge/internal/octree"
	"planetforge/internal/physicsworld"
	"planetforge/internal/worker"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// runFrames drives one full frame of the pipeline the way cmd/planetview's
// loop does: LOD rebuild, drain, submit, assemble, physics sync/step.
func runFrames(
	n int,
	observer mgl32.Vec3,
	f field.Field,
	tree *octree.Octree,
	cache *chunkcache.Cache,
	cr *ChunkRenderer,
	world *physicsworld.World,
) (lastDrawSet int, lastTriangles int) {
	for i := 0; i < n; i++ {
		o := [3]float32{observer.X(), observer.Y(), observer.Z()}
		drawSet, fetchSet := tree.Rebuild(o, cache)

		_ = cr.Drain() // fakeGPU never fails an upload
		cr.Submit(fetchSet, f)

		drawn := cr.Assemble(drawSet)
		lastDrawSet = len(drawSet)
		lastTriangles = 0
		chunks := make([]*chunk.Chunk, 0, len(drawn))
		for _, d := range drawn {
			lastTriangles += d.Chunk.IndexCount / 3
			chunks = append(chunks, d.Chunk)
		}
		world.Sync(chunks)
		world.Step(1.0 / 60.0)

		time.Sleep(time.Millisecond)
	}
	return lastDrawSet, lastTriangles
}

func newPipeline(availableCap, emptyCap, channelCap, maxInFlight, numSteps, workers int, onEvict chunkcache.EvictHandler) (*chunkcache.Cache, *worker.Pool, *ChunkRenderer, *fakeGPU) {
	cache := chunkcache.New(availableCap, emptyCap, onEvict)
	pool := worker.New(workers, channelCap)
	gpu := &fakeGPU{}
	cr := New(gpu, cache, pool, channelCap, maxInFlight, numSteps, 32, nil)
	return cache, pool, cr, gpu
}

func TestScenarioDrawSetStabilizes(t *testing.T) {
	cache, pool, cr, _ := newPipeline(1024, 1024, 128, 8, 8, 4, nil)
	defer pool.Shutdown()

	tree := octree.New([3]float32{-64, -64, -64}, 128, 2, 32, nil)
	world := physicsworld.New(15, mgl32.Vec3{0, 0, 0}, 0.5)
	f := sphereField(10)

	var sizes []int
	for i := 0; i < 40; i++ {
		size, _ := runFrames(1, mgl32.Vec3{0, 0, 0}, f, tree, cache, cr, world)
		sizes = append(sizes, size)
	}

	last := sizes[len(sizes)-1]
	stableRun := 0
	for i := len(sizes) - 1; i >= 0 && sizes[i] == last; i-- {
		stableRun++
	}
	if stableRun < 5 {
		t.Fatalf("expected draw_set to stabilize over the tail of the run, sizes=%v", sizes)
	}
}

func TestScenarioEmptyRegionDrainsPending(t *testing.T) {
	cache, pool, cr, _ := newPipeline(64, 64, 128, 8, 8, 4, nil)
	defer pool.Shutdown()

	tree := octree.New([3]float32{-64, -64, -64}, 128, 2, 32, nil)
	world := physicsworld.New(15, mgl32.Vec3{0, 0, 0}, 0.5)
	alwaysOutside := field.FuncField(func(x, y, z float32) float32 { return 1 })

	for i := 0; i < 20; i++ {
		runFrames(1, mgl32.Vec3{0, 0, 0}, alwaysOutside, tree, cache, cr, world)
	}

	if cache.PendingCount() != 0 {
		t.Fatalf("expected Pending to drain to 0 for an always-empty field, got %d", cache.PendingCount())
	}
	o := [3]float32{0, 0, 0}
	drawSet, _ := tree.Rebuild(o, cache)
	if len(drawSet) != 0 {
		t.Fatalf("expected empty draw_set once the region resolves Empty, got %d", len(drawSet))
	}
}

func TestScenarioEvictionRemovesStaleRigidBodies(t *testing.T) {
	world := physicsworld.New(15, mgl32.Vec3{0, 0, 0}, 0.5)

	cache, pool, cr, _ := newPipeline(4, 64, 128, 8, 8, 4, func(id chunkid.ID, c *chunk.Chunk) {
		world.Unregister(c.UID)
	})
	defer pool.Shutdown()

	tree := octree.New([3]float32{-64, -64, -64}, 128, 1, 32, nil)
	f := sphereField(10)

	// Visit 8 distinct coarse regions repeatedly; the Available LRU's
	// capacity of 4 guarantees some of the earlier regions get evicted.
	positions := []mgl32.Vec3{
		{0, 0, 0}, {200, 0, 0}, {0, 200, 0}, {0, 0, 200},
		{-200, 0, 0}, {0, -200, 0}, {0, 0, -200}, {200, 200, 0},
	}

	for round := 0; round < 3; round++ {
		for _, p := range positions {
			runFrames(2, p, f, tree, cache, cr, world)
		}
	}

	// Eviction's OnEvict hook unregisters each evicted chunk's body, so the
	// physics world never tracks more bodies than the Available LRU can
	// hold as it turns over.
	registered := world.RegisteredUIDs()
	if len(registered) > 4 {
		t.Fatalf("expected at most the Available LRU's capacity (4) of registered bodies, got %d", len(registered))
	}
}

// slowField sleeps on every sample, standing in for a field whose
// meshing takes meaningfully longer than a frame.
type slowField struct {
	delay float32
}

func (s slowField) ValueAt(x, y, z float32) float32 {
	time.Sleep(time.Duration(s.delay) * time.Millisecond)
	return x*x + y*y + z*z - 100
}

func TestScenarioBackpressureNeverBlocksMainThread(t *testing.T) {
	cache, pool, cr, _ := newPipeline(64, 64, 4, 8, 2, 1, nil)
	defer pool.Shutdown()

	tree := octree.New([3]float32{-64, -64, -64}, 128, 2, 32, nil)
	world := physicsworld.New(15, mgl32.Vec3{0, 0, 0}, 0.5)
	f := slowField{delay: 5}

	const frames = 10
	start := time.Now()
	for i := 0; i < frames; i++ {
		o := [3]float32{0, 0, 0}
		drawSet, fetchSet := tree.Rebuild(o, cache)
		if err := cr.Drain(); err != nil {
			t.Fatalf("unexpected Drain error: %v", err)
		}
		cr.Submit(fetchSet, f)
		cr.Assemble(drawSet)
	}
	elapsed := time.Since(start)

	// A field this slow would take far longer than this if the main
	// thread ever blocked waiting on a worker; Submit/Drain/Assemble must
	// all return promptly regardless of in-flight job duration.
	if elapsed > time.Second {
		t.Fatalf("expected %d frames to run without blocking on slow meshing, took %v", frames, elapsed)
	}
	if cache.PendingCount() > 8 {
		t.Fatalf("expected Pending to stay within MAX_IN_FLIGHT even under backpressure, got %d", cache.PendingCount())
	}
}

// TestScenarioViewerTeleport covers an observer jump far outside the
// previously-resolved region: the old draw_set must vanish immediately
// (nothing nearby resolves to Available anymore) and a new non-empty
// draw_set must appear within a bounded number of frames once the
// worker pool resolves the new region.
func TestScenarioViewerTeleport(t *testing.T) {
	cache, pool, cr, _ := newPipeline(1024, 1024, 128, 8, 8, 4, nil)
	defer pool.Shutdown()

	tree := octree.New([3]float32{-64, -64, -64}, 128, 2, 32, nil)
	world := physicsworld.New(15, mgl32.Vec3{0, 0, 0}, 0.5)
	// Two radius-10 spheres, one at the origin and one at the teleport
	// destination, so there is a surface to stream in at both places.
	origin, destination := sphereField(10), sphereField(10)
	f := field.FuncField(func(x, y, z float32) float32 {
		return math32.Min(origin(x, y, z), destination(x, y-10000, z))
	})

	for i := 0; i < 30; i++ {
		runFrames(1, mgl32.Vec3{0, 0, 0}, f, tree, cache, cr, world)
	}
	o := [3]float32{0, 0, 0}
	before, _ := tree.Rebuild(o, cache)
	if len(before) == 0 {
		t.Fatalf("expected a stabilized draw_set at the origin before teleporting")
	}

	far := mgl32.Vec3{0, 10000, 0}
	farOctree := [3]float32{far.X() - 64, far.Y() - 64, far.Z() - 64}
	teleported := octree.New(farOctree, 128, 2, 32, nil)

	fo := [3]float32{far.X(), far.Y(), far.Z()}
	immediateDrawSet, _ := teleported.Rebuild(fo, cache)
	if len(immediateDrawSet) != 0 {
		t.Fatalf("expected the teleport destination's draw_set to start empty (nothing resolved there yet), got %d", len(immediateDrawSet))
	}

	var lastSize int
	const maxFrames = 40
	resolved := false
	for i := 0; i < maxFrames; i++ {
		size, _ := runFrames(1, far, f, teleported, cache, cr, world)
		lastSize = size
		if size > 0 {
			resolved = true
			break
		}
	}
	if !resolved {
		t.Fatalf("expected a non-empty draw_set to appear within %d frames after teleporting, last size=%d", maxFrames, lastSize)
	}
}

// TestScenarioCubeSphereConnectivity meshes a sphere of radius 5 inside
// the box [-10, 10]^3 at step 0.5 and checks the vertex count lands in
// the bounded range a closed, connected iso-surface at this resolution
// should produce.
func TestScenarioCubeSphereConnectivity(t *testing.T) {
	f := sphereField(5)
	min := mgl32.Vec3{-10, -10, -10}
	max := mgl32.Vec3{10, 10, 10}
	mesh := meshbuild.Build(f, min, max, 0.5, 0)

	if mesh.Empty() {
		t.Fatalf("expected a non-empty mesh for a sphere inscribed in its sampling box")
	}
	n := len(mesh.Vertices)
	if n <= 0 || n >= 50000 {
		t.Fatalf("expected 0 < vertex count < 50000 for this resolution, got %d", n)
	}
	if len(mesh.Indices)%3 != 0 {
		t.Fatalf("expected a whole number of triangles, got %d indices", len(mesh.Indices))
	}
}
