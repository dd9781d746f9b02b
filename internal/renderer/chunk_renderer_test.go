package renderer

import (
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"planetforge/internal/chunk"
	"planetforge/internal/chunkcache"
	"planetforge/internal/chunkid"
	"planetforge/internal/field"
	"planetforge/internal/meshbuild"
	"planetforge/internal/worker"
)

// fakeGPU stands in for a real GL context in tests; Upload just counts
// how many times it was invoked instead of touching any GPU state.
type fakeGPU struct {
	uploads int
}

func (f *fakeGPU) Upload(mesh *meshbuild.Mesh) (chunk.GPUBuffers, error) {
	f.uploads++
	return fakeBuffers{}, nil
}
func (f *fakeGPU) Draw(gpu chunk.GPUBuffers, model mgl32.Mat4) {}
func (f *fakeGPU) Clear()                                      {}

type fakeBuffers struct{}

func (fakeBuffers) Release() {}

func sphereField(radius float32) field.FuncField {
	return func(x, y, z float32) float32 {
		return math32.Sqrt(x*x+y*y+z*z) - radius
	}
}

func waitForPendingDrain(cache *chunkcache.Cache, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cache.PendingCount() == 0 {
			return
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSubmitRespectsMaxInFlight(t *testing.T) {
	cache := chunkcache.New(64, 64, nil)
	pool := worker.New(0, 128) // zero workers: jobs queue but never run
	defer pool.Shutdown()
	gpu := &fakeGPU{}
	r := New(gpu, cache, pool, 128, 2, 16, 32, nil)

	ids := []chunkid.ID{
		{X: 0, Y: 0, Z: 0, Size: 32},
		{X: 1, Y: 0, Z: 0, Size: 32},
		{X: 2, Y: 0, Z: 0, Size: 32},
	}
	r.Submit(ids, sphereField(10))

	if got := cache.PendingCount(); got != 2 {
		t.Fatalf("expected PendingCount capped at 2, got %d", got)
	}
}

func TestDrainResolvesEmptyAndAvailable(t *testing.T) {
	cache := chunkcache.New(64, 64, nil)
	pool := worker.New(2, 128)
	defer pool.Shutdown()
	gpu := &fakeGPU{}
	r := New(gpu, cache, pool, 128, 8, 16, 32, nil)

	emptyID := chunkid.ID{X: 0, Y: 0, Z: 0, Size: 32}
	availID := chunkid.ID{X: -16, Y: 0, Z: 0, Size: 32}

	r.Submit([]chunkid.ID{emptyID}, field.FuncField(func(x, y, z float32) float32 { return 1 }))
	r.Submit([]chunkid.ID{availID}, sphereField(1))

	waitForPendingDrain(cache, time.Second)
	if err := r.Drain(); err != nil {
		t.Fatalf("unexpected Drain error: %v", err)
	}

	if !cache.IsEmpty(emptyID) {
		t.Fatalf("expected empty field region to resolve to Empty, got %v", cache.State(emptyID))
	}
	if !cache.IsAvailable(availID) {
		t.Fatalf("expected sphere-intersecting region to resolve to Available, got %v", cache.State(availID))
	}
	if gpu.uploads != 1 {
		t.Fatalf("expected exactly one GPU upload, got %d", gpu.uploads)
	}
}

func TestAssembleUsesPeekSemantics(t *testing.T) {
	cache := chunkcache.New(64, 64, nil)
	pool := worker.New(1, 128)
	defer pool.Shutdown()
	gpu := &fakeGPU{}
	r := New(gpu, cache, pool, 128, 8, 16, 32, nil)

	id := chunkid.ID{X: 0, Y: 0, Z: 0, Size: 32}
	r.Submit([]chunkid.ID{id}, sphereField(1))
	waitForPendingDrain(cache, time.Second)
	if err := r.Drain(); err != nil {
		t.Fatalf("unexpected Drain error: %v", err)
	}

	drawn := r.Assemble([]chunkid.ID{id})
	if len(drawn) != 1 {
		t.Fatalf("expected 1 drawable chunk, got %d", len(drawn))
	}

	missing := chunkid.ID{X: 999, Y: 0, Z: 0, Size: 32}
	drawn = r.Assemble([]chunkid.ID{missing})
	if len(drawn) != 0 {
		t.Fatalf("expected missing id to be skipped, got %d", len(drawn))
	}
}
