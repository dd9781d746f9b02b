package renderer

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog/log"

	"planetforge/internal/chunk"
	"planetforge/internal/chunkcache"
	"planetforge/internal/chunkid"
	"planetforge/internal/field"
	"planetforge/internal/meshbuild"
	"planetforge/internal/stats"
	"planetforge/internal/worker"
)

// jobResult is what a worker posts back on completion: a meshed region,
// possibly empty, its collision mesh (already built off the main
// thread), plus the ChunkId it was meshed for.
type jobResult struct {
	id        chunkid.ID
	mesh      *meshbuild.Mesh
	collision []chunk.Triangle
}

// ChunkRenderer drives the per-frame drain/submit/assemble cycle: it
// owns the worker pool and the MPSC result channel, and maintains the
// chunk cache on the main thread.
type ChunkRenderer struct {
	gpu         Context
	cache       *chunkcache.Cache
	pool        *worker.Pool
	results     chan jobResult
	maxInFlight int
	numSteps    int
	density     float32
	timings     *stats.Timings
}

// New constructs a ChunkRenderer bound to a GPU context, a cache, and a
// worker pool. channelCap is the bounded MPSC result channel capacity
// (specified 128); maxInFlight bounds concurrently pending jobs
// (specified 8); numSteps is the per-axis marching cubes subdivision
// (specified 16). timings may be nil, in which case no phase tracking
// is recorded.
func New(gpu Context, cache *chunkcache.Cache, pool *worker.Pool, channelCap, maxInFlight, numSteps int, voxelDensity float32, timings *stats.Timings) *ChunkRenderer {
	return &ChunkRenderer{
		gpu:         gpu,
		cache:       cache,
		pool:        pool,
		results:     make(chan jobResult, channelCap),
		maxInFlight: maxInFlight,
		numSteps:    numSteps,
		density:     voxelDensity,
		timings:     timings,
	}
}

// Drain non-blockingly receives every completed job, uploads non-empty
// meshes to the GPU and inserts Available chunks, or inserts Empty
// chunks for empty results. Must run on the main thread. A GpuResource
// failure aborts the drain and is returned to the caller rather than
// panicking — per the error taxonomy, only LogicViolation assertions
// abort the process; a failed upload fails just this frame.
func (r *ChunkRenderer) Drain() error {
	if r.timings != nil {
		defer r.timings.Track("renderer.Drain")()
	}
	for {
		select {
		case res := <-r.results:
			if err := r.handleResult(res); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (r *ChunkRenderer) handleResult(res jobResult) error {
	if res.mesh.Empty() {
		r.cache.ResolveEmpty(res.id)
		return nil
	}

	gpuBuffers, err := r.gpu.Upload(res.mesh)
	if err != nil {
		return fmt.Errorf("renderer: uploading chunk %v: %w", res.id, err)
	}
	c := chunk.New(res.id, res.mesh, res.collision, gpuBuffers)
	r.cache.ResolveAvailable(res.id, c)
	return nil
}

// Submit schedules marching-cubes jobs for fetch_set ids, up to the
// MAX_IN_FLIGHT cap, and marks each submitted id Pending. Ids beyond the
// cap, or whose submission is dropped because the worker queue is full,
// are left Unknown and will be re-proposed by the LOD controller next
// frame.
func (r *ChunkRenderer) Submit(fetchSet []chunkid.ID, f field.Field) {
	if r.timings != nil {
		defer r.timings.Track("renderer.Submit")()
	}
	for _, id := range fetchSet {
		if r.cache.PendingCount() >= r.maxInFlight {
			return
		}

		id := id
		step := id.SizeF(r.density) / float32(r.numSteps)
		submitted := r.pool.Submit(func() {
			mesh := r.mesh(f, id, step)
			collision := chunk.CollisionMesh(mesh)
			r.results <- jobResult{id: id, mesh: mesh, collision: collision}
		})
		if !submitted {
			// The id is not marked Pending, so it stays Unknown and the
			// LOD controller re-proposes it next frame.
			log.Warn().Interface("chunk_id", id).Msg("worker pool rejected mesh job, id left unknown")
			continue
		}
		// Results are only consumed by Drain on this same thread, so
		// marking Pending after the job is queued cannot miss its result.
		r.cache.MarkPending(id)
	}
}

func (r *ChunkRenderer) mesh(f field.Field, id chunkid.ID, step float32) *meshbuild.Mesh {
	position := id.Position(r.density)
	size := id.SizeF(r.density)
	min := mgl32.Vec3{position[0], position[1], position[2]}
	max := mgl32.Vec3{position[0] + size + step, position[1] + size + step, position[2] + size + step}
	return meshbuild.Build(f, min, max, step, 0)
}

// DrawableChunk pairs a Chunk with the model transform its geometry was
// generated in (world space already, since marching cubes samples the
// field directly in world coordinates — model is always identity, kept
// for symmetry with Context.Draw's signature).
type DrawableChunk struct {
	Chunk *chunk.Chunk
	Model mgl32.Mat4
}

// Assemble resolves draw_set into concrete Chunks using peek semantics
// (no LRU promotion), skipping and logging any id unexpectedly absent
// because an eviction raced between the LOD rebuild and this call.
func (r *ChunkRenderer) Assemble(drawSet []chunkid.ID) []DrawableChunk {
	if r.timings != nil {
		defer r.timings.Track("renderer.Assemble")()
	}
	out := make([]DrawableChunk, 0, len(drawSet))
	for _, id := range drawSet {
		c, ok := r.cache.Peek(id)
		if !ok {
			log.Warn().Interface("chunk_id", id).Msg("draw_set id no longer available, skipping")
			continue
		}
		out = append(out, DrawableChunk{Chunk: c, Model: mgl32.Ident4()})
	}
	return out
}
