// Package chunk defines everything produced by meshing one cubical
// field region: GPU-ready buffers and a shareable collision mesh, both
// keyed by a session-unique uid.
package chunk

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"planetforge/internal/chunkid"
	"planetforge/internal/meshbuild"
)

var nextUID uint64

// NextUID hands out a monotonically increasing, session-unique chunk
// identifier. Distinct across the lifetime of a process, stable for as
// long as the Chunk it names lives in the Available cache.
func NextUID() uint64 {
	return atomic.AddUint64(&nextUID, 1)
}

// Triangle is one face of a collision mesh, in world space.
type Triangle struct {
	A, B, C mgl32.Vec3
}

// GPUBuffers is the handle a Context returns after uploading a mesh's
// vertex and index data. Release must be safe to call exactly once, on
// the main thread, when the Chunk is evicted.
type GPUBuffers interface {
	Release()
}

// Chunk is everything produced by meshing one region: a uid distinct
// across the session, the GPU buffers ready for drawing, and a
// triangle-soup collision mesh used by the physics world. A Chunk with
// zero vertices is never constructed — callers insert into the Empty
// cache instead.
type Chunk struct {
	UID        uint64
	ID         chunkid.ID
	GPU        GPUBuffers
	Collision  []Triangle
	VertexCount int
	IndexCount  int
}

// New builds a Chunk from a meshed region's mesh, a precomputed collision
// mesh, and GPU buffers. It panics if the mesh is empty — per the data
// model, empty meshes are represented by the Empty cache state, never by
// a zero-vertex Chunk.
func New(id chunkid.ID, mesh *meshbuild.Mesh, collision []Triangle, gpu GPUBuffers) *Chunk {
	if mesh.Empty() {
		panic("chunk: New called with an empty mesh")
	}
	return &Chunk{
		UID:         NextUID(),
		ID:          id,
		GPU:         gpu,
		Collision:   collision,
		VertexCount: len(mesh.Vertices),
		IndexCount:  len(mesh.Indices),
	}
}

// CollisionMesh builds a triangle soup directly from the indexed mesh,
// one Triangle per three indices — the same geometry drawn, reused for
// collision rather than re-meshed. Pure and safe to call off the main
// thread; callers construct it in the worker that produces the mesh.
func CollisionMesh(mesh *meshbuild.Mesh) []Triangle {
	tris := make([]Triangle, 0, len(mesh.Indices)/3)
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a := mesh.Vertices[mesh.Indices[i]].Position
		b := mesh.Vertices[mesh.Indices[i+1]].Position
		c := mesh.Vertices[mesh.Indices[i+2]].Position
		tris = append(tris, Triangle{A: a, B: b, C: c})
	}
	return tris
}

// Destroy releases the chunk's GPU resources. Called on LRU eviction;
// must run on the main thread since the GPU context is main-thread-only.
func (c *Chunk) Destroy() {
	if c.GPU != nil {
		c.GPU.Release()
	}
}
