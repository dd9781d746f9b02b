// Package stats accumulates the per-frame counters used to watch the
// streaming pipeline from the outside: how much geometry is on screen,
// how much work is still in flight, and how aggressively the cache is
// turning over. Grounded on the teacher's internal/profiling package,
// which accumulates a comparable set of per-frame counters and exposes
// them as a single immutable snapshot struct rather than live gauges.
package stats

// Frame is an immutable snapshot of one frame's pipeline counters.
type Frame struct {
	TrianglesDrawn int
	ChunksDrawn    int
	ChunksPending  int
	ChunksEvicted  int
	PrunedNodes    int
}

// Accumulator collects counters across a frame's pipeline stages
// (octree rebuild, renderer drain/submit/assemble, physics sync) and
// yields a Frame snapshot at the end of the frame.
type Accumulator struct {
	frame Frame
}

// AddTriangles records geometry drawn for one chunk this frame.
func (a *Accumulator) AddTriangles(n int) {
	a.frame.TrianglesDrawn += n
	a.frame.ChunksDrawn++
}

// SetPending records the cache's current in-flight count.
func (a *Accumulator) SetPending(n int) {
	a.frame.ChunksPending = n
}

// AddEvicted records one LRU eviction.
func (a *Accumulator) AddEvicted() {
	a.frame.ChunksEvicted++
}

// AddPruned records n octree nodes pruned by the draw-subsumption rule
// (parents whose children were all resolved and stopped drawing).
func (a *Accumulator) AddPruned(n int) {
	a.frame.PrunedNodes += n
}

// Snapshot returns the accumulated Frame and resets the accumulator for
// the next frame.
func (a *Accumulator) Snapshot() Frame {
	f := a.frame
	a.frame = Frame{}
	return f
}
