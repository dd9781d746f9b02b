package chunkcache

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"planetforge/internal/chunk"
	"planetforge/internal/chunkid"
)

// EvictHandler is invoked when a Chunk leaves the Available cache,
// after its entry has been removed from the Available LRU. It is the hook through
// which the physics registry and GPU resources are cleaned up in the
// same frame as the eviction, per the lifecycle rule that evicted
// chunks are destroyed and removed from physics within the same or next
// frame.
type EvictHandler func(id chunkid.ID, c *chunk.Chunk)

// Cache tracks, for every ChunkId that has ever been submitted, which of
// the four lifecycle states it is in. It wraps two LRUs — one holding
// Available chunks, one marking Empty regions — plus a Pending set
// guarded by the same mutex.
//
// Exactly one of {Unknown, Pending, Empty, Available} holds for any
// ChunkId at any moment; Available implies not Pending and not Empty;
// Empty implies not Pending. These are asserted on every query, matching
// the priority check the original ChunkCache trait implementation uses:
// check Available first (asserting it's absent from Empty and Pending),
// then Empty (asserting absent from Pending), then Pending, else Unknown.
type Cache struct {
	mu        sync.Mutex
	available *lru.Cache[chunkid.ID, *chunk.Chunk]
	empty     *lru.Cache[chunkid.ID, struct{}]
	pending   map[chunkid.ID]struct{}
	onEvict   EvictHandler
}

// New constructs a Cache with the given Available/Empty LRU capacities.
// onEvict, if non-nil, fires synchronously whenever a Chunk is evicted
// from the Available LRU (by capacity pressure or explicit removal).
func New(availableCapacity, emptyCapacity int, onEvict EvictHandler) *Cache {
	c := &Cache{
		pending: make(map[chunkid.ID]struct{}),
		onEvict: onEvict,
	}

	available, err := lru.NewWithEvict(availableCapacity, func(id chunkid.ID, ch *chunk.Chunk) {
		c.handleAvailableEvict(id, ch)
	})
	if err != nil {
		panic(fmt.Sprintf("chunkcache: invalid available cache capacity: %v", err))
	}
	empty, err := lru.New[chunkid.ID, struct{}](emptyCapacity)
	if err != nil {
		panic(fmt.Sprintf("chunkcache: invalid empty cache capacity: %v", err))
	}
	c.available = available
	c.empty = empty
	return c
}

// handleAvailableEvict runs inside the Cache method whose LRU Add or
// Remove triggered it (ResolveAvailable or Evict), which is always
// already holding c.mu, so it must not re-enter the Cache's mutex.
func (c *Cache) handleAvailableEvict(id chunkid.ID, ch *chunk.Chunk) {
	ch.Destroy()
	if c.onEvict != nil {
		c.onEvict(id, ch)
	}
}

// State returns the current lifecycle state of id without promoting any
// LRU position — "lookup without promoting," used for assertions and for
// the LOD octree's traversal decisions.
func (c *Cache) State(id chunkid.ID) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked(id)
}

func (c *Cache) stateLocked(id chunkid.ID) State {
	if _, ok := c.available.Peek(id); ok {
		if _, inEmpty := c.empty.Peek(id); inEmpty {
			panic(fmt.Sprintf("chunkcache: invariant violated: %v is both Available and Empty", id))
		}
		if _, inPending := c.pending[id]; inPending {
			panic(fmt.Sprintf("chunkcache: invariant violated: %v is both Available and Pending", id))
		}
		return Available
	}
	if _, ok := c.empty.Peek(id); ok {
		if _, inPending := c.pending[id]; inPending {
			panic(fmt.Sprintf("chunkcache: invariant violated: %v is both Empty and Pending", id))
		}
		return Empty
	}
	if _, ok := c.pending[id]; ok {
		return Pending
	}
	return Unknown
}

// IsUnknown, IsEmpty, IsAvailable are convenience wrappers over State.
func (c *Cache) IsUnknown(id chunkid.ID) bool   { return c.State(id) == Unknown }
func (c *Cache) IsEmpty(id chunkid.ID) bool     { return c.State(id) == Empty }
func (c *Cache) IsAvailable(id chunkid.ID) bool { return c.State(id) == Available }

// MarkPending transitions id from Unknown to Pending. Callers (the
// submit step) must have already verified the id is Unknown.
func (c *Cache) MarkPending(id chunkid.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending[id] = struct{}{}
}

// PendingCount returns the number of ids currently Pending, used to
// enforce MAX_IN_FLIGHT.
func (c *Cache) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// ResolveEmpty transitions id from Pending to Empty.
func (c *Cache) ResolveEmpty(id chunkid.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
	c.empty.Add(id, struct{}{})
}

// ResolveAvailable transitions id from Pending to Available, storing the
// built Chunk. May trigger an eviction (of a different id) via onEvict
// if the Available LRU is at capacity.
func (c *Cache) ResolveAvailable(id chunkid.ID, ch *chunk.Chunk) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.pending, id)
	c.available.Add(id, ch)
}

// Peek looks up an Available chunk without promoting its LRU position —
// the "assemble" step's peek semantics, since drawing a chunk this frame
// shouldn't bump it ahead of chunks that are merely cached for reuse.
func (c *Cache) Peek(id chunkid.ID) (*chunk.Chunk, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available.Peek(id)
}

// Get looks up an Available chunk with promotion, for real accesses
// outside the per-frame assemble step.
func (c *Cache) Get(id chunkid.ID) (*chunk.Chunk, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.available.Get(id)
}

// Evict forcibly removes id from the Available cache (used by tests and
// by explicit eviction policies beyond capacity pressure).
func (c *Cache) Evict(id chunkid.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.available.Remove(id)
}
