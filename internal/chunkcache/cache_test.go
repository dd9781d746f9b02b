package chunkcache

import (
	"testing"

	"planetforge/internal/chunk"
	"planetforge/internal/chunkid"
)

func id(x int32) chunkid.ID {
	return chunkid.ID{X: x, Y: 0, Z: 0, Size: 1}
}

func TestExactlyOneStateHolds(t *testing.T) {
	c := New(4, 4, nil)
	a := id(1)

	if c.State(a) != Unknown {
		t.Fatalf("fresh id should be Unknown, got %v", c.State(a))
	}
	c.MarkPending(a)
	if c.State(a) != Pending {
		t.Fatalf("after MarkPending, expected Pending, got %v", c.State(a))
	}
	c.ResolveEmpty(a)
	if c.State(a) != Empty {
		t.Fatalf("after ResolveEmpty, expected Empty, got %v", c.State(a))
	}
}

func TestAvailableImpliesNotPendingNotEmpty(t *testing.T) {
	c := New(4, 4, nil)
	a := id(2)
	c.MarkPending(a)
	ch := &chunk.Chunk{ID: a}
	c.ResolveAvailable(a, ch)
	if c.State(a) != Available {
		t.Fatalf("expected Available, got %v", c.State(a))
	}
	if c.PendingCount() != 0 {
		t.Fatalf("expected 0 pending after resolve, got %d", c.PendingCount())
	}
}

func TestEvictionNotifiesHandler(t *testing.T) {
	var evicted []chunkid.ID
	c := New(1, 4, func(id chunkid.ID, ch *chunk.Chunk) {
		evicted = append(evicted, id)
	})
	a, b := id(1), id(2)
	c.ResolveAvailable(a, &chunk.Chunk{ID: a})
	c.ResolveAvailable(b, &chunk.Chunk{ID: b}) // capacity 1: evicts a

	if len(evicted) != 1 || evicted[0] != a {
		t.Fatalf("expected eviction of %v, got %v", a, evicted)
	}
	if c.State(a) != Unknown {
		t.Fatalf("evicted id should revert to Unknown, got %v", c.State(a))
	}
	if c.State(b) != Available {
		t.Fatalf("expected b Available, got %v", c.State(b))
	}
}

func TestPendingCountBound(t *testing.T) {
	c := New(8, 8, nil)
	const maxInFlight = 8
	for i := int32(0); i < 20; i++ {
		if c.PendingCount() >= maxInFlight {
			break
		}
		c.MarkPending(id(i))
	}
	if c.PendingCount() > maxInFlight {
		t.Fatalf("pending count exceeded MAX_IN_FLIGHT: %d", c.PendingCount())
	}
}
