package stats

import "testing"

func TestAccumulatorSnapshotResets(t *testing.T) {
	var a Accumulator
	a.AddTriangles(120)
	a.AddTriangles(60)
	a.SetPending(3)
	a.AddEvicted()
	a.AddPruned(2)

	f := a.Snapshot()
	if f.TrianglesDrawn != 180 || f.ChunksDrawn != 2 {
		t.Fatalf("unexpected triangle/chunk totals: %+v", f)
	}
	if f.ChunksPending != 3 || f.ChunksEvicted != 1 || f.PrunedNodes != 2 {
		t.Fatalf("unexpected counters: %+v", f)
	}

	second := a.Snapshot()
	if second != (Frame{}) {
		t.Fatalf("expected zeroed frame after snapshot, got %+v", second)
	}
}
