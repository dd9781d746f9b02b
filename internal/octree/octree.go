// Package octree implements the per-frame LOD controller: a breadth-first
// traversal of a flat node array that decides, from the observer's
// position, which cubical regions must be drawn now (draw_set) and which
// are unknown and should be queued for meshing (fetch_set).
package octree

import (
	"github.com/chewxy/math32"

	"planetforge/internal/chunkcache"
	"planetforge/internal/chunkid"
	"planetforge/internal/stats"
)

// octantOffsets is the fixed order in which the eight children of a node
// are generated, in units of child size — part of the specification so
// that ChunkIds are reproducible across runs for the same input.
var octantOffsets = [8][3]float32{
	{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {1, 0, 0},
	{0, 1, 1}, {1, 0, 1}, {1, 1, 0}, {1, 1, 1},
}

// Node is an ephemeral per-frame record: its min-corner position, edge
// size, depth, derived ChunkId, child indices (if subdivided), and
// whether it should be drawn this frame. The octree is rebuilt from
// scratch every frame into a flat array; nodes are never retained
// across frames.
type Node struct {
	Position    [3]float32
	Size        float32
	Level       int
	ID          chunkid.ID
	Children    [8]int
	HasChildren bool
	Draw        bool
}

// Octree holds the flat node array rebuilt each frame.
type Octree struct {
	RootPosition [3]float32
	RootSize     float32
	MaxLevel     int
	VoxelDensity float32

	nodes   []Node
	timings *stats.Timings
}

// New constructs an Octree with a fixed root region and traversal depth.
// timings may be nil, in which case Rebuild does no phase tracking.
func New(rootPosition [3]float32, rootSize float32, maxLevel int, voxelDensity float32, timings *stats.Timings) *Octree {
	return &Octree{
		RootPosition: rootPosition,
		RootSize:     rootSize,
		MaxLevel:     maxLevel,
		VoxelDensity: voxelDensity,
		timings:      timings,
	}
}

// Rebuild re-derives the whole tree from the observer's position and
// returns the disjoint draw_set and fetch_set for this frame.
func (o *Octree) Rebuild(observer [3]float32, cache *chunkcache.Cache) (drawSet, fetchSet []chunkid.ID) {
	if o.timings != nil {
		defer o.timings.Track("octree.Rebuild")()
	}

	o.nodes = o.nodes[:0]

	root := Node{
		Position: o.RootPosition,
		Size:     o.RootSize,
		Level:    0,
		ID:       chunkid.New(o.RootPosition, o.RootSize, o.VoxelDensity),
		Draw:     true,
	}
	o.nodes = append(o.nodes, root)

	queue := []int{0}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		children := o.extendNode(idx, observer, cache)
		queue = append(queue, children...)
	}

	for _, n := range o.nodes {
		if n.Draw {
			drawSet = append(drawSet, n.ID)
		}
		if cache.IsUnknown(n.ID) {
			fetchSet = append(fetchSet, n.ID)
		}
	}
	return drawSet, fetchSet
}

// extendNode decides whether to subdivide the node at idx, applying the
// draw-subsumption rule: if every child ends up Available or Empty, the
// parent stops drawing and each Available child becomes drawable; if any
// child is Pending/Unknown, the parent remains the drawable fallback
// while finer data streams in. Returns the indices of any newly created
// children so the caller can enqueue them.
func (o *Octree) extendNode(idx int, observer [3]float32, cache *chunkcache.Cache) []int {
	n := o.nodes[idx]

	isAvailable := cache.IsAvailable(n.ID)
	if !isAvailable {
		o.nodes[idx].Draw = false
	}

	shouldSubdivide := isAvailable && n.Level < o.MaxLevel &&
		distanceToCube(n.Position, n.Size, observer) <= n.Size

	if !shouldSubdivide {
		return nil
	}

	childSize := n.Size / 2
	childIndices := make([]int, 8)
	for i := 0; i < 8; i++ {
		childPos := [3]float32{
			n.Position[0] + octantOffsets[i][0]*childSize,
			n.Position[1] + octantOffsets[i][1]*childSize,
			n.Position[2] + octantOffsets[i][2]*childSize,
		}
		child := Node{
			Position: childPos,
			Size:     childSize,
			Level:    n.Level + 1,
			ID:       chunkid.New(childPos, childSize, o.VoxelDensity),
			Draw:     false,
		}
		childIdx := len(o.nodes)
		o.nodes = append(o.nodes, child)
		childIndices[i] = childIdx
	}

	o.nodes[idx].HasChildren = true
	o.nodes[idx].Children = [8]int(childIndices)

	missingChild := false
	for _, ci := range childIndices {
		st := cache.State(o.nodes[ci].ID)
		if st != chunkcache.Available && st != chunkcache.Empty {
			missingChild = true
			break
		}
	}

	if missingChild {
		o.nodes[idx].Draw = true
	} else {
		o.nodes[idx].Draw = false
		for _, ci := range childIndices {
			st := cache.State(o.nodes[ci].ID)
			o.nodes[ci].Draw = st == chunkcache.Available
		}
	}

	return childIndices
}

// distanceToCube is the Euclidean distance from a query point to the
// closest point of an axis-aligned cube, componentwise
// max(min-o, 0, o-max), squared and rooted.
func distanceToCube(cubePosition [3]float32, size float32, query [3]float32) float32 {
	var dx, dy, dz float32
	dx = max3(cubePosition[0]-query[0], 0, query[0]-cubePosition[0]-size)
	dy = max3(cubePosition[1]-query[1], 0, query[1]-cubePosition[1]-size)
	dz = max3(cubePosition[2]-query[2], 0, query[2]-cubePosition[2]-size)
	return math32.Sqrt(dx*dx + dy*dy + dz*dz)
}

func max3(a, b, c float32) float32 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}
