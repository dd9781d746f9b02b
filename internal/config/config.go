// Package config aggregates the numeric knobs the streaming pipeline
// leaves scattered and inconsistent across revisions of the original
// (root octree size, max LOD depth, gravity magnitude, planet base
// radius, voxel density, in-flight cap, worker count). A single
// immutable Planet value is built once at startup and passed down
// explicitly, never read back out of package-level mutable state.
package config

// Planet is the full set of tunables for one run of the engine.
type Planet struct {
	// Octree / LOD
	RootPosition       [3]float32
	RootSize           float32
	MaxLODDepth        int
	OctreeVoxelDensity float32

	// Chunk renderer
	MaxInFlight int
	NumSteps    int
	ChannelCap  int
	WorkerCount int

	// Chunk cache
	AvailableCacheSize int
	EmptyCacheSize     int

	// Physics
	Gravity float32

	// Field
	BaseRadius         float32
	LandscapeDeviation float32
	NumOctaves         int
	Persistence        float32
	Wavelength         float32
	Lacunarity         float32
	Seed               uint32

	// Window
	Width  int
	Height int

	// Logging
	LogLevel string
}

// Default returns the baseline configuration. Values are grounded on the
// original's own concrete defaults where one exists (PlanetSpec's
// defaults, the LevelOfDetail constructor call site, the teacher's own
// Gravity constant); knobs the source left inconsistent use the values
// the specification names as canonical (MaxInFlight=8, NumSteps=16).
func Default() Planet {
	return Planet{
		RootPosition:       [3]float32{-64, -64, -64},
		RootSize:           128.0,
		MaxLODDepth:        16,
		OctreeVoxelDensity: 32.0,

		MaxInFlight: 8,
		NumSteps:    16,
		ChannelCap:  128,
		WorkerCount: 4,

		AvailableCacheSize: 8192,
		EmptyCacheSize:     65536,

		Gravity: 15.0,

		BaseRadius:         32.0,
		LandscapeDeviation: 0.4,
		NumOctaves:         12,
		Persistence:        0.8,
		Wavelength:         7.0,
		Lacunarity:         1.91,
		Seed:               1,

		Width:  1280,
		Height: 720,

		LogLevel: "info",
	}
}

// Clamp enforces the invariants the rest of the engine assumes (positive
// sizes, at least one worker, a sane channel capacity) without silently
// rewriting values a caller deliberately chose outside the common range.
func (p *Planet) Clamp() {
	if p.RootSize <= 0 {
		p.RootSize = 128.0
	}
	if p.MaxLODDepth < 0 {
		p.MaxLODDepth = 0
	}
	if p.OctreeVoxelDensity <= 0 {
		p.OctreeVoxelDensity = 32.0
	}
	if p.MaxInFlight < 1 {
		p.MaxInFlight = 1
	}
	if p.NumSteps < 1 {
		p.NumSteps = 1
	}
	if p.ChannelCap < 1 {
		p.ChannelCap = 1
	}
	if p.WorkerCount < 1 {
		p.WorkerCount = 1
	}
	if p.AvailableCacheSize < 1 {
		p.AvailableCacheSize = 1
	}
	if p.EmptyCacheSize < 1 {
		p.EmptyCacheSize = 1
	}
}
