package field

import "github.com/chewxy/math32"

// PlanetSpec parameterizes the example planetary field: base radius,
// landscape deviation, octave count, persistence, wavelength, lacunarity
// and a seed. Defaults are ported verbatim from the original's
// PlanetSpec::default().
type PlanetSpec struct {
	BaseRadius         float32
	LandscapeDeviation float32
	NumOctaves         int
	Persistence        float32
	Wavelength         float32
	Lacunarity         float32
	Seed               uint32
}

// DefaultPlanetSpec mirrors the original's hardcoded defaults.
func DefaultPlanetSpec() PlanetSpec {
	return PlanetSpec{
		BaseRadius:         32.0,
		LandscapeDeviation: 0.4,
		NumOctaves:         12,
		Persistence:        0.8,
		Wavelength:         7.0,
		Lacunarity:         1.91,
		Seed:               1,
	}
}

// PlanetField composes three fBm layers ("mountains", "plains", and a
// "mix" selector) over a unit-sphere projection of the sample point and
// returns |p| - (R + R*deviation*perturbation), so the iso-value 0
// describes a planetary surface.
type PlanetField struct {
	spec PlanetSpec
}

// NewPlanetField constructs a field from a spec.
func NewPlanetField(spec PlanetSpec) *PlanetField {
	return &PlanetField{spec: spec}
}

func (p *PlanetField) ValueAt(x, y, z float32) float32 {
	distance := math32.Sqrt(x*x + y*y + z*z)
	if distance < 1e-9 {
		return -p.spec.BaseRadius
	}
	ux, uy, uz := x/distance, y/distance, z/distance

	s := p.spec
	mountains := octaveNoise3D(ux/s.Wavelength, uy/s.Wavelength, uz/s.Wavelength,
		s.Seed, s.NumOctaves, s.Persistence, s.Lacunarity)

	plainsSeed := s.Seed + 7919
	plains := octaveNoise3D(ux/3.0, uy/3.0, uz/3.0, plainsSeed, 3, 0.9, 1.8)

	mixSeed := s.Seed + 104729
	mixX := ux*3.0 + 10.0
	mixY := uy*3.0 + 10.0
	mixZ := uz*3.0 + 10.0
	mix := octaveNoise3D(mixX/2.0, mixY/2.0, mixZ/2.0, mixSeed, 2, 0.8, 1.91)
	alpha := (1.0 + mix) / 2.0

	u := s.LandscapeDeviation * s.BaseRadius * 0.01

	var perturbation float32
	switch {
	case alpha > 0.45 && alpha < 0.55:
		renorm := (alpha - 0.45) / 0.10
		perturbation = plains*(1-renorm) + mountains*renorm
	case alpha <= 0.45:
		perturbation = plains
	default:
		perturbation = mountains + u
	}

	radius := s.BaseRadius + s.LandscapeDeviation*s.BaseRadius*perturbation
	return distance - radius
}

// heightmapField adds an optional additive secondary displacement layer
// to an existing field, supplementing the heightmap-overlay path present
// in the original source but dropped from the distilled specification.
type heightmapField struct {
	base    Field
	sampler func(x, y, z float32) float32
	scale   float32
}

// WithHeightmap wraps a field with an additive heightmap-style
// perturbation. sampler returns a displacement in [-1, 1] for a given
// unit-sphere direction; scale controls its magnitude in field units.
func WithHeightmap(base Field, sampler func(x, y, z float32) float32, scale float32) Field {
	return &heightmapField{base: base, sampler: sampler, scale: scale}
}

func (h *heightmapField) ValueAt(x, y, z float32) float32 {
	base := h.base.ValueAt(x, y, z)
	distance := math32.Sqrt(x*x + y*y + z*z)
	if distance < 1e-9 {
		return base
	}
	return base - h.sampler(x/distance, y/distance, z/distance)*h.scale
}
