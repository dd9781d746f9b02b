// Package field defines the pluggable scalar field abstraction the
// marching-cubes mesher samples, plus a concrete planetary field built
// from layered fractal-Brownian noise.
package field

import "github.com/chewxy/math32"

// eps is the finite-difference step used by the default gradient
// implementation. Ported verbatim from the original scalar field's EPS.
const eps float32 = 1e-4

// Field is a pure, total, thread-safe scalar function of space. The
// iso-surface extracted downstream is the level set where ValueAt
// returns the configured iso-value (conventionally 0 for the planetary
// field below).
type Field interface {
	ValueAt(x, y, z float32) float32
}

// GradientField is implemented by fields that supply their own gradient
// instead of relying on the package-level finite-difference default.
type GradientField interface {
	Field
	GradientAt(x, y, z float32) [3]float32
}

// Gradient returns the gradient direction of f at (x, y, z). If f
// implements GradientField the override is used; otherwise it returns the
// centered differences f(p+eps) - f(p-eps) per axis, not divided by
// 2*eps, so the vector is the gradient scaled by 2*eps. A zero gradient
// is a legitimate result and is returned un-normalized — callers normalize for use as a
// normal and substitute any unit vector when the result is exactly zero.
func Gradient(f Field, x, y, z float32) [3]float32 {
	if g, ok := f.(GradientField); ok {
		return g.GradientAt(x, y, z)
	}
	dx := f.ValueAt(x+eps, y, z) - f.ValueAt(x-eps, y, z)
	dy := f.ValueAt(x, y+eps, z) - f.ValueAt(x, y-eps, z)
	dz := f.ValueAt(x, y, z+eps) - f.ValueAt(x, y, z-eps)
	return [3]float32{dx, dy, dz}
}

// NormalizedGradient returns the unit-length gradient, substituting
// (0, 1, 0) when the gradient is degenerate (zero length).
func NormalizedGradient(f Field, x, y, z float32) [3]float32 {
	g := Gradient(f, x, y, z)
	length := math32.Sqrt(g[0]*g[0] + g[1]*g[1] + g[2]*g[2])
	if length < 1e-20 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{g[0] / length, g[1] / length, g[2] / length}
}

// FuncField adapts a plain function into a Field, used by tests and by
// simple synthetic fields (spheres, planes) that don't need the full
// PlanetField machinery.
type FuncField func(x, y, z float32) float32

func (f FuncField) ValueAt(x, y, z float32) float32 { return f(x, y, z) }
