package meshbuild

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"planetforge/internal/field"
)

func sphereField(radius float32) field.Field {
	return field.FuncField(func(x, y, z float32) float32 {
		return math32.Sqrt(x*x+y*y+z*z) - radius
	})
}

func TestSphereVerticesOnSurface(t *testing.T) {
	radius := float32(5.0)
	f := sphereField(radius)
	mesh := Build(f, mgl32.Vec3{-10, -10, -10}, mgl32.Vec3{10, 10, 10}, 0.5, 0)

	if mesh.Empty() {
		t.Fatal("expected non-empty mesh for a sphere intersecting the region")
	}
	if len(mesh.Vertices) == 0 || len(mesh.Vertices) > 50000 {
		t.Fatalf("vertex count out of expected range: %d", len(mesh.Vertices))
	}

	const tol = 0.75 // depends on step size, generous for a 0.5 step
	for i, v := range mesh.Vertices {
		d := math32.Sqrt(v.Position.X()*v.Position.X() + v.Position.Y()*v.Position.Y() + v.Position.Z()*v.Position.Z())
		if math32.Abs(d-radius) > tol {
			t.Fatalf("vertex %d at distance %v from origin, want ~%v", i, d, radius)
		}
		outward := v.Position.Normalize()
		dot := outward.Dot(v.Normal)
		if dot < 0.3 {
			t.Fatalf("vertex %d normal %v not outward-facing relative to position %v (dot=%v)", i, v.Normal, v.Position, dot)
		}
	}
}

func TestEmptyFieldProducesNoTriangles(t *testing.T) {
	f := field.FuncField(func(x, y, z float32) float32 { return 1 })
	mesh := Build(f, mgl32.Vec3{-5, -5, -5}, mgl32.Vec3{5, 5, 5}, 1, 0)
	if !mesh.Empty() {
		t.Fatalf("expected empty mesh, got %d vertices", len(mesh.Vertices))
	}
}

func TestIdempotence(t *testing.T) {
	f := sphereField(5.0)
	min, max := mgl32.Vec3{-10, -10, -10}, mgl32.Vec3{10, 10, 10}
	a := Build(f, min, max, 1.0, 0)
	b := Build(f, min, max, 1.0, 0)

	if len(a.Vertices) != len(b.Vertices) || len(a.Indices) != len(b.Indices) {
		t.Fatalf("non-idempotent output: %d/%d vs %d/%d vertices/indices",
			len(a.Vertices), len(a.Indices), len(b.Vertices), len(b.Indices))
	}
	for i := range a.Vertices {
		if a.Vertices[i].Position != b.Vertices[i].Position {
			t.Fatalf("vertex %d differs between identical runs", i)
		}
	}
	for i := range a.Indices {
		if a.Indices[i] != b.Indices[i] {
			t.Fatalf("index %d differs between identical runs", i)
		}
	}
}

func TestHalfOpenGridNeverSamplesPastMax(t *testing.T) {
	f := field.FuncField(func(x, y, z float32) float32 { return x + y + z })
	min := mgl32.Vec3{0, 0, 0}
	max := mgl32.Vec3{2, 2, 2}
	mesh := Build(f, min, max, 1.0, 0)
	for _, v := range mesh.Vertices {
		if v.Position.X() > max.X() || v.Position.Y() > max.Y() || v.Position.Z() > max.Z() {
			t.Fatalf("vertex %v sampled outside [min, max]", v.Position)
		}
	}
}
