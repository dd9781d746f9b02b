// Package meshbuild extracts an indexed triangle mesh from a scalar
// field region using the marching-cubes algorithm, with gradient-based
// vertex normals.
package meshbuild

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"planetforge/internal/field"
)

// Vertex is the per-vertex payload the GPU interface consumes: position,
// normal, and a barycentric coordinate passed through the vertex shader
// for masking cross-LOD cracks; the bundled fragment shader does not
// read it.
type Vertex struct {
	Position    mgl32.Vec3
	Normal      mgl32.Vec3
	Barycentric mgl32.Vec3
}

// Mesh is the output of Build: an indexed triangle list ready for GPU
// upload. The collision triangle soup is derived from it separately by
// chunk.CollisionMesh.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
}

// Empty reports whether the mesh carries no geometry — the case in
// which the chunk cache stores Empty rather than Available.
func (m *Mesh) Empty() bool {
	return m == nil || len(m.Vertices) == 0
}

// corner offsets in cube-local units, Bourke numbering: corner k is at
// min + cornerOffset[k]*step.
var cornerOffsets = [8][3]float32{
	{0, 0, 0}, {1, 0, 0}, {1, 1, 0}, {0, 1, 0},
	{0, 0, 1}, {1, 0, 1}, {1, 1, 1}, {0, 1, 1},
}

// edgeCorners maps each of the 12 cube edges to the pair of corner
// indices it connects, per Bourke's numbering.
var edgeCorners = [12][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
}

// Build meshes the field region [min, max) with cubical cells of edge
// step, at the given iso-value. It iterates the half-open grid so the
// outer loop never samples past max, evaluates the eight corners of each
// cell, looks up the cube index and edge mask, interpolates edge
// vertices (falling back to the midpoint when the two corner values are
// within 1e-6 of each other), deduplicates vertices within a cell, and
// emits triangles from the triangle table honoring its winding order.
func Build(f field.Field, min, max mgl32.Vec3, step, iso float32) *Mesh {
	mesh := &Mesh{}

	for x := min.X(); x+step < max.X(); x += step {
		for y := min.Y(); y+step < max.Y(); y += step {
			for z := min.Z(); z+step < max.Z(); z += step {
				buildCell(f, x, y, z, step, iso, mesh)
			}
		}
	}

	return mesh
}

func buildCell(f field.Field, x, y, z, step, iso float32, mesh *Mesh) {
	var corners [8][3]float32
	var values [8]float32
	for k := 0; k < 8; k++ {
		cx := x + cornerOffsets[k][0]*step
		cy := y + cornerOffsets[k][1]*step
		cz := z + cornerOffsets[k][2]*step
		corners[k] = [3]float32{cx, cy, cz}
		values[k] = f.ValueAt(cx, cy, cz)
	}

	var cubeIndex uint8
	for k := 0; k < 8; k++ {
		if values[k] < iso {
			cubeIndex |= 1 << uint(k)
		}
	}

	mask := edgeTable[cubeIndex]
	if mask == 0 {
		return
	}

	var edgeVertexIndex [12]uint32
	var edgeHasVertex [12]bool

	for e := 0; e < 12; e++ {
		if mask&(1<<uint(e)) == 0 {
			continue
		}
		c0, c1 := edgeCorners[e][0], edgeCorners[e][1]
		p := interpolate(corners[c0], values[c0], corners[c1], values[c1], iso)
		n := field.NormalizedGradient(f, p[0], p[1], p[2])
		idx := uint32(len(mesh.Vertices))
		mesh.Vertices = append(mesh.Vertices, Vertex{
			Position: mgl32.Vec3{p[0], p[1], p[2]},
			Normal:   mgl32.Vec3{n[0], n[1], n[2]},
		})
		edgeVertexIndex[e] = idx
		edgeHasVertex[e] = true
	}

	row := triTable[cubeIndex]
	for t := 0; t+2 < 16 && row[t] != -1; t += 3 {
		e0, e1, e2 := row[t], row[t+1], row[t+2]
		if !edgeHasVertex[e0] || !edgeHasVertex[e1] || !edgeHasVertex[e2] {
			continue
		}
		i0, i1, i2 := edgeVertexIndex[e0], edgeVertexIndex[e1], edgeVertexIndex[e2]
		mesh.Indices = append(mesh.Indices, i0, i1, i2)
		assignBarycentric(mesh, i0, i1, i2)
	}
}

// assignBarycentric stamps each triangle's three vertices with a unit
// barycentric basis vector for crack masking. Vertices are shared by all
// triangles of the same cell, so a shared vertex keeps the basis vector
// of the last triangle that references it.
func assignBarycentric(mesh *Mesh, i0, i1, i2 uint32) {
	mesh.Vertices[i0].Barycentric = mgl32.Vec3{1, 0, 0}
	mesh.Vertices[i1].Barycentric = mgl32.Vec3{0, 1, 0}
	mesh.Vertices[i2].Barycentric = mgl32.Vec3{0, 0, 1}
}

// interpolate places a vertex on the edge between two corners at the
// linear interpolant of iso between their field values, falling back to
// the midpoint when the two values are within 1e-6 of each other.
func interpolate(p1 [3]float32, v1 float32, p2 [3]float32, v2 float32, iso float32) [3]float32 {
	if math32.Abs(v1-v2) < 1e-6 {
		return [3]float32{
			(p1[0] + p2[0]) / 2,
			(p1[1] + p2[1]) / 2,
			(p1[2] + p2[2]) / 2,
		}
	}
	t := (iso - v1) / (v2 - v1)
	return [3]float32{
		p1[0] + t*(p2[0]-p1[0]),
		p1[1] + t*(p2[1]-p1[1]),
		p1[2] + t*(p2[2]-p1[2]),
	}
}
