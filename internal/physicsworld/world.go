// Package physicsworld mirrors the currently drawn chunk set into a
// rigid-body world so the observer can collide with freshly streamed
// terrain, and steps a dynamic observer body under radial gravity. No
// rigid-body engine exists anywhere in the example corpus retrieved for
// this project (the reference implementation used one with no Go
// analogue available), so this is a small hand-rolled static/dynamic
// body registry, generalized from axis-aligned voxel collision to
// arbitrary triangle-soup collision.
package physicsworld

import (
	"github.com/go-gl/mathgl/mgl32"

	"planetforge/internal/chunk"
)

// StaticBody is the collision representation of one drawn chunk.
type StaticBody struct {
	UID       uint64
	Triangles []chunk.Triangle
}

// Observer is the dynamic rigid body representing the free-flying
// viewer: a sphere with position, velocity, and a radius used for
// collision response against the static chunk bodies.
type Observer struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Radius   float32
}

// World holds the static body registry (keyed by chunk uid, mirroring
// the drawn set) and the single dynamic observer body.
type World struct {
	Gravity float32 // magnitude of radial gravity toward the origin

	registered map[uint64]*StaticBody
	Observer   Observer
}

// New constructs an empty physics world with the given gravity
// magnitude and an observer starting at the given position.
func New(gravity float32, observerStart mgl32.Vec3, observerRadius float32) *World {
	return &World{
		Gravity:    gravity,
		registered: make(map[uint64]*StaticBody),
		Observer: Observer{
			Position: observerStart,
			Radius:   observerRadius,
		},
	}
}

// Sync diffs the drawn-chunk set against the previously registered
// static bodies: every uid present in drawn but not yet registered gets
// a new static body built from its collision mesh; every uid registered
// but no longer drawn is removed. After Sync, RegisteredUIDs() equals
// the uid set of drawn.
func (w *World) Sync(drawn []*chunk.Chunk) {
	current := make(map[uint64]*chunk.Chunk, len(drawn))
	for _, c := range drawn {
		current[c.UID] = c
	}

	for uid := range w.registered {
		if _, stillDrawn := current[uid]; !stillDrawn {
			delete(w.registered, uid)
		}
	}
	for uid, c := range current {
		if _, already := w.registered[uid]; !already {
			w.registered[uid] = &StaticBody{UID: uid, Triangles: c.Collision}
		}
	}
}

// Unregister immediately removes a uid's static body, independent of
// Sync — used by the chunk cache's eviction hook so a chunk leaving the
// Available LRU never leaves a phantom collider behind.
func (w *World) Unregister(uid uint64) {
	delete(w.registered, uid)
}

// RegisteredUIDs returns the set of uids currently backed by a static
// body, for testing the post-Sync invariant against the drawn set.
func (w *World) RegisteredUIDs() map[uint64]bool {
	out := make(map[uint64]bool, len(w.registered))
	for uid := range w.registered {
		out[uid] = true
	}
	return out
}

// Step advances the observer by dt under uniform radial gravity toward
// the origin, then resolves collisions against the registered static
// bodies using iterative position correction.
func (w *World) Step(dt float32) {
	if dt <= 0 {
		return
	}

	gravityDir := radialGravityDirection(w.Observer.Position)
	accel := gravityDir.Mul(-w.Gravity)

	w.Observer.Velocity = w.Observer.Velocity.Add(accel.Mul(dt))
	w.Observer.Position = w.Observer.Position.Add(w.Observer.Velocity.Mul(dt))

	w.resolveCollisions()
}

// radialGravityDirection returns normalize(observer.position), the unit
// vector pointing away from the origin; gravity is applied as
// -g * this vector, i.e. toward the origin.
func radialGravityDirection(position mgl32.Vec3) mgl32.Vec3 {
	length := position.Len()
	if length < 1e-6 {
		return mgl32.Vec3{0, 1, 0}
	}
	return position.Mul(1 / length)
}

// resolveCollisions iteratively pushes the observer sphere out of any
// static triangle it penetrates, along the direction from the closest
// point on the triangle to the sphere center, and removes the part of the
// observer's velocity that points into that triangle so it comes to rest
// on the surface instead of tunneling through it.
func (w *World) resolveCollisions() {
	const iterations = 4
	for i := 0; i < iterations; i++ {
		corrected := false
		for _, body := range w.registered {
			for _, tri := range body.Triangles {
				if push, ok := sphereTriangleCorrection(w.Observer.Position, w.Observer.Radius, tri); ok {
					w.Observer.Position = w.Observer.Position.Add(push)
					n := push.Normalize()
					if into := w.Observer.Velocity.Dot(n); into < 0 {
						w.Observer.Velocity = w.Observer.Velocity.Sub(n.Mul(into))
					}
					corrected = true
				}
			}
		}
		if !corrected {
			break
		}
	}
}

// sphereTriangleCorrection returns the minimal translation vector that
// pushes a sphere out of penetration with a triangle, using the closest
// point on the triangle to the sphere center.
func sphereTriangleCorrection(center mgl32.Vec3, radius float32, tri chunk.Triangle) (mgl32.Vec3, bool) {
	closest := closestPointOnTriangle(center, tri.A, tri.B, tri.C)
	delta := center.Sub(closest)
	dist := delta.Len()
	if dist >= radius || dist < 1e-9 {
		return mgl32.Vec3{}, false
	}
	penetration := radius - dist
	return delta.Mul(1 / dist).Mul(penetration), true
}

// closestPointOnTriangle finds the point on triangle ABC nearest to p,
// via barycentric clamping (the standard Ericson real-time collision
// detection approach).
func closestPointOnTriangle(p, a, b, c mgl32.Vec3) mgl32.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	ap := p.Sub(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Sub(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Mul(v))
	}

	cp := p.Sub(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Mul(w))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Sub(b).Mul(w))
	}

	denom := 1 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Mul(v)).Add(ac.Mul(w))
}
