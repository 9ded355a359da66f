package types

import (
	"math"
	"testing"
)

func TestAABBRayIntersection(t *testing.T) {
	box := AABB{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}
	inf := float32(math.Inf(1))

	type spec struct {
		origin Vec3
		dir    Vec3
		tMax   float32
		expHit bool
		expT   float32
	}
	specs := []spec{
		// Head-on along +X
		{Vec3{-1, 0.5, 0.5}, Vec3{1, 0, 0}, inf, true, 1},
		// Interval clipped before the box
		{Vec3{-1, 0.5, 0.5}, Vec3{1, 0, 0}, 0.5, false, 0},
		// Pointing away
		{Vec3{-1, 0.5, 0.5}, Vec3{-1, 0, 0}, inf, false, 0},
		// Parallel to X, origin outside the Y slab
		{Vec3{-1, 2, 0.5}, Vec3{1, 0, 0}, inf, false, 0},
		// Parallel to X, origin on the Y slab boundary
		{Vec3{-1, 1, 0.5}, Vec3{1, 0, 0}, inf, true, 1},
		// Negative zero direction components
		{Vec3{0.5, 0.5, -3}, Vec3{float32(math.Copysign(0, -1)), 0, 2}, inf, true, 1.5},
		// Origin inside the box
		{Vec3{0.5, 0.5, 0.5}, Vec3{0, 1, 0}, inf, true, 0},
		// Diagonal
		{Vec3{-1, -1, -1}, Vec3{1, 1, 1}, inf, true, 1},
	}

	for index, s := range specs {
		ray := NewRay(s.origin, s.dir, 0, s.tMax)
		tHit, hit := box.IntersectRay(&ray, ray.TMin, ray.TMax)
		if hit != s.expHit {
			t.Fatalf("[spec %d] expected hit to be %t; got %t", index, s.expHit, hit)
		}
		if hit && math.Abs(float64(tHit-s.expT)) > 1e-6 {
			t.Fatalf("[spec %d] expected entry distance %f; got %f", index, s.expT, tHit)
		}
	}
}

func TestAABBRayIntersectionRejectsNaN(t *testing.T) {
	box := AABB{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}
	nan := float32(math.NaN())

	rays := []Ray{
		NewRay(Vec3{nan, 0.5, 0.5}, Vec3{1, 0, 0}, 0, 10),
		NewRay(Vec3{nan, 0.5, 0.5}, Vec3{0, 1, 0}, 0, 10),
		NewRay(Vec3{-1, 0.5, 0.5}, Vec3{nan, 0, 0}, 0, 10),
		// Zero direction: every axis is parallel and the interval is empty
		NewRay(Vec3{0.5, 0.5, 0.5}, Vec3{0, 0, 0}, 1, 0),
	}

	for index, ray := range rays {
		if _, hit := box.IntersectRay(&ray, ray.TMin, ray.TMax); hit {
			t.Fatalf("[ray %d] expected degenerate ray to be rejected", index)
		}
	}

	// Origin exactly on a slab plane with an infinite reciprocal yields
	// 0 * Inf = NaN; the parallel-axis branch must catch it first.
	ray := NewRay(Vec3{0, 0.5, 0.5}, Vec3{0, 0, 1}, 0, 10)
	if _, hit := box.IntersectRay(&ray, ray.TMin, ray.TMax); !hit {
		t.Fatal("expected ray lying on the box face to be accepted")
	}
}

func TestAABBOverlap(t *testing.T) {
	a := AABB{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}

	type spec struct {
		b          AABB
		expOverlap bool
	}
	specs := []spec{
		{AABB{Min: Vec3{0.5, 0.5, 0.5}, Max: Vec3{2, 2, 2}}, true},
		{AABB{Min: Vec3{1, 0, 0}, Max: Vec3{2, 1, 1}}, true},
		{AABB{Min: Vec3{1.1, 0, 0}, Max: Vec3{2, 1, 1}}, false},
		{AABB{Min: Vec3{0, 0, -2}, Max: Vec3{1, 1, -1}}, false},
	}

	for index, s := range specs {
		if got := a.Overlaps(s.b); got != s.expOverlap {
			t.Fatalf("[spec %d] expected overlap to be %t; got %t", index, s.expOverlap, got)
		}
		if got := s.b.Overlaps(a); got != s.expOverlap {
			t.Fatalf("[spec %d] expected overlap to be symmetric", index)
		}
	}

	if d := a.Penetration(AABB{Min: Vec3{0.75, 0, 0}, Max: Vec3{2, 2, 2}}); math.Abs(float64(d-0.25)) > 1e-6 {
		t.Fatalf("expected penetration depth 0.25; got %f", d)
	}
}

func TestAABBUnion(t *testing.T) {
	b := EmptyAABB()
	if b.Valid() {
		t.Fatal("expected empty box to be invalid")
	}

	b = b.Union(AABB{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}})
	b = b.Union(AABB{Min: Vec3{-1, 2, 0}, Max: Vec3{0, 3, 0}})

	exp := AABB{Min: Vec3{-1, 0, 0}, Max: Vec3{1, 3, 1}}
	if b != exp {
		t.Fatalf("expected union to be %v; got %v", exp, b)
	}
	if !b.Contains(AABB{Min: Vec3{0, 0, 0}, Max: Vec3{1, 1, 1}}) {
		t.Fatal("expected union to contain its inputs")
	}
	if area := b.SurfaceArea(); area != 2*(2*3+3*1+2*1) {
		t.Fatalf("expected surface area %d; got %f", 2*(2*3+3*1+2*1), area)
	}
}
