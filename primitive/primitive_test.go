package primitive

import (
	"math"
	"testing"

	"github.com/achilleasa/accel/builder"
	"github.com/achilleasa/accel/bvh"
	"github.com/achilleasa/accel/types"
)

// A unit right triangle on the z = 0 plane.
var unitTri = Triangle{
	Vertices: [3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
}

func TestTriangleBounds(t *testing.T) {
	exp := types.AABB{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{1, 1, 0}}
	if bbox := unitTri.BBox(); bbox != exp {
		t.Fatalf("expected bbox %v; got %v", exp, bbox)
	}

	center := unitTri.Center()
	if math.Abs(float64(center[0]-1.0/3.0)) > 1e-6 || math.Abs(float64(center[1]-1.0/3.0)) > 1e-6 || center[2] != 0 {
		t.Fatalf("expected centroid (1/3, 1/3, 0); got %v", center)
	}

	if n := unitTri.Normal(); n != (types.Vec3{0, 0, 1}) {
		t.Fatalf("expected normal (0, 0, 1); got %v", n)
	}
}

func TestTriangleIntersect(t *testing.T) {
	type spec struct {
		origin types.Vec3
		dir    types.Vec3
		tMax   float32
		expHit bool
		expT   float32
		expU   float32
		expV   float32
	}

	specs := []spec{
		{types.Vec3{0.25, 0.25, 1}, types.Vec3{0, 0, -1}, 10, true, 1, 0.25, 0.25},
		// back face
		{types.Vec3{0.5, 0.25, -2}, types.Vec3{0, 0, 1}, 10, true, 2, 0.5, 0.25},
		// interval too short
		{types.Vec3{0.25, 0.25, 1}, types.Vec3{0, 0, -1}, 0.5, false, 0, 0, 0},
		// outside the triangle
		{types.Vec3{0.75, 0.75, 1}, types.Vec3{0, 0, -1}, 10, false, 0, 0, 0},
		// parallel to the triangle plane
		{types.Vec3{-1, 0.25, 0}, types.Vec3{1, 0, 0}, 10, false, 0, 0, 0},
		// pointing away
		{types.Vec3{0.25, 0.25, 1}, types.Vec3{0, 0, 1}, 10, false, 0, 0, 0},
	}

	for index, s := range specs {
		ray := types.NewRay(s.origin, s.dir, 0, s.tMax)
		tHit, u, v, ok := unitTri.Intersect(&ray, ray.TMin, ray.TMax)
		if ok != s.expHit {
			t.Fatalf("[spec %d] expected hit to be %t; got %t", index, s.expHit, ok)
		}
		if !ok {
			continue
		}
		if tHit != s.expT || u != s.expU || v != s.expV {
			t.Fatalf("[spec %d] expected t=%f u=%f v=%f; got t=%f u=%f v=%f", index, s.expT, s.expU, s.expV, tHit, u, v)
		}
	}
}

func TestTriangleOverlapsBox(t *testing.T) {
	type spec struct {
		box types.AABB
		exp bool
	}

	specs := []spec{
		{types.AABB{Min: types.Vec3{0.1, 0.1, -0.1}, Max: types.Vec3{0.2, 0.2, 0.1}}, true},
		// Touches the triangle plane
		{types.AABB{Min: types.Vec3{0.1, 0.1, 0}, Max: types.Vec3{0.2, 0.2, 1}}, true},
		// Above the plane
		{types.AABB{Min: types.Vec3{0.1, 0.1, 0.5}, Max: types.Vec3{0.2, 0.2, 1}}, false},
		// Inside the bbox but beyond the hypotenuse
		{types.AABB{Min: types.Vec3{0.8, 0.8, -0.1}, Max: types.Vec3{0.9, 0.9, 0.1}}, false},
		// Encloses the whole triangle
		{types.AABB{Min: types.Vec3{-5, -5, -5}, Max: types.Vec3{5, 5, 5}}, true},
		{types.AABB{Min: types.Vec3{3, 3, 3}, Max: types.Vec3{4, 4, 4}}, false},
	}

	for index, s := range specs {
		if got := unitTri.OverlapsBox(&s.box); got != s.exp {
			t.Fatalf("[spec %d] expected overlap to be %t; got %t", index, s.exp, got)
		}
	}
}

func TestTriangleSetQueries(t *testing.T) {
	// Two stacked triangles at z = 0 and z = -1
	lower := unitTri
	for i := range lower.Vertices {
		lower.Vertices[i][2] = -1
	}
	set := TriangleSet{unitTri, lower}

	tree, err := builder.Build(set.Volumes(), builder.Options{MinLeafItems: 1})
	if err != nil {
		t.Fatal(err)
	}

	tc := bvh.NewTraversalContext(tree.MinStackCapacity(), 0)
	ray := types.NewRay(types.Vec3{0.2, 0.2, -5}, types.Vec3{0, 0, 1}, 0, 100)
	hit, found, err := tree.NearestHit(tc, &ray, set.IntersectRay)
	if err != nil {
		t.Fatal(err)
	}
	if !found || hit.Primitive != 1 || hit.Distance != 4 {
		t.Fatalf("expected hit on primitive 1 at 4; got %+v (found=%t)", hit, found)
	}
	if hit.U != 0.2 || hit.V != 0.2 {
		t.Fatalf("expected barycentrics (0.2, 0.2); got (%f, %f)", hit.U, hit.V)
	}

	volume := types.AABB{Min: types.Vec3{0, 0, -0.5}, Max: types.Vec3{1, 1, 0.5}}
	hits, err := tree.AllOverlaps(tc, &volume, set.Overlap)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Primitive != 0 {
		t.Fatalf("expected only primitive 0 to overlap; got %v", hits)
	}
}

func TestBoxSetQueries(t *testing.T) {
	set := BoxSet{
		{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{1, 1, 1}},
		{Min: types.Vec3{3, 0, 0}, Max: types.Vec3{4, 1, 1}},
	}

	ray := types.NewRay(types.Vec3{-1, 0.5, 0.5}, types.Vec3{1, 0, 0}, 0, 100)
	hit, verdict := set.IntersectRay(nil, 1, &ray, 0, 100)
	if verdict != bvh.Hit || hit.Distance != 4 || hit.Primitive != 1 {
		t.Fatalf("expected hit on primitive 1 at 4; got %+v (verdict %d)", hit, verdict)
	}
	if _, verdict = set.IntersectRay(nil, 1, &ray, 0, 3); verdict != bvh.Miss {
		t.Fatal("expected a miss for a short interval")
	}

	volume := types.AABB{Min: types.Vec3{0.5, 0.5, 0.5}, Max: types.Vec3{3.5, 0.75, 0.75}}
	hit, verdict = set.Overlap(nil, 0, &volume)
	if verdict != bvh.Hit || hit.Distance != 0.25 {
		t.Fatalf("expected overlap depth 0.25; got %+v (verdict %d)", hit, verdict)
	}

	volumes := set.Volumes()
	if len(volumes) != 2 || volumes[1].Center() != (types.Vec3{3.5, 0.5, 0.5}) {
		t.Fatalf("unexpected builder volumes: %v", volumes)
	}
}
