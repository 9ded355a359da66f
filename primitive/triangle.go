package primitive

import (
	"math"

	"github.com/achilleasa/accel/bvh"
	"github.com/achilleasa/accel/types"
)

// Determinants smaller than this value indicate that the ray is parallel to
// the triangle plane.
const parallelEpsilon float32 = 1e-8

// A triangle defined by its three vertices.
type Triangle struct {
	Vertices [3]types.Vec3
}

// Get the triangle bounding box.
func (tri Triangle) BBox() types.AABB {
	return types.AABB{
		Min: types.MinVec3(types.MinVec3(tri.Vertices[0], tri.Vertices[1]), tri.Vertices[2]),
		Max: types.MaxVec3(types.MaxVec3(tri.Vertices[0], tri.Vertices[1]), tri.Vertices[2]),
	}
}

// Get the triangle centroid.
func (tri Triangle) Center() types.Vec3 {
	return tri.Vertices[0].Add(tri.Vertices[1]).Add(tri.Vertices[2]).Mul(1.0 / 3.0)
}

// Get the (unnormalized) face normal. Its length equals twice the triangle area.
func (tri Triangle) Normal() types.Vec3 {
	return tri.Vertices[1].Sub(tri.Vertices[0]).Cross(tri.Vertices[2].Sub(tri.Vertices[0]))
}

// Intersect the triangle with a ray using the Moller-Trumbore algorithm.
// Both faces are considered. On success it returns the hit distance and the
// barycentric coordinates of the hit point relative to vertices 1 and 2.
func (tri *Triangle) Intersect(ray *types.Ray, tMin, tMax float32) (t, u, v float32, ok bool) {
	e1 := tri.Vertices[1].Sub(tri.Vertices[0])
	e2 := tri.Vertices[2].Sub(tri.Vertices[0])

	pvec := ray.Dir.Cross(e2)
	det := e1.Dot(pvec)
	if float32(math.Abs(float64(det))) < parallelEpsilon {
		return 0, 0, 0, false
	}
	invDet := 1.0 / det

	tvec := ray.Origin.Sub(tri.Vertices[0])
	u = tvec.Dot(pvec) * invDet
	if !(u >= 0 && u <= 1) {
		return 0, 0, 0, false
	}

	qvec := tvec.Cross(e1)
	v = ray.Dir.Dot(qvec) * invDet
	if !(v >= 0 && u+v <= 1) {
		return 0, 0, 0, false
	}

	t = e2.Dot(qvec) * invDet
	if !(t >= tMin && t <= tMax) {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// Returns true if the triangle overlaps the box. Touching counts as an
// overlap. The test projects both shapes on the 13 separating axis candidates
// (3 box face normals, the triangle normal and the 9 edge cross products).
func (tri *Triangle) OverlapsBox(box *types.AABB) bool {
	if !tri.BBox().Overlaps(*box) {
		return false
	}

	center := box.Center()
	half := box.Size().Mul(0.5)

	v0 := tri.Vertices[0].Sub(center)
	v1 := tri.Vertices[1].Sub(center)
	v2 := tri.Vertices[2].Sub(center)
	edges := [3]types.Vec3{v1.Sub(v0), v2.Sub(v1), v0.Sub(v2)}

	boxAxes := [3]types.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	for _, edge := range edges {
		for _, boxAxis := range boxAxes {
			if separated(edge.Cross(boxAxis), half, v0, v1, v2) {
				return false
			}
		}
	}

	return !separated(edges[0].Cross(edges[1]), half, v0, v1, v2)
}

// Check whether axis separates the box (centered at the origin) from the
// triangle.
func separated(axis, half, v0, v1, v2 types.Vec3) bool {
	p0, p1, p2 := v0.Dot(axis), v1.Dot(axis), v2.Dot(axis)
	r := half[0]*abs32(axis[0]) + half[1]*abs32(axis[1]) + half[2]*abs32(axis[2])

	minP := float32(math.Min(float64(p0), math.Min(float64(p1), float64(p2))))
	maxP := float32(math.Max(float64(p0), math.Max(float64(p1), float64(p2))))
	return minP > r || maxP < -r
}

func abs32(v float32) float32 {
	return float32(math.Abs(float64(v)))
}

// A list of triangles addressed by primitive index.
type TriangleSet []Triangle

// Get the triangles as builder input.
func (set TriangleSet) Volumes() []BoundedVolume {
	out := make([]BoundedVolume, len(set))
	for index := range set {
		out[index] = set[index]
	}
	return out
}

// A bvh.RayTest for the set. Hit records carry the barycentric coordinates
// of the hit point in U and V.
func (set TriangleSet) IntersectRay(_ bvh.QueryContext, prim uint32, ray *types.Ray, tMin, tMax float32) (bvh.HitRecord, bvh.Verdict) {
	t, u, v, ok := set[prim].Intersect(ray, tMin, tMax)
	if !ok {
		return bvh.HitRecord{}, bvh.Miss
	}
	return bvh.HitRecord{Primitive: prim, Distance: t, U: u, V: v}, bvh.Hit
}

// A bvh.VolumeTest for the set. The hit distance is the overlap depth of the
// triangle bounding box and the volume.
func (set TriangleSet) Overlap(_ bvh.QueryContext, prim uint32, volume *types.AABB) (bvh.HitRecord, bvh.Verdict) {
	if !set[prim].OverlapsBox(volume) {
		return bvh.HitRecord{}, bvh.Miss
	}
	return bvh.HitRecord{Primitive: prim, Distance: set[prim].BBox().Penetration(*volume)}, bvh.Hit
}
