package types

import "math"

// An axis-aligned bounding box. A box is valid when Min[i] <= Max[i] for every
// axis; boxes with equal bounds (points, flat slabs) are valid.
type AABB struct {
	Min Vec3
	Max Vec3
}

// Return an inverted box that acts as the identity element for Union.
func EmptyAABB() AABB {
	return AABB{
		Min: Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Returns true if Min <= Max on all axes. NaN bounds are never valid.
func (b AABB) Valid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

// Get a box enclosing both boxes.
func (b AABB) Union(o AABB) AABB {
	return AABB{Min: MinVec3(b.Min, o.Min), Max: MaxVec3(b.Max, o.Max)}
}

// Get the box center.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get the box extent along each axis.
func (b AABB) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// Get the box surface area.
func (b AABB) SurfaceArea() float32 {
	side := b.Size()
	return 2.0 * (side[0]*side[1] + side[1]*side[2] + side[0]*side[2])
}

// Returns true if the two boxes overlap. Touching faces count as an overlap.
func (b AABB) Overlaps(o AABB) bool {
	return b.Min[0] <= o.Max[0] && b.Max[0] >= o.Min[0] &&
		b.Min[1] <= o.Max[1] && b.Max[1] >= o.Min[1] &&
		b.Min[2] <= o.Max[2] && b.Max[2] >= o.Min[2]
}

// Returns true if o lies entirely inside b.
func (b AABB) Contains(o AABB) bool {
	return b.Min[0] <= o.Min[0] && b.Max[0] >= o.Max[0] &&
		b.Min[1] <= o.Min[1] && b.Max[1] >= o.Max[1] &&
		b.Min[2] <= o.Min[2] && b.Max[2] >= o.Max[2]
}

// Get the smallest per-axis overlap extent of two boxes. The result is
// negative if the boxes are disjoint.
func (b AABB) Penetration(o AABB) float32 {
	var depth float32 = math.MaxFloat32
	for axis := 0; axis < 3; axis++ {
		d := float32(math.Min(float64(b.Max[axis]), float64(o.Max[axis]))) -
			float32(math.Max(float64(b.Min[axis]), float64(o.Min[axis])))
		if d < depth {
			depth = d
		}
	}
	return depth
}

// Clip the ray interval [tMin, tMax] against the box using the slab method.
// On success it returns the entry distance.
//
// An axis with a zero direction component is treated as parallel: the ray is
// rejected if its origin lies outside that slab and the axis is skipped
// otherwise. Any NaN produced along the way rejects the ray.
func (b *AABB) IntersectRay(r *Ray, tMin, tMax float32) (float32, bool) {
	for axis := 0; axis < 3; axis++ {
		if r.Dir[axis] == 0 {
			o := r.Origin[axis]
			if !(o >= b.Min[axis] && o <= b.Max[axis]) {
				return 0, false
			}
			continue
		}

		t0 := (b.Min[axis] - r.Origin[axis]) * r.InvDir[axis]
		t1 := (b.Max[axis] - r.Origin[axis]) * r.InvDir[axis]
		if t0 != t0 || t1 != t1 {
			return 0, false
		}
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		if !(tMin <= tMax) {
			return 0, false
		}
	}

	if !(tMin <= tMax) {
		return 0, false
	}
	return tMin, true
}
