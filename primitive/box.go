package primitive

import (
	"github.com/achilleasa/accel/bvh"
	"github.com/achilleasa/accel/builder"
	"github.com/achilleasa/accel/types"
)

// The builder input type.
type BoundedVolume = builder.BoundedVolume

// An axis-aligned box primitive.
type Box types.AABB

func (b Box) BBox() types.AABB {
	return types.AABB(b)
}

func (b Box) Center() types.Vec3 {
	return types.AABB(b).Center()
}

// A list of boxes addressed by primitive index.
type BoxSet []Box

// Get the boxes as builder input.
func (set BoxSet) Volumes() []BoundedVolume {
	out := make([]BoundedVolume, len(set))
	for index := range set {
		out[index] = set[index]
	}
	return out
}

// A bvh.RayTest for the set. The hit distance is the entry distance clipped
// to tMin, so rays starting inside a box hit it at tMin.
func (set BoxSet) IntersectRay(_ bvh.QueryContext, prim uint32, ray *types.Ray, tMin, tMax float32) (bvh.HitRecord, bvh.Verdict) {
	box := types.AABB(set[prim])
	t, ok := box.IntersectRay(ray, tMin, tMax)
	if !ok {
		return bvh.HitRecord{}, bvh.Miss
	}
	return bvh.HitRecord{Primitive: prim, Distance: t}, bvh.Hit
}

// A bvh.VolumeTest for the set. The hit distance is the overlap depth.
func (set BoxSet) Overlap(_ bvh.QueryContext, prim uint32, volume *types.AABB) (bvh.HitRecord, bvh.Verdict) {
	box := types.AABB(set[prim])
	if !box.Overlaps(*volume) {
		return bvh.HitRecord{}, bvh.Miss
	}
	return bvh.HitRecord{Primitive: prim, Distance: box.Penetration(*volume)}, bvh.Hit
}
