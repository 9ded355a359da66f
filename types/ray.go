package types

// A ray with a parametric validity interval [TMin, TMax]. InvDir caches the
// component-wise reciprocal of Dir for slab tests.
type Ray struct {
	Origin Vec3
	Dir    Vec3
	InvDir Vec3

	TMin float32
	TMax float32
}

// Create a new ray. The direction is not normalized so hit distances are
// expressed in units of Dir.
func NewRay(origin, dir Vec3, tMin, tMax float32) Ray {
	return Ray{
		Origin: origin,
		Dir:    dir,
		InvDir: dir.Recip(),
		TMin:   tMin,
		TMax:   tMax,
	}
}

// Get the point at distance t along the ray.
func (r *Ray) At(t float32) Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}
