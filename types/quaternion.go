package types

import "math"

// A unit quaternion describing a rotation. V holds the imaginary part.
type Quat struct {
	V Vec3
	W float32
}

// The rotation that leaves vectors unchanged.
func QuatIdent() Quat {
	return Quat{W: 1}
}

// Build the rotation of angle radians around axis. The axis must be
// normalized.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	sin, cos := math.Sincos(float64(angle) / 2)
	return Quat{V: axis.Mul(float32(sin)), W: float32(cos)}
}

// Compose two rotations; the result applies o first and then q.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		V: q.V.Cross(o.V).Add(o.V.Mul(q.W)).Add(q.V.Mul(o.W)),
		W: q.W*o.W - q.V.Dot(o.V),
	}
}

// Apply the rotation to v using v' = v + 2w(q x v) + 2q x (q x v).
func (q Quat) Rotate(v Vec3) Vec3 {
	t := q.V.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(q.V.Cross(t))
}

func (q Quat) Len() float32 {
	return float32(math.Sqrt(float64(q.W*q.W + q.V.Dot(q.V))))
}

// Rescale q to unit length. A zero quaternion becomes the identity.
func (q Quat) Normalize() Quat {
	l := q.Len()
	if l == 0 || math.IsInf(float64(l), 0) || math.IsNaN(float64(l)) {
		return QuatIdent()
	}
	if d := l - 1; d > -floatCmpEpsilon && d < floatCmpEpsilon {
		return q
	}
	inv := 1 / l
	return Quat{V: q.V.Mul(inv), W: q.W * inv}
}
