package types

import (
	"math"
	"testing"
)

func TestQuatRotate(t *testing.T) {
	type spec struct {
		axis  Vec3
		angle float32
		in    Vec3
		exp   Vec3
	}
	specs := []spec{
		{Vec3{0, 1, 0}, math.Pi / 2, Vec3{0, 0, -1}, Vec3{-1, 0, 0}},
		{Vec3{1, 0, 0}, math.Pi / 2, Vec3{0, 1, 0}, Vec3{0, 0, 1}},
		{Vec3{0, 0, 1}, math.Pi, Vec3{1, 0, 0}, Vec3{-1, 0, 0}},
		{Vec3{0, 1, 0}, 0, Vec3{1, 2, 3}, Vec3{1, 2, 3}},
	}

	for index, s := range specs {
		got := QuatFromAxisAngle(s.axis, s.angle).Rotate(s.in)
		if got.Sub(s.exp).Len() > 1e-5 {
			t.Fatalf("[spec %d] expected %v; got %v", index, s.exp, got)
		}
	}
}

func TestQuatComposeAndNormalize(t *testing.T) {
	quarter := QuatFromAxisAngle(Vec3{0, 1, 0}, math.Pi/4)
	half := quarter.Mul(quarter)

	got := half.Rotate(Vec3{0, 0, -1})
	if got.Sub(Vec3{-1, 0, 0}).Len() > 1e-5 {
		t.Fatalf("expected two 45 degree rotations to equal a 90 degree rotation; got %v", got)
	}

	scaled := Quat{V: half.V.Mul(3), W: half.W * 3}
	if l := scaled.Normalize().Len(); math.Abs(float64(l-1)) > 1e-5 {
		t.Fatalf("expected unit length after normalization; got %f", l)
	}
	if q := (Quat{}).Normalize(); q != QuatIdent() {
		t.Fatalf("expected zero quaternion to normalize to identity; got %v", q)
	}
}
