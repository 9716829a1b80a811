package math

import (
	"math"
	"testing"
)

func TestQuatIdentity(t *testing.T) {
	q := QuatIdentity()
	if q.X != 0 || q.Y != 0 || q.Z != 0 || q.W != 1 {
		t.Errorf("Identity quaternion should be (0,0,0,1), got (%v,%v,%v,%v)", q.X, q.Y, q.Z, q.W)
	}
}

func TestQuatNormalize(t *testing.T) {
	q := Quat{X: 1, Y: 2, Z: 3, W: 4}
	n := q.Normalize()

	length := float32(math.Sqrt(float64(n.X*n.X + n.Y*n.Y + n.Z*n.Z + n.W*n.W)))
	if math.Abs(float64(length-1.0)) > 0.0001 {
		t.Errorf("Normalized quaternion length should be 1, got %v", length)
	}
}

func TestQuatFromAxisAngle(t *testing.T) {
	q := QuatFromAxisAngle(Vec3{X: 0, Y: 1, Z: 0}, float32(math.Pi/2))
	got := q.Rotate(Vec3{1, 0, 0})

	// Right-handed: +X goes to -Z.
	if got.Distance(Vec3{0, 0, -1}) > 0.0001 {
		t.Errorf("rotate (1,0,0) by 90 deg about Y = %v, want (0,0,-1)", got)
	}
}

func TestQuatFromUnitVectors(t *testing.T) {
	tests := []struct {
		name string
		to   Vec3
	}{
		{"same", Up},
		{"x", Vec3{1, 0, 0}},
		{"diagonal", Vec3{1, 1, 1}.Normalize()},
		{"new york", Vec3{-0.2, 0.65, -0.73}.Normalize()},
		{"opposite", Vec3{0, -1, 0}},
	}

	for _, tt := range tests {
		q := QuatFromUnitVectors(Up, tt.to)
		got := q.Rotate(Up)
		if got.Distance(tt.to) > 0.001 {
			t.Errorf("%s: rotated up = %v, want %v", tt.name, got, tt.to)
		}
	}
}

func TestQuatMulComposes(t *testing.T) {
	a := QuatFromAxisAngle(Vec3{0, 0, 1}, float32(math.Pi/2))
	b := QuatFromAxisAngle(Vec3{0, 0, 1}, float32(math.Pi/2))
	got := a.Mul(b).Rotate(Vec3{1, 0, 0})

	if got.Distance(Vec3{-1, 0, 0}) > 0.0001 {
		t.Errorf("two quarter turns about Z = %v, want (-1,0,0)", got)
	}
}

func TestEulerOrder(t *testing.T) {
	tests := []struct {
		name  string
		euler Euler
		in    Vec3
		want  Vec3
	}{
		{"identity", Euler{}, Vec3{1, 2, 3}, Vec3{1, 2, 3}},
		{"x quarter turn", Euler{X: math.Pi / 2}, Vec3{0, 1, 0}, Vec3{0, 0, 1}},
		{"z quarter turn", Euler{Z: math.Pi / 2}, Vec3{1, 0, 0}, Vec3{0, 1, 0}},
		// Z applies first, then X.
		{"z then x", Euler{X: math.Pi / 2, Z: math.Pi / 2}, Vec3{1, 0, 0}, Vec3{0, 0, 1}},
	}

	for _, tt := range tests {
		got := tt.euler.Quat().Rotate(tt.in)
		if !near(got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestVec3(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	if got := x.Cross(y); got != (Vec3{0, 0, 1}) {
		t.Errorf("Vec3.Cross() = %v, want (0,0,1)", got)
	}
	if got := x.Lerp(y, 0.5); got != (Vec3{0.5, 0.5, 0}) {
		t.Errorf("Vec3.Lerp() = %v, want (0.5,0.5,0)", got)
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("normalizing the zero vector should return zero")
	}
	nan := float32(math.NaN())
	if (Vec3{nan, 0, 0}).IsFinite() {
		t.Error("NaN vector reported finite")
	}
	if !x.IsFinite() {
		t.Error("unit vector reported not finite")
	}
}
