package math

import "math"

// Quat is a rotation quaternion; W is the scalar part.
type Quat struct {
	X, Y, Z, W float32
}

// QuatIdentity returns the rotation that does nothing.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle rotates angle radians about the unit vector axis.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	s, c := math.Sincos(float64(angle) / 2)
	v := axis.Scale(float32(s))
	return Quat{X: v.X, Y: v.Y, Z: v.Z, W: float32(c)}
}

// QuatFromUnitVectors returns the shortest-arc rotation taking the unit
// vector from onto the unit vector to.
func QuatFromUnitVectors(from, to Vec3) Quat {
	w := from.Dot(to) + 1
	if w < 1e-6 {
		// Half turn about any axis perpendicular to from.
		axis := Vec3{X: -from.Y, Y: from.X}
		if math.Abs(float64(from.X)) <= math.Abs(float64(from.Z)) {
			axis = Vec3{Y: -from.Z, Z: from.Y}
		}
		return Quat{X: axis.X, Y: axis.Y, Z: axis.Z}.Normalize()
	}
	c := from.Cross(to)
	return Quat{X: c.X, Y: c.Y, Z: c.Z, W: w}.Normalize()
}

// Normalize returns q scaled to unit length. Degenerate quaternions become
// the identity.
func (q Quat) Normalize() Quat {
	n := float32(math.Sqrt(float64(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)))
	if n < 1e-4 {
		return QuatIdentity()
	}
	return Quat{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

// Mul returns the rotation q * other: other applies first.
func (q Quat) Mul(other Quat) Quat {
	return Quat{
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
	}
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	q = q.Normalize()
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Euler is a rotation in radians applied Z first, then Y, then X, matching
// the XYZ order of three.js.
type Euler struct {
	X, Y, Z float32
}

// Quat returns the equivalent quaternion Rx * Ry * Rz.
func (e Euler) Quat() Quat {
	sx, cx := math.Sincos(float64(e.X) / 2)
	sy, cy := math.Sincos(float64(e.Y) / 2)
	sz, cz := math.Sincos(float64(e.Z) / 2)

	return Quat{
		X: float32(sx*cy*cz + cx*sy*sz),
		Y: float32(cx*sy*cz - sx*cy*sz),
		Z: float32(cx*cy*sz + sx*sy*cz),
		W: float32(cx*cy*cz - sx*sy*sz),
	}
}
