package math

import "math"

// Mat4 is a 4x4 matrix stored column by column, the layout glUniformMatrix4fv
// expects without transposition. Element (row r, column c) is m[c*4+r].
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	var m Mat4
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// Compose builds the transform that scales, then rotates by q, then moves to
// pos: T * R(q) * S.
func Compose(pos Vec3, q Quat, scale Vec3) Mat4 {
	q = q.Normalize()
	x2, y2, z2 := q.X+q.X, q.Y+q.Y, q.Z+q.Z
	xx, xy, xz := q.X*x2, q.X*y2, q.X*z2
	yy, yz, zz := q.Y*y2, q.Y*z2, q.Z*z2
	wx, wy, wz := q.W*x2, q.W*y2, q.W*z2

	return Mat4{
		(1 - (yy + zz)) * scale.X, (xy + wz) * scale.X, (xz - wy) * scale.X, 0,
		(xy - wz) * scale.Y, (1 - (xx + zz)) * scale.Y, (yz + wx) * scale.Y, 0,
		(xz + wy) * scale.Z, (yz - wx) * scale.Z, (1 - (xx + yy)) * scale.Z, 0,
		pos.X, pos.Y, pos.Z, 1,
	}
}

// Perspective returns an OpenGL projection with a vertical field of view of
// fovY radians. Depth maps near..far to -1..1.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := float32(1 / math.Tan(float64(fovY)/2))
	depth := near - far

	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) / depth
	m[11] = -1
	m[14] = 2 * far * near / depth
	return m
}

// Ortho returns an orthographic projection of the box left..right,
// bottom..top, near..far.
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	w, h, d := right-left, top-bottom, far-near

	m := Identity()
	m[0] = 2 / w
	m[5] = 2 / h
	m[10] = -2 / d
	m[12] = -(right + left) / w
	m[13] = -(top + bottom) / h
	m[14] = -(far + near) / d
	return m
}

// LookAt returns the view matrix of an eye at eye looking at target. up must
// not be parallel to the viewing direction.
func LookAt(eye, target, up Vec3) Mat4 {
	back := eye.Sub(target).Normalize()
	right := up.Cross(back).Normalize()
	camUp := back.Cross(right)

	return Mat4{
		right.X, camUp.X, back.X, 0,
		right.Y, camUp.Y, back.Y, 0,
		right.Z, camUp.Z, back.Z, 0,
		-right.Dot(eye), -camUp.Dot(eye), -back.Dot(eye), 1,
	}
}

// Mul returns m * other, so other applies first.
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+r] * other[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// TransformVec3 transforms the point v, dividing by w for projections.
func (m Mat4) TransformVec3(v Vec3) Vec3 {
	out := Vec3{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12],
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13],
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14],
	}
	if w := m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]; w != 0 && w != 1 {
		out = out.Scale(1 / w)
	}
	return out
}

// Translation returns the position part of an affine transform.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Ptr returns the address of the first element for glUniformMatrix4fv.
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}
