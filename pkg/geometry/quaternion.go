package geometry

import "math"

// Quaternion represents a rotation as (X, Y, Z, W) with W the scalar part
type Quaternion struct {
	X, Y, Z, W float64
}

// IdentityQuaternion returns the rotation that leaves every vector unchanged
func IdentityQuaternion() Quaternion {
	return Quaternion{W: 1}
}

// NewQuaternion creates a quaternion from its components
func NewQuaternion(x, y, z, w float64) Quaternion {
	return Quaternion{X: x, Y: y, Z: z, W: w}
}

// QuaternionFromAxisAngle creates a rotation of angle radians around axis
func QuaternionFromAxisAngle(axis Vector3, angle float64) Quaternion {
	a := axis.Normalize()
	s := math.Sin(angle / 2)
	return Quaternion{X: a.X * s, Y: a.Y * s, Z: a.Z * s, W: math.Cos(angle / 2)}
}

// QuaternionFromBasis creates the rotation mapping the global X, Y and Z axes
// onto u, v and n. The three vectors must form a right-handed orthonormal basis.
func QuaternionFromBasis(u, v, n Vector3) Quaternion {
	// Rotation matrix columns are u, v, n.
	m00, m01, m02 := u.X, v.X, n.X
	m10, m11, m12 := u.Y, v.Y, n.Y
	m20, m21, m22 := u.Z, v.Z, n.Z

	var q Quaternion
	trace := m00 + m11 + m22
	switch {
	case trace > 0:
		s := 0.5 / math.Sqrt(trace+1)
		q = Quaternion{
			W: 0.25 / s,
			X: (m21 - m12) * s,
			Y: (m02 - m20) * s,
			Z: (m10 - m01) * s,
		}
	case m00 > m11 && m00 > m22:
		s := 2 * math.Sqrt(1+m00-m11-m22)
		q = Quaternion{
			W: (m21 - m12) / s,
			X: 0.25 * s,
			Y: (m01 + m10) / s,
			Z: (m02 + m20) / s,
		}
	case m11 > m22:
		s := 2 * math.Sqrt(1+m11-m00-m22)
		q = Quaternion{
			W: (m02 - m20) / s,
			X: (m01 + m10) / s,
			Y: 0.25 * s,
			Z: (m12 + m21) / s,
		}
	default:
		s := 2 * math.Sqrt(1+m22-m00-m11)
		q = Quaternion{
			W: (m10 - m01) / s,
			X: (m02 + m20) / s,
			Y: (m12 + m21) / s,
			Z: 0.25 * s,
		}
	}
	return q.Normalize()
}

// Norm returns the length of the quaternion
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalize returns the quaternion scaled to unit length
func (q Quaternion) Normalize() Quaternion {
	n := q.Norm()
	if n == 0 {
		return IdentityQuaternion()
	}
	return Quaternion{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

// IsUnit reports whether the quaternion has unit length within tol
func (q Quaternion) IsUnit(tol float64) bool {
	for _, c := range []float64{q.X, q.Y, q.Z, q.W} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return math.Abs(q.Norm()-1) <= tol
}

// Mul returns the composed rotation q * other (other is applied first)
func (q Quaternion) Mul(other Quaternion) Quaternion {
	return Quaternion{
		W: q.W*other.W - q.X*other.X - q.Y*other.Y - q.Z*other.Z,
		X: q.W*other.X + q.X*other.W + q.Y*other.Z - q.Z*other.Y,
		Y: q.W*other.Y - q.X*other.Z + q.Y*other.W + q.Z*other.X,
		Z: q.W*other.Z + q.X*other.Y - q.Y*other.X + q.Z*other.W,
	}
}

// Conjugate returns the inverse rotation of a unit quaternion
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Rotate applies the rotation to a vector
func (q Quaternion) Rotate(v Vector3) Vector3 {
	u := Vector3{X: q.X, Y: q.Y, Z: q.Z}
	// v' = v + 2w(u x v) + 2(u x (u x v))
	t := u.Cross(v).Mul(2)
	return v.Add(t.Mul(q.W)).Add(u.Cross(t))
}

// AxisAngle returns the rotation axis and angle in radians.
// The identity rotation reports the Z axis and a zero angle.
func (q Quaternion) AxisAngle() (Vector3, float64) {
	q = q.Normalize()
	if q.W < 0 {
		q = Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: -q.W}
	}
	angle := 2 * math.Acos(math.Min(1, q.W))
	s := math.Sqrt(1 - q.W*q.W)
	if s < 1e-12 {
		return UnitZ, 0
	}
	return Vector3{X: q.X / s, Y: q.Y / s, Z: q.Z / s}, angle
}
