package geometry

import (
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Placement positions a local coordinate system in global space:
// a rotation followed by a translation to Base.
type Placement struct {
	Base     Vector3
	Rotation Quaternion
}

// NewPlacement creates a placement from a base point and a rotation
func NewPlacement(base Vector3, rotation Quaternion) Placement {
	return Placement{Base: base, Rotation: rotation}
}

// IdentityPlacement returns the placement of the global coordinate system
func IdentityPlacement() Placement {
	return Placement{Rotation: IdentityQuaternion()}
}

// Matrix returns the placement as a homogeneous transform
func (p Placement) Matrix() sdf.M44 {
	axis, angle := p.Rotation.AxisAngle()
	return sdf.Translate3d(toV3(p.Base)).Mul(sdf.Rotate3d(toV3(axis), angle))
}

// ToGlobal maps a point from placement-local to global coordinates
func (p Placement) ToGlobal(local Vector3) Vector3 {
	return fromV3(p.Matrix().MulPosition(toV3(local)))
}

// ToLocal maps a global point into placement-local coordinates
func (p Placement) ToLocal(global Vector3) Vector3 {
	return fromV3(p.Matrix().Inverse().MulPosition(toV3(global)))
}

// Axes returns the global directions of the local X, Y and Z axes
func (p Placement) Axes() (x, y, z Vector3) {
	r := p.Rotation.Normalize()
	return r.Rotate(UnitX), r.Rotate(UnitY), r.Rotate(UnitZ)
}

func toV3(v Vector3) v3.Vec {
	return v3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

func fromV3(v v3.Vec) Vector3 {
	return Vector3{X: v.X, Y: v.Y, Z: v.Z}
}
