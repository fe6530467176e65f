// Package workplane derives working planes from picked geometry and keeps
// the history of planes a session has applied.
//
// A working plane is an origin plus a right-handed orthonormal basis (U, V,
// Normal). Planes are plain values; nothing in this package holds shared
// mutable plane state.
package workplane

import (
	"math"

	"github.com/philipparndt/gowp/pkg/geometry"
)

const (
	// Epsilon is the length below which a cross product or direction is
	// treated as zero.
	Epsilon = 1e-9

	// AngleTolerance is the angle in radians below which two directions are
	// treated as parallel.
	AngleTolerance = 1e-6
)

// Plane is a working plane in global coordinates.
type Plane struct {
	Origin geometry.Vector3 `json:"origin"`
	Normal geometry.Vector3 `json:"normal"`
	U      geometry.Vector3 `json:"u"`
	V      geometry.Vector3 `json:"v"`
	Offset float64          `json:"offset"` // distance Origin was moved along Normal
	Weak   bool             `json:"weak"`   // automatic plane that may follow the view
}

// DefaultPlane returns the XY plane through the global origin.
func DefaultPlane() Plane {
	return Plane{
		Origin: geometry.Vector3{},
		Normal: geometry.UnitZ,
		U:      geometry.UnitX,
		V:      geometry.UnitY,
	}
}

// Basis completes a normal to a right-handed orthonormal basis.
//
// V is the global up axis (+Z) projected into the plane; when the normal is
// parallel to +Z, V is normal x X instead. U is V x normal, so U x V equals
// the normal.
func Basis(normal geometry.Vector3) (u, v, n geometry.Vector3, err error) {
	n = normal.Normalize()
	if n.IsZero(Epsilon) {
		return u, v, n, ErrDegenerateGeometry
	}

	up := geometry.UnitZ.Reject(n)
	if up.Length() > math.Sin(AngleTolerance) {
		v = up.Normalize()
	} else {
		v = n.Cross(geometry.UnitX).Normalize()
	}
	u = v.Cross(n).Normalize()
	return u, v, n, nil
}

// FromNormal builds a plane through point with the given normal, moved by
// offset along the normal.
func FromNormal(point, normal geometry.Vector3, offset float64) (Plane, error) {
	u, v, n, err := Basis(normal)
	if err != nil {
		return Plane{}, err
	}
	return Plane{
		Origin: point.Add(n.Mul(offset)),
		Normal: n,
		U:      u,
		V:      v,
		Offset: offset,
	}, nil
}

// FromNormalUp is FromNormal with V taken from up projected into the
// plane. An up vector parallel to the normal falls back to Basis.
func FromNormalUp(point, normal, up geometry.Vector3, offset float64) (Plane, error) {
	p, err := FromNormal(point, normal, offset)
	if err != nil {
		return Plane{}, err
	}
	v := up.Reject(p.Normal)
	if v.Length() <= math.Sin(AngleTolerance)*up.Length() || v.IsZero(Epsilon) {
		return p, nil
	}
	p.V = v.Normalize()
	p.U = p.V.Cross(p.Normal).Normalize()
	return p, nil
}

// FromPlacement builds a plane whose axes are the placement's rotated X, Y
// and Z axes and whose origin is the placement base.
func FromPlacement(pl geometry.Placement) (Plane, error) {
	if !pl.Rotation.IsUnit(1e-6) || !pl.Base.IsFinite() {
		return Plane{}, ErrInvalidPlacement
	}
	u, v, n := pl.Axes()
	return Plane{Origin: pl.Base, Normal: n, U: u, V: v}, nil
}

// Rotation returns the rotation mapping the global axes onto U, V and Normal.
func (p Plane) Rotation() geometry.Quaternion {
	return geometry.QuaternionFromBasis(p.U, p.V, p.Normal)
}

// Placement returns the plane's local coordinate system.
func (p Plane) Placement() geometry.Placement {
	return geometry.NewPlacement(p.Origin, p.Rotation())
}

// ToLocal returns a global point in plane coordinates (u, v, height).
func (p Plane) ToLocal(global geometry.Vector3) geometry.Vector3 {
	return p.Placement().ToLocal(global)
}

// ToGlobal maps plane coordinates back to global space.
func (p Plane) ToGlobal(local geometry.Vector3) geometry.Vector3 {
	return p.Placement().ToGlobal(local)
}

// Distance returns the signed distance of a point above the plane.
func (p Plane) Distance(point geometry.Vector3) float64 {
	return point.Sub(p.Origin).Dot(p.Normal)
}

// ProjectPoint projects point onto the plane along direction. A zero
// direction, or one parallel to the plane, projects along the normal.
func (p Plane) ProjectPoint(point, direction geometry.Vector3) geometry.Vector3 {
	d := direction.Normalize()
	denom := d.Dot(p.Normal)
	if d.IsZero(Epsilon) || math.Abs(denom) < Epsilon {
		d = p.Normal
		denom = 1
	}
	t := -p.Distance(point) / denom
	return point.Add(d.Mul(t))
}

// WithOrigin returns a copy of the plane moved to origin.
func (p Plane) WithOrigin(origin geometry.Vector3) Plane {
	p.Origin = origin
	return p
}

// Equal reports whether both planes match component-wise within tol.
func (p Plane) Equal(other Plane, tol float64) bool {
	return p.Origin.ApproxEqual(other.Origin, tol) &&
		p.Normal.ApproxEqual(other.Normal, tol) &&
		p.U.ApproxEqual(other.U, tol) &&
		p.V.ApproxEqual(other.V, tol) &&
		math.Abs(p.Offset-other.Offset) <= tol &&
		p.Weak == other.Weak
}
