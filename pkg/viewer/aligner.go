package viewer

import (
	"math"

	"github.com/philipparndt/gowp/pkg/geometry"
	"github.com/philipparndt/gowp/pkg/workplane"
)

// ParallelTolerance is the angle in radians below which the view ray is
// treated as parallel to a plane.
const ParallelTolerance = 1e-4

// AlignCamera turns the camera to look straight down onto the plane with V
// as the up direction. With center set, the camera is also moved so the
// point it was looking at ends up above the plane's local origin.
func AlignCamera(pose CameraPose, plane workplane.Plane, center bool) CameraPose {
	aligned := pose
	aligned.Orientation = plane.Rotation()
	if !center {
		return aligned
	}

	hit, ok := intersect(pose.Position, pose.ViewDirection(), plane.Origin, plane.Normal)
	if !ok {
		return aligned
	}
	local := plane.ToLocal(hit)
	delta := plane.U.Mul(local.X).Add(plane.V.Mul(local.Y))
	aligned.Position = pose.Position.Sub(delta)
	return aligned
}

// CenterPoint returns where the view ray meets the plane through the
// global origin with the given normal.
func CenterPoint(pose CameraPose, normal geometry.Vector3) (geometry.Vector3, bool) {
	return intersect(pose.Position, pose.ViewDirection(), geometry.Vector3{}, normal.Normalize())
}

// ProjectPoint projects a point onto the plane along direction
func ProjectPoint(plane workplane.Plane, point, direction geometry.Vector3) geometry.Vector3 {
	return plane.ProjectPoint(point, direction)
}

// ProjectCamera returns the point of the plane the camera looks at, falling
// back to the projection along the normal when the view is edge-on.
func ProjectCamera(pose CameraPose, plane workplane.Plane) geometry.Vector3 {
	return plane.ProjectPoint(pose.Position, pose.ViewDirection())
}

// intersect casts a ray against a plane. It fails when the ray runs within
// ParallelTolerance of the plane or the plane lies behind the ray origin.
func intersect(origin, dir, planePoint, normal geometry.Vector3) (geometry.Vector3, bool) {
	d := dir.Normalize()
	if d.IsZero(workplane.Epsilon) || normal.IsZero(workplane.Epsilon) {
		return geometry.Vector3{}, false
	}
	denom := d.Dot(normal)
	if math.Abs(denom) < math.Sin(ParallelTolerance) {
		return geometry.Vector3{}, false
	}
	t := planePoint.Sub(origin).Dot(normal) / denom
	if t < 0 {
		return geometry.Vector3{}, false
	}
	return origin.Add(d.Mul(t)), true
}
