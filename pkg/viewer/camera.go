package viewer

import (
	"math"

	"github.com/philipparndt/gowp/pkg/geometry"
)

// CameraPose is the viewport camera. The camera looks along its local -Z
// axis with local +Y up; Orientation maps those axes into global space.
type CameraPose struct {
	Position    geometry.Vector3
	Orientation geometry.Quaternion
	Height      float64 // view height for orthographic, height angle in radians for perspective
	Perspective bool
	Near        float64
	Far         float64
	Aspect      float64
	Focal       float64 // distance to the point the camera orbits around
}

// NewCameraPose creates an orthographic camera looking down onto a bounding box
func NewCameraPose(bbox geometry.BoundingBox) CameraPose {
	if bbox.IsEmpty() {
		bbox = geometry.BoundingBox{}
	}
	center := bbox.Center()
	size := bbox.Size()
	extent := math.Max(size.X, math.Max(size.Y, size.Z))
	if extent == 0 {
		extent = 10
	}
	distance := extent * 2.0

	return CameraPose{
		Position:    center.Add(geometry.NewVector3(0, 0, distance)),
		Orientation: geometry.IdentityQuaternion(),
		Height:      extent * 1.5,
		Near:        0.1,
		Far:         distance * 4,
		Aspect:      1,
		Focal:       distance,
	}
}

// ViewDirection returns the unit direction the camera looks along
func (c CameraPose) ViewDirection() geometry.Vector3 {
	return c.Orientation.Normalize().Rotate(geometry.Vector3{Z: -1})
}

// Up returns the camera's up direction
func (c CameraPose) Up() geometry.Vector3 {
	return c.Orientation.Normalize().Rotate(geometry.UnitY)
}

// Right returns the camera's right direction
func (c CameraPose) Right() geometry.Vector3 {
	return c.Orientation.Normalize().Rotate(geometry.UnitX)
}

// Target returns the point the camera orbits around
func (c CameraPose) Target() geometry.Vector3 {
	return c.Position.Add(c.ViewDirection().Mul(c.Focal))
}

// Orbit rotates the camera around its target by yaw (around global Z) and
// pitch (around the camera's right axis).
func (c CameraPose) Orbit(yaw, pitch float64) CameraPose {
	target := c.Target()
	q := geometry.QuaternionFromAxisAngle(geometry.UnitZ, yaw).
		Mul(geometry.QuaternionFromAxisAngle(c.Right(), pitch))
	c.Orientation = q.Mul(c.Orientation).Normalize()
	c.Position = target.Sub(c.ViewDirection().Mul(c.Focal))
	return c
}

// Zoom scales the visible area by (1 + delta)
func (c CameraPose) Zoom(delta float64) CameraPose {
	factor := 1.0 + delta
	if factor < 0.1 {
		factor = 0.1
	}
	if c.Perspective {
		target := c.Target()
		c.Focal = math.Max(0.1, c.Focal*factor)
		c.Position = target.Sub(c.ViewDirection().Mul(c.Focal))
		return c
	}
	c.Height = math.Max(0.01, c.Height*factor)
	return c
}

// Project projects a 3D point to 2D screen coordinates. The third value is
// the depth along the view direction.
func (c CameraPose) Project(point geometry.Vector3, width, height float64) (float64, float64, float64) {
	relative := point.Sub(c.Position)
	x := relative.Dot(c.Right())
	y := relative.Dot(c.Up())
	z := relative.Dot(c.ViewDirection())

	aspect := width / height
	var scale float64
	if c.Perspective {
		if z <= 0.01 {
			z = 0.01
		}
		scale = z * math.Tan(c.Height/2)
	} else {
		scale = c.Height / 2
	}

	screenX := (x/(scale*aspect))*(width/2) + (width / 2)
	screenY := (-y/scale)*(height/2) + (height / 2)
	return screenX, screenY, z
}
