package workplane

import "errors"

var (
	// ErrDegenerateGeometry is returned for collinear points, zero normals and
	// edges that do not share a direction.
	ErrDegenerateGeometry = errors.New("degenerate geometry")

	// ErrInvalidPlacement is returned when a placement rotation is not a unit
	// quaternion or a component is not finite.
	ErrInvalidPlacement = errors.New("invalid placement")

	// ErrNoSelection is returned when nothing usable was picked.
	ErrNoSelection = errors.New("no usable selection")
)
