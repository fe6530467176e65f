package viewer

import (
	"errors"
	"fmt"

	"github.com/philipparndt/gowp/pkg/geometry"
)

// ErrInvalidViewData is returned for saved camera data that cannot be decoded.
var ErrInvalidViewData = errors.New("invalid view data")

// Saved camera layout: position (3), orientation x,y,z,w (4), near, far,
// aspect, focal, height, and an optional perspective flag.
const (
	viewDataLen     = 12
	viewDataFullLen = 13
)

// PoseFromViewData decodes a saved camera. Twelve values describe an
// orthographic camera; a thirteenth value of 1 selects perspective.
func PoseFromViewData(d []float64) (CameraPose, error) {
	if len(d) < viewDataLen {
		return CameraPose{}, fmt.Errorf("%d values, need at least %d: %w", len(d), viewDataLen, ErrInvalidViewData)
	}

	q := geometry.NewQuaternion(d[3], d[4], d[5], d[6])
	if q.Norm() == 0 || !q.Normalize().IsUnit(1e-9) {
		return CameraPose{}, fmt.Errorf("orientation %v: %w", q, ErrInvalidViewData)
	}
	pos := geometry.NewVector3(d[0], d[1], d[2])
	if !pos.IsFinite() {
		return CameraPose{}, fmt.Errorf("position %v: %w", pos, ErrInvalidViewData)
	}

	return CameraPose{
		Position:    pos,
		Orientation: q.Normalize(),
		Near:        d[7],
		Far:         d[8],
		Aspect:      d[9],
		Focal:       d[10],
		Height:      d[11],
		Perspective: len(d) >= viewDataFullLen && d[12] == 1,
	}, nil
}

// ViewData encodes the pose in the layout read by PoseFromViewData
func (c CameraPose) ViewData() []float64 {
	q := c.Orientation
	perspective := 0.0
	if c.Perspective {
		perspective = 1
	}
	return []float64{
		c.Position.X, c.Position.Y, c.Position.Z,
		q.X, q.Y, q.Z, q.W,
		c.Near, c.Far, c.Aspect, c.Focal, c.Height,
		perspective,
	}
}
