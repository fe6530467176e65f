package workplane

import (
	"fmt"
	"math"

	"github.com/philipparndt/gowp/pkg/geometry"
)

// Solve derives the working plane for a selection. The offset moves the
// plane along its normal; it is ignored for proxies and section planes.
func Solve(sel Selection, offset float64) (Plane, error) {
	switch s := sel.(type) {
	case Face:
		return solveFace(s, offset)
	case ThreePoints:
		return solveThreePoints(s, offset)
	case AxisEdges:
		return solveAxis(s, offset)
	case SavedProxy:
		p, err := FromPlacement(s.Placement)
		if err != nil {
			return Plane{}, fmt.Errorf("proxy %q: %w", s.Label, err)
		}
		p.Weak = s.AutoWorkingPlane
		return p, nil
	case SectionPlane:
		p, err := FromPlacement(s.Placement)
		if err != nil {
			return Plane{}, fmt.Errorf("section plane %q: %w", s.Label, err)
		}
		return p, nil
	case Canonical:
		if !s.Direction.Valid() {
			return Plane{}, fmt.Errorf("canonical plane: %w", ErrNoSelection)
		}
		return FromNormal(s.Center, s.Direction.Normal(), offset)
	case nil:
		return Plane{}, ErrNoSelection
	}
	return Plane{}, fmt.Errorf("unsupported selection %T: %w", sel, ErrNoSelection)
}

func solveFace(f Face, offset float64) (Plane, error) {
	p, err := FromNormal(f.Point, f.Normal, offset)
	if err != nil {
		return Plane{}, fmt.Errorf("face: %w", err)
	}
	return p, nil
}

func solveThreePoints(t ThreePoints, offset float64) (Plane, error) {
	cross := t.P1.Sub(t.P0).Cross(t.P2.Sub(t.P0))
	if cross.Length() < Epsilon {
		return Plane{}, fmt.Errorf("three points: collinear: %w", ErrDegenerateGeometry)
	}
	return FromNormal(t.P0, cross, offset)
}

// solveAxis puts the first edge on U. A second edge parallel to the first
// spans V; without one, V is +Z (or +Y for a vertical axis) made orthogonal
// to U.
func solveAxis(a AxisEdges, offset float64) (Plane, error) {
	if len(a.Edges) == 0 {
		return Plane{}, fmt.Errorf("axis: no edges: %w", ErrNoSelection)
	}

	first := a.Edges[0]
	d := first.Direction()
	if d.Length() < Epsilon {
		return Plane{}, fmt.Errorf("axis: zero length edge: %w", ErrDegenerateGeometry)
	}
	u := d.Normalize()

	var span geometry.Vector3
	for i, e := range a.Edges[1:] {
		ed := e.Direction()
		if ed.Length() < Epsilon {
			return Plane{}, fmt.Errorf("axis: edge %d has zero length: %w", i+1, ErrDegenerateGeometry)
		}
		angle := ed.Angle(d)
		if math.Min(angle, math.Pi-angle) > AngleTolerance {
			return Plane{}, fmt.Errorf("axis: edge %d is not parallel: %w", i+1, ErrDegenerateGeometry)
		}
		if span.IsZero(Epsilon) {
			span = e.Start.Sub(first.Start).Reject(u)
		}
	}

	if span.IsZero(Epsilon) {
		span = geometry.UnitZ.Reject(u)
		if span.Length() < math.Sin(AngleTolerance) {
			span = geometry.UnitY.Reject(u)
		}
	}
	v := span.Normalize()
	n := u.Cross(v).Normalize()

	return Plane{
		Origin: first.Start.Add(n.Mul(offset)),
		Normal: n,
		U:      u,
		V:      v,
		Offset: offset,
	}, nil
}
