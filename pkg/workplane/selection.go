package workplane

import (
	"fmt"
	"strings"

	"github.com/philipparndt/gowp/pkg/geometry"
)

// Selection describes what the user picked. The set of variants is closed:
// Face, ThreePoints, AxisEdges, SavedProxy, SectionPlane and Canonical.
type Selection interface {
	Kind() string
	selection()
}

// Face is a planar face given by its outward normal and a point on it.
type Face struct {
	Normal geometry.Vector3
	Point  geometry.Vector3
}

// ThreePoints is three picked vertices.
type ThreePoints struct {
	P0, P1, P2 geometry.Vector3
}

// Edge is a straight edge between two points.
type Edge struct {
	Start, End geometry.Vector3
}

// Direction returns the unnormalized edge direction
func (e Edge) Direction() geometry.Vector3 {
	return e.End.Sub(e.Start)
}

// AxisEdges is the edge set of an axis object.
type AxisEdges struct {
	Edges []Edge
}

// SavedProxy is a persisted working plane object with optional view state.
type SavedProxy struct {
	Label            string
	Placement        geometry.Placement
	AutoWorkingPlane bool

	RestoreView bool
	ViewData    []float64

	RestoreState bool
	Visibility   map[string]bool
}

// SectionPlane is a section plane object.
type SectionPlane struct {
	Label     string
	Placement geometry.Placement
}

// Canonical is one of the six axis-aligned planes, optionally centered.
type Canonical struct {
	Direction Direction
	Center    geometry.Vector3
}

func (Face) Kind() string         { return "face" }
func (ThreePoints) Kind() string  { return "three-points" }
func (AxisEdges) Kind() string    { return "axis" }
func (SavedProxy) Kind() string   { return "proxy" }
func (SectionPlane) Kind() string { return "section-plane" }
func (Canonical) Kind() string    { return "canonical" }

func (Face) selection()         {}
func (ThreePoints) selection()  {}
func (AxisEdges) selection()    {}
func (SavedProxy) selection()   {}
func (SectionPlane) selection() {}
func (Canonical) selection()    {}

// Direction is a canonical plane orientation.
type Direction int

const (
	Top Direction = iota + 1
	Bottom
	Front
	Rear
	Side
	Left
)

var directions = map[Direction]struct {
	label  string
	normal geometry.Vector3
}{
	Top:    {"Top", geometry.Vector3{Z: 1}},
	Bottom: {"Bottom", geometry.Vector3{Z: -1}},
	Front:  {"Front", geometry.Vector3{Y: -1}},
	Rear:   {"Rear", geometry.Vector3{Y: 1}},
	Side:   {"Side", geometry.Vector3{X: 1}},
	Left:   {"Left", geometry.Vector3{X: -1}},
}

// Directions lists the canonical directions in panel order
func Directions() []Direction {
	return []Direction{Top, Front, Side, Bottom, Rear, Left}
}

// Valid reports whether d is one of the six canonical directions
func (d Direction) Valid() bool {
	_, ok := directions[d]
	return ok
}

// Normal returns the plane normal for the direction
func (d Direction) Normal() geometry.Vector3 {
	return directions[d].normal
}

func (d Direction) String() string {
	if info, ok := directions[d]; ok {
		return info.label
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// ParseDirection parses a direction name case-insensitively.
// "right" is accepted for Side and "back" for Rear.
func ParseDirection(name string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "top":
		return Top, nil
	case "bottom":
		return Bottom, nil
	case "front":
		return Front, nil
	case "rear", "back":
		return Rear, nil
	case "side", "right":
		return Side, nil
	case "left":
		return Left, nil
	}
	return 0, fmt.Errorf("unknown direction %q: %w", name, ErrNoSelection)
}
