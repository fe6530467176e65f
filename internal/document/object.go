package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/philipparndt/gowp/pkg/geometry"
	"github.com/philipparndt/gowp/pkg/workplane"
)

// Kind is the type of a document object
type Kind int

const (
	KindShape Kind = iota
	KindAxis
	KindProxy
	KindBuildingPart
	KindSectionPlane
)

func (k Kind) String() string {
	switch k {
	case KindShape:
		return "Shape"
	case KindAxis:
		return "Axis"
	case KindProxy:
		return "WorkingPlaneProxy"
	case KindBuildingPart:
		return "BuildingPart"
	case KindSectionPlane:
		return "SectionPlane"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Face is a planar face of a shape
type Face struct {
	Normal geometry.Vector3
	Point  geometry.Vector3
}

// ViewState is the camera and visibility state stored with a plane proxy
type ViewState struct {
	AutoWorkingPlane bool
	RestoreView      bool
	ViewData         []float64
	RestoreState     bool
	VisibilityMap    map[string]bool
}

// Object is a named document object. Sub-elements are addressed as
// "Face1", "Edge1" and "Vertex1", counting from one.
type Object struct {
	Name      string
	Label     string
	Kind      Kind
	Placement geometry.Placement
	Faces     []Face
	Edges     []workplane.Edge
	Vertices  []geometry.Vector3
	Visible   bool
	View      ViewState
}

// DisplayLabel returns the label, or the name when no label is set
func (o Object) DisplayLabel() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Name
}

// SubElement identifies a face, edge or vertex of an object
type SubElement struct {
	Type  string // "Face", "Edge", "Vertex" or "Plane"
	Index int    // zero based
}

// ParseSubElement parses names like "Face3" or "Vertex12"
func ParseSubElement(name string) (SubElement, error) {
	if name == "Plane" {
		return SubElement{Type: "Plane"}, nil
	}
	for _, prefix := range []string{"Face", "Edge", "Vertex"} {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
		if err != nil || n < 1 {
			return SubElement{}, fmt.Errorf("invalid sub-element %q", name)
		}
		return SubElement{Type: prefix, Index: n - 1}, nil
	}
	return SubElement{}, fmt.Errorf("invalid sub-element %q", name)
}

// Face returns the i-th face (zero based)
func (o Object) Face(i int) (Face, error) {
	if i < 0 || i >= len(o.Faces) {
		return Face{}, fmt.Errorf("%s has no Face%d", o.Name, i+1)
	}
	return o.Faces[i], nil
}

// Vertex returns the i-th vertex (zero based)
func (o Object) Vertex(i int) (geometry.Vector3, error) {
	if i < 0 || i >= len(o.Vertices) {
		return geometry.Vector3{}, fmt.Errorf("%s has no Vertex%d", o.Name, i+1)
	}
	return o.Vertices[i], nil
}

// Edge returns the i-th edge (zero based)
func (o Object) Edge(i int) (workplane.Edge, error) {
	if i < 0 || i >= len(o.Edges) {
		return workplane.Edge{}, fmt.Errorf("%s has no Edge%d", o.Name, i+1)
	}
	return o.Edges[i], nil
}

// validate checks that a sub-element name refers to existing geometry
func (o Object) validate(name string) error {
	sub, err := ParseSubElement(name)
	if err != nil {
		return err
	}
	switch sub.Type {
	case "Face":
		_, err = o.Face(sub.Index)
	case "Edge":
		_, err = o.Edge(sub.Index)
	case "Vertex":
		_, err = o.Vertex(sub.Index)
	}
	return err
}
