package session

import (
	"fmt"
	"strings"

	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/pkg/geometry"
	"github.com/philipparndt/gowp/pkg/workplane"
)

// Classify turns the host selection into a selection descriptor. It is the
// only place where the shape of the selection is inspected.
//
// A single selected object yields its axis edges, its proxy or section
// placement, one picked face, its "Plane" placement, three picked vertices,
// or the only face of a single-face shape. Several objects yield a plane
// through exactly three picked vertices.
func Classify(items []SelectionItem, geo GeometryProvider) (workplane.Selection, error) {
	switch len(items) {
	case 0:
		return nil, workplane.ErrNoSelection
	case 1:
		return classifySingle(items[0], geo)
	}

	points, err := pickedVertices(items, geo)
	if err != nil {
		return nil, err
	}
	if len(points) == 3 {
		return workplane.ThreePoints{P0: points[0], P1: points[1], P2: points[2]}, nil
	}
	return nil, fmt.Errorf("%d vertices picked across %d objects: %w", len(points), len(items), workplane.ErrNoSelection)
}

func classifySingle(item SelectionItem, geo GeometryProvider) (workplane.Selection, error) {
	obj, ok := geo.Object(item.Object)
	if !ok {
		return nil, fmt.Errorf("unknown object %q: %w", item.Object, workplane.ErrNoSelection)
	}

	switch obj.Kind {
	case document.KindAxis:
		return workplane.AxisEdges{Edges: obj.Edges}, nil
	case document.KindProxy, document.KindBuildingPart:
		return workplane.SavedProxy{
			Label:            obj.DisplayLabel(),
			Placement:        obj.Placement,
			AutoWorkingPlane: obj.View.AutoWorkingPlane,
			RestoreView:      obj.View.RestoreView,
			ViewData:         obj.View.ViewData,
			RestoreState:     obj.View.RestoreState,
			Visibility:       obj.View.VisibilityMap,
		}, nil
	case document.KindSectionPlane:
		return workplane.SectionPlane{Label: obj.DisplayLabel(), Placement: obj.Placement}, nil
	}

	subs := item.SubElements
	switch {
	case len(subs) == 1 && strings.HasPrefix(subs[0], "Face"):
		face, err := subFace(obj, subs[0])
		if err != nil {
			return nil, err
		}
		return workplane.Face{Normal: face.Normal, Point: face.Point}, nil

	case len(subs) == 1 && subs[0] == "Plane":
		return workplane.SectionPlane{Placement: obj.Placement}, nil

	case len(subs) == 3:
		points, err := pickedVertices([]SelectionItem{item}, geo)
		if err != nil {
			return nil, err
		}
		if len(points) == 3 {
			return workplane.ThreePoints{P0: points[0], P1: points[1], P2: points[2]}, nil
		}

	case len(subs) == 0 && len(obj.Faces) == 1:
		face := obj.Faces[0]
		return workplane.Face{Normal: face.Normal, Point: face.Point}, nil
	}

	return nil, fmt.Errorf("%s with %v: %w", obj.Name, subs, workplane.ErrNoSelection)
}

func subFace(obj document.Object, name string) (document.Face, error) {
	sub, err := document.ParseSubElement(name)
	if err != nil {
		return document.Face{}, fmt.Errorf("%v: %w", err, workplane.ErrNoSelection)
	}
	face, err := obj.Face(sub.Index)
	if err != nil {
		return document.Face{}, fmt.Errorf("%v: %w", err, workplane.ErrNoSelection)
	}
	return face, nil
}

// pickedVertices collects the points of every picked vertex in selection order
func pickedVertices(items []SelectionItem, geo GeometryProvider) ([]geometry.Vector3, error) {
	var points []geometry.Vector3
	for _, item := range items {
		obj, ok := geo.Object(item.Object)
		if !ok {
			return nil, fmt.Errorf("unknown object %q: %w", item.Object, workplane.ErrNoSelection)
		}
		for _, name := range item.SubElements {
			if !strings.HasPrefix(name, "Vertex") {
				continue
			}
			sub, err := document.ParseSubElement(name)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", err, workplane.ErrNoSelection)
			}
			p, err := obj.Vertex(sub.Index)
			if err != nil {
				return nil, fmt.Errorf("%v: %w", err, workplane.ErrNoSelection)
			}
			points = append(points, p)
		}
	}
	return points, nil
}
