// Package document is an in-memory host document: named objects with
// faces, edges and vertices, a selection set, object visibility, the
// viewport camera and the drawing grid.
package document

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/philipparndt/gowp/internal/prefs"
	"github.com/philipparndt/gowp/pkg/analysis"
	"github.com/philipparndt/gowp/pkg/geometry"
	"github.com/philipparndt/gowp/pkg/stl"
	"github.com/philipparndt/gowp/pkg/viewer"
	"github.com/philipparndt/gowp/pkg/workplane"
)

// SelectionItem is one selected object with the sub-elements picked on it
type SelectionItem struct {
	Object      string
	SubElements []string
}

// Grid is the drawing grid laid out on the working plane
type Grid struct {
	Plane      workplane.Plane
	Spacing    float64
	MainLine   int
	SnapRadius int
}

// Document holds the objects of one session
type Document struct {
	objects   map[string]*Object
	order     []string
	models    map[string]*stl.Model
	selection []SelectionItem
	camera    viewer.CameraPose
	grid      Grid
	listeners []func()
}

// New creates an empty document with a default camera and grid
func New() *Document {
	defaults := prefs.Defaults()
	return &Document{
		objects: make(map[string]*Object),
		models:  make(map[string]*stl.Model),
		camera:  viewer.NewCameraPose(geometry.NewBoundingBox()),
		grid: Grid{
			Plane:      workplane.DefaultPlane(),
			Spacing:    defaults.GridSpacing,
			MainLine:   defaults.GridMainLine,
			SnapRadius: defaults.SnapRadius,
		},
	}
}

// OnChange registers a callback run after every change
func (d *Document) OnChange(fn func()) {
	d.listeners = append(d.listeners, fn)
}

func (d *Document) changed() {
	for _, fn := range d.listeners {
		fn()
	}
}

// Add inserts an object. An empty name is derived from the label or kind.
func (d *Document) Add(obj Object) (Object, error) {
	if obj.Name == "" {
		base := obj.Label
		if base == "" {
			base = obj.Kind.String()
		}
		obj.Name = d.uniqueName(sanitizeName(base))
	}
	if _, exists := d.objects[obj.Name]; exists {
		return Object{}, fmt.Errorf("object %q already exists", obj.Name)
	}
	if obj.Placement.Rotation == (geometry.Quaternion{}) {
		obj.Placement.Rotation = geometry.IdentityQuaternion()
	}
	d.objects[obj.Name] = &obj
	d.order = append(d.order, obj.Name)
	d.changed()
	return obj, nil
}

func (d *Document) uniqueName(base string) string {
	if _, exists := d.objects[base]; !exists {
		return base
	}
	for i := 1; ; i++ {
		name := fmt.Sprintf("%s%03d", base, i)
		if _, exists := d.objects[name]; !exists {
			return name
		}
	}
}

func sanitizeName(s string) string {
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, s)
	if s == "" {
		return "Object"
	}
	return s
}

// Object returns the object with the given name
func (d *Document) Object(name string) (Object, bool) {
	obj, ok := d.objects[name]
	if !ok {
		return Object{}, false
	}
	return *obj, true
}

// Objects returns all objects in insertion order
func (d *Document) Objects() []Object {
	out := make([]Object, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, *d.objects[name])
	}
	return out
}

// Model returns the mesh an object was imported from
func (d *Document) Model(name string) (*stl.Model, bool) {
	m, ok := d.models[name]
	return m, ok
}

// Select adds an object, and optionally sub-elements of it, to the
// selection. Selecting the same object again extends its sub-elements.
func (d *Document) Select(object string, subElements ...string) error {
	obj, ok := d.objects[object]
	if !ok {
		return fmt.Errorf("unknown object %q", object)
	}
	for _, sub := range subElements {
		if err := obj.validate(sub); err != nil {
			return err
		}
	}

	for i := range d.selection {
		if d.selection[i].Object == object {
			d.selection[i].SubElements = append(d.selection[i].SubElements, subElements...)
			d.changed()
			return nil
		}
	}
	d.selection = append(d.selection, SelectionItem{
		Object:      object,
		SubElements: append([]string(nil), subElements...),
	})
	d.changed()
	return nil
}

// Selection returns a copy of the current selection
func (d *Document) Selection() []SelectionItem {
	out := make([]SelectionItem, len(d.selection))
	for i, item := range d.selection {
		out[i] = SelectionItem{
			Object:      item.Object,
			SubElements: append([]string(nil), item.SubElements...),
		}
	}
	return out
}

// ClearSelection empties the selection
func (d *Document) ClearSelection() {
	if len(d.selection) == 0 {
		return
	}
	d.selection = nil
	d.changed()
}

// SetVisibility shows or hides an object. Unknown names are ignored.
func (d *Document) SetVisibility(name string, visible bool) {
	obj, ok := d.objects[name]
	if !ok || obj.Visible == visible {
		return
	}
	obj.Visible = visible
	d.changed()
}

// Camera returns the viewport camera
func (d *Document) Camera() viewer.CameraPose {
	return d.camera
}

// SetCamera replaces the viewport camera
func (d *Document) SetCamera(pose viewer.CameraPose) {
	d.camera = pose
	d.changed()
}

// UpdateGrid lays the grid out on plane with the given preferences
func (d *Document) UpdateGrid(plane workplane.Plane, p prefs.Preferences) {
	d.grid = Grid{
		Plane:      plane,
		Spacing:    p.GridSpacing,
		MainLine:   p.GridMainLine,
		SnapRadius: p.SnapRadius,
	}
	d.changed()
}

// Grid returns the current drawing grid
func (d *Document) Grid() Grid {
	return d.grid
}

// ImportSTL reads a mesh and adds it as a shape object. Its faces are the
// coplanar triangle groups, its edges the feature edges of the mesh. The
// camera is framed on the first imported mesh.
func (d *Document) ImportSTL(name string, r io.Reader) (Object, error) {
	model, err := stl.ParseReader(r)
	if err != nil {
		return Object{}, fmt.Errorf("failed to import %s: %w", name, err)
	}
	return d.importModel(name, model)
}

// ImportSTLFile imports an STL file, naming the object after the file
func (d *Document) ImportSTLFile(path string) (Object, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	model, err := stl.Parse(path)
	if err != nil {
		return Object{}, fmt.Errorf("failed to import %s: %w", name, err)
	}
	return d.importModel(name, model)
}

func (d *Document) importModel(name string, model *stl.Model) (Object, error) {
	if model.Name != "" && name == "" {
		name = model.Name
	}

	obj := Object{
		Label:    name,
		Kind:     KindShape,
		Vertices: model.Vertices(),
		Visible:  true,
	}
	for _, f := range analysis.Faces(model, analysis.DefaultAngle) {
		obj.Faces = append(obj.Faces, Face{Normal: f.Normal, Point: f.Point})
	}
	for _, e := range analysis.FeatureEdges(model, analysis.DefaultAngle) {
		obj.Edges = append(obj.Edges, workplane.Edge{Start: e.Start, End: e.End})
	}

	first := len(d.models) == 0
	obj, err := d.Add(obj)
	if err != nil {
		return Object{}, err
	}
	d.models[obj.Name] = model
	if first {
		d.SetCamera(viewer.NewCameraPose(model.BoundingBox()))
	}
	return obj, nil
}

// AddProxy stores plane as a working plane proxy that also remembers the
// current camera and the visibility of every object.
func (d *Document) AddProxy(label string, plane workplane.Plane) (Object, error) {
	visibility := make(map[string]bool, len(d.order))
	for _, name := range d.order {
		visibility[name] = d.objects[name].Visible
	}
	if label == "" {
		label = "WPProxy"
	}
	return d.Add(Object{
		Label:     label,
		Kind:      KindProxy,
		Placement: plane.Placement(),
		Visible:   true,
		View: ViewState{
			RestoreView:   true,
			ViewData:      d.camera.ViewData(),
			RestoreState:  true,
			VisibilityMap: visibility,
		},
	})
}
