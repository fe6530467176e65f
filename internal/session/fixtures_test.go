package session

import (
	"io"
	"log/slog"

	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/internal/prefs"
	"github.com/philipparndt/gowp/pkg/geometry"
	"github.com/philipparndt/gowp/pkg/workplane"
)

// memStore keeps preferences in memory and counts saves
type memStore struct {
	prefs prefs.Preferences
	saves int
	err   error
}

func (m *memStore) Load() (prefs.Preferences, error) {
	if m.err != nil {
		return prefs.Preferences{}, m.err
	}
	return m.prefs, nil
}

func (m *memStore) Save(p prefs.Preferences) error {
	m.prefs = p
	m.saves++
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newFixture builds a document with a single-face sheet, a box with one
// face and four vertices, an axis, a proxy and a section plane
func newFixture() (*document.Document, *Controller, *memStore) {
	doc := document.New()
	store := &memStore{prefs: prefs.Defaults()}

	mustAdd := func(obj document.Object) {
		if _, err := doc.Add(obj); err != nil {
			panic(err)
		}
	}

	mustAdd(document.Object{
		Name:    "Sheet",
		Visible: true,
		Faces:   []document.Face{{Normal: geometry.UnitZ, Point: geometry.NewVector3(0, 0, 2)}},
	})
	mustAdd(document.Object{
		Name:    "Box",
		Visible: true,
		Faces: []document.Face{
			{Normal: geometry.NewVector3(0, -1, 0), Point: geometry.NewVector3(1, 0, 1)},
			{Normal: geometry.UnitX, Point: geometry.NewVector3(2, 1, 1)},
		},
		Vertices: []geometry.Vector3{
			geometry.NewVector3(0, 0, 0),
			geometry.NewVector3(1, 0, 0),
			geometry.NewVector3(0, 1, 0),
			geometry.NewVector3(5, 5, 5),
		},
	})
	mustAdd(document.Object{
		Name: "Axis",
		Kind: document.KindAxis,
		Edges: []workplane.Edge{
			{Start: geometry.NewVector3(0, 0, 0), End: geometry.NewVector3(10, 0, 0)},
			{Start: geometry.NewVector3(0, 4, 0), End: geometry.NewVector3(10, 4, 0)},
		},
	})
	mustAdd(document.Object{
		Name:      "Section",
		Label:     "Cut A",
		Kind:      document.KindSectionPlane,
		Placement: geometry.NewPlacement(geometry.NewVector3(0, 0, 3), geometry.IdentityQuaternion()),
	})

	c := New(Deps{
		Selection: doc,
		Geometry:  doc,
		Viewport:  doc,
		Store:     store,
		Logger:    quietLogger(),
	})
	return doc, c, store
}
