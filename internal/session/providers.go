package session

import (
	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/internal/prefs"
	"github.com/philipparndt/gowp/pkg/viewer"
	"github.com/philipparndt/gowp/pkg/workplane"
)

// SelectionItem is one selected object with its picked sub-elements
type SelectionItem = document.SelectionItem

// SelectionProvider yields the host's current selection
type SelectionProvider interface {
	Selection() []SelectionItem
	ClearSelection()
}

// GeometryProvider resolves selected objects to their geometry
type GeometryProvider interface {
	Object(name string) (document.Object, bool)
}

// ViewportProvider exposes the viewport camera
type ViewportProvider interface {
	Camera() viewer.CameraPose
	SetCamera(viewer.CameraPose)
}

// VisibilitySetter is implemented by hosts that can show and hide objects
type VisibilitySetter interface {
	SetVisibility(name string, visible bool)
}

// GridUpdater is implemented by hosts that draw a grid on the working plane
type GridUpdater interface {
	UpdateGrid(workplane.Plane, prefs.Preferences)
}

// PrefsStore loads and persists the preferences
type PrefsStore interface {
	Load() (prefs.Preferences, error)
	Save(prefs.Preferences) error
}
