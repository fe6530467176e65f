// Package session sequences the working plane command: it reads the
// selection or a panel button, solves the plane, records it in the history,
// moves the camera and reports a status.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/philipparndt/gowp/internal/prefs"
	"github.com/philipparndt/gowp/pkg/geometry"
	"github.com/philipparndt/gowp/pkg/viewer"
	"github.com/philipparndt/gowp/pkg/workplane"
)

// ErrNotActive is returned for commands that need an active session
var ErrNotActive = errors.New("working plane command is not active")

// State of the command
type State int

const (
	Idle State = iota
	AwaitingSelection
	PlaneApplied
	Cancelled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingSelection:
		return "awaiting-selection"
	case PlaneApplied:
		return "plane-applied"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Deps are the host capabilities a controller works against. Visibility
// and grid updates are used when Geometry or Viewport implement
// VisibilitySetter or GridUpdater.
type Deps struct {
	Selection SelectionProvider
	Geometry  GeometryProvider
	Viewport  ViewportProvider
	Store     PrefsStore   // optional
	Logger    *slog.Logger // optional
	Queue     *Queue       // optional
}

// Controller runs the working plane command. It is not safe for concurrent
// use; wrap it in a Guard when events arrive on several goroutines.
type Controller struct {
	selection SelectionProvider
	geometry  GeometryProvider
	viewport  ViewportProvider
	visible   VisibilitySetter
	grid      GridUpdater
	store     PrefsStore
	logger    *slog.Logger
	queue     *Queue

	state     State
	plane     workplane.Plane
	history   *workplane.History
	mark      int
	restore   workplane.Plane
	offset    float64
	prefs     prefs.Preferences
	status    Status
	listeners []func()
}

// New creates an idle controller. The working plane starts as the weak XY
// plane through the origin.
func New(d Deps) *Controller {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	queue := d.Queue
	if queue == nil {
		queue = NewQueue()
	}

	c := &Controller{
		selection: d.Selection,
		geometry:  d.Geometry,
		viewport:  d.Viewport,
		store:     d.Store,
		logger:    logger.With(slog.String("component", "session")),
		queue:     queue,
		prefs:     prefs.Defaults(),
	}
	c.plane = workplane.DefaultPlane()
	c.plane.Weak = true
	c.status = namedStatus("Auto", c.plane.Normal, 0)

	for _, dep := range []any{d.Geometry, d.Viewport, d.Selection} {
		if v, ok := dep.(VisibilitySetter); ok && c.visible == nil {
			c.visible = v
		}
		if g, ok := dep.(GridUpdater); ok && c.grid == nil {
			c.grid = g
		}
	}
	return c
}

// OnChange registers a callback run after every state, plane or
// preference change
func (c *Controller) OnChange(fn func()) {
	c.listeners = append(c.listeners, fn)
}

func (c *Controller) notify() {
	for _, fn := range c.listeners {
		fn()
	}
}

// State returns the command state
func (c *Controller) State() State { return c.state }

// Active reports whether the command waits for a selection
func (c *Controller) Active() bool { return c.state == AwaitingSelection }

// Plane returns the working plane
func (c *Controller) Plane() workplane.Plane { return c.plane }

// Status returns the status of the last plane change
func (c *Controller) Status() Status { return c.status }

// Offset returns the offset applied to solved planes
func (c *Controller) Offset() float64 { return c.offset }

// Preferences returns the preferences in effect
func (c *Controller) Preferences() prefs.Preferences { return c.prefs }

// Queue returns the deferred event queue
func (c *Controller) Queue() *Queue { return c.queue }

// HistoryLen returns the number of recorded planes, zero before the first
// activation
func (c *Controller) HistoryLen() int {
	if c.history == nil {
		return 0
	}
	return c.history.Len()
}

// Activate starts the command. The current plane becomes the first history
// entry when there is no history yet. A selection made beforehand is used
// right away; if it yields a plane the command completes immediately.
func (c *Controller) Activate() error {
	if c.state == AwaitingSelection {
		return nil
	}

	if c.store != nil {
		p, err := c.store.Load()
		if err != nil {
			c.logger.Warn("using previous preferences", slog.String("error", err.Error()))
		} else {
			c.prefs = p
		}
	}

	if c.history == nil {
		c.history = workplane.NewHistory(c.plane)
	}
	c.mark = c.history.Len()
	c.restore = c.plane
	c.state = AwaitingSelection
	c.logger.Debug("activated", slog.Int("history", c.history.Len()))

	if _, err := c.handleSelection(); err != nil && !errors.Is(err, workplane.ErrNoSelection) {
		c.logger.Info("selection does not define a plane", slog.String("error", err.Error()))
	}
	c.notify()
	return nil
}

// OnSelectionMade solves the plane for sel. On failure the command keeps
// waiting and the error is returned.
func (c *Controller) OnSelectionMade(sel workplane.Selection) error {
	if c.state != AwaitingSelection {
		return ErrNotActive
	}
	plane, err := workplane.Solve(sel, c.offset)
	if err != nil {
		c.logger.Info("cannot derive plane", slog.String("kind", kindOf(sel)), slog.String("error", err.Error()))
		return err
	}

	c.apply(plane, statusFor(sel, plane))
	c.restoreProxyState(sel)
	c.finish()
	return nil
}

// CheckSelection reads the host selection and applies it when it defines
// a plane. It is a no-op when the command is not waiting.
func (c *Controller) CheckSelection() error {
	if c.state != AwaitingSelection {
		return nil
	}
	_, err := c.handleSelection()
	return err
}

// OnPointerDown defers CheckSelection to the next queue iteration, since
// the host updates its selection after delivering the pointer event.
func (c *Controller) OnPointerDown() {
	if c.state != AwaitingSelection {
		return
	}
	c.queue.Post(func() {
		if err := c.CheckSelection(); err != nil && !errors.Is(err, workplane.ErrNoSelection) {
			c.logger.Info("selection does not define a plane", slog.String("error", err.Error()))
		}
	})
}

func (c *Controller) handleSelection() (bool, error) {
	if c.selection == nil || c.geometry == nil {
		return false, workplane.ErrNoSelection
	}
	sel, err := Classify(c.selection.Selection(), c.geometry)
	if err != nil {
		return false, err
	}
	if err := c.OnSelectionMade(sel); err != nil {
		return false, err
	}
	return true, nil
}

// OnCanonicalButton applies one of the six axis-aligned planes. With
// centering enabled the plane passes through the point the camera looks at.
func (c *Controller) OnCanonicalButton(direction workplane.Direction, offset float64) error {
	if c.state != AwaitingSelection {
		return ErrNotActive
	}
	c.offset = offset

	var center geometry.Vector3
	if c.prefs.CenterPlaneOnView && c.viewport != nil {
		if p, ok := viewer.CenterPoint(c.viewport.Camera(), direction.Normal()); ok {
			center = p
		}
	}

	plane, err := workplane.Solve(workplane.Canonical{Direction: direction, Center: center}, offset)
	if err != nil {
		return err
	}
	c.apply(plane, namedStatus(direction.String(), plane.Normal, offset))
	c.finish()
	return nil
}

// OnAlignToView puts the plane through the origin facing the camera, with
// the camera's up direction as V.
func (c *Controller) OnAlignToView() error {
	if c.state != AwaitingSelection {
		return ErrNotActive
	}
	if c.viewport == nil {
		return fmt.Errorf("align to view: no viewport: %w", workplane.ErrNoSelection)
	}

	cam := c.viewport.Camera()
	d := cam.ViewDirection().Neg()
	plane, err := workplane.FromNormalUp(geometry.Vector3{}, d, cam.Up(), 0)
	if err != nil {
		return fmt.Errorf("align to view: %w", err)
	}
	c.apply(plane, customStatus(d, plane.Normal))
	c.finish()
	return nil
}

// OnAuto resets to the weak XY plane through the origin
func (c *Controller) OnAuto() error {
	if c.state != AwaitingSelection {
		return ErrNotActive
	}
	plane := workplane.DefaultPlane()
	plane.Weak = true
	c.apply(plane, namedStatus("Auto", plane.Normal, c.offset))
	c.finish()
	return nil
}

// OnMove moves the plane origin to the single selected vertex. Without a
// selection the origin moves to the point the camera looks at. Any other
// selection leaves the plane alone and returns ErrNoSelection.
func (c *Controller) OnMove() error {
	if c.state != AwaitingSelection {
		return ErrNotActive
	}

	var items []SelectionItem
	if c.selection != nil {
		items = c.selection.Selection()
	}

	var target geometry.Vector3
	if len(items) > 0 {
		if c.geometry == nil {
			return workplane.ErrNoSelection
		}
		points, err := pickedVertices(items, c.geometry)
		if err != nil {
			return err
		}
		if len(points) != 1 {
			return fmt.Errorf("move needs one vertex, got %d: %w", len(points), workplane.ErrNoSelection)
		}
		target = points[0]
	} else {
		if c.viewport == nil {
			return fmt.Errorf("move: no viewport: %w", workplane.ErrNoSelection)
		}
		target = viewer.ProjectCamera(c.viewport.Camera(), c.plane)
	}

	plane := c.plane.WithOrigin(target)
	c.apply(plane, customStatus(target, plane.Normal))
	c.finish()
	return nil
}

// OnCenter turns the camera onto the plane and centers the plane origin
// in the view. The plane itself does not change.
func (c *Controller) OnCenter() error {
	if c.state != AwaitingSelection {
		return ErrNotActive
	}
	if c.viewport != nil {
		c.viewport.SetCamera(viewer.AlignCamera(c.viewport.Camera(), c.plane, true))
	}
	c.finish()
	return nil
}

// OnPrevious restores the plane before the last change. With a single
// history entry it does nothing.
func (c *Controller) OnPrevious() error {
	if c.history == nil {
		return nil
	}
	plane, ok := c.history.Previous()
	if !ok {
		c.logger.Debug("no previous plane")
		return nil
	}
	if c.mark > c.history.Len() {
		c.mark = c.history.Len()
	}

	c.plane = plane
	c.status = customStatus(plane.Normal, plane.Normal)
	c.updateGrid()
	if c.state == AwaitingSelection {
		c.finish()
		return nil
	}
	c.notify()
	return nil
}

// Cancel ends the command, restoring the plane that was active when it
// started and dropping any history recorded since.
func (c *Controller) Cancel() error {
	if c.state != AwaitingSelection {
		return ErrNotActive
	}
	c.history.Truncate(c.mark)
	c.plane = c.restore
	c.updateGrid()
	c.state = Cancelled
	c.logger.Debug("cancelled")
	c.finish()
	return nil
}

// OnEscape is the keyboard shortcut for Cancel
func (c *Controller) OnEscape() error {
	return c.Cancel()
}

func (c *Controller) apply(plane workplane.Plane, status Status) {
	c.plane = plane
	c.history.Push(plane)
	c.status = status
	c.state = PlaneApplied
	c.updateGrid()
	c.logger.Info("working plane changed",
		slog.String("label", status.Label),
		slog.Any("origin", plane.Origin),
		slog.Any("normal", plane.Normal))
}

// restoreProxyState applies the camera and visibility stored with a proxy
func (c *Controller) restoreProxyState(sel workplane.Selection) {
	proxy, ok := sel.(workplane.SavedProxy)
	if !ok {
		return
	}

	if proxy.RestoreView && len(proxy.ViewData) >= 12 && c.viewport != nil {
		pose, err := viewer.PoseFromViewData(proxy.ViewData)
		if err != nil {
			c.logger.Warn("ignoring stored view", slog.String("proxy", proxy.Label), slog.String("error", err.Error()))
		} else {
			c.viewport.SetCamera(pose)
		}
	}

	if proxy.RestoreState && c.visible != nil {
		for name, visible := range proxy.Visibility {
			c.visible.SetVisibility(name, visible)
		}
	}
}

// finish ends the command and stores the centering choice
func (c *Controller) finish() {
	c.state = Idle
	c.persist()
	c.notify()
}

func (c *Controller) updateGrid() {
	if c.grid != nil {
		c.grid.UpdateGrid(c.plane, c.prefs)
	}
}

func (c *Controller) persist() {
	if c.store == nil {
		return
	}
	if err := c.store.Save(c.prefs); err != nil {
		c.logger.Warn("failed to save preferences", slog.String("error", err.Error()))
	}
}

func statusFor(sel workplane.Selection, plane workplane.Plane) Status {
	switch s := sel.(type) {
	case workplane.SavedProxy:
		if s.Label != "" {
			return labelStatus(s.Label)
		}
	case workplane.SectionPlane:
		if s.Label != "" {
			return labelStatus(s.Label)
		}
	}
	return customStatus(plane.Normal, plane.Normal)
}

func kindOf(sel workplane.Selection) string {
	if sel == nil {
		return "none"
	}
	return sel.Kind()
}
