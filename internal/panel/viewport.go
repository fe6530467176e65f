package panel

import (
	"fmt"
	"image/color"
	"log/slog"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/internal/session"
	"github.com/philipparndt/gowp/pkg/geometry"
	"github.com/philipparndt/gowp/pkg/viewer"
	"github.com/philipparndt/gowp/pkg/workplane"
)

// gridHalfLines is the number of grid lines drawn on each side of the
// plane origin
const gridHalfLines = 20

var (
	edgeColor     = color.RGBA{200, 200, 200, 255}
	gridColor     = color.RGBA{70, 70, 90, 255}
	mainLineColor = color.RGBA{110, 110, 150, 255}
	axisUColor    = color.RGBA{220, 60, 60, 255}
	axisVColor    = color.RGBA{60, 200, 60, 255}
	pickColor     = color.RGBA{255, 200, 0, 255}
)

type segment struct {
	a, b  geometry.Vector3
	color color.Color
	width float32
}

type vertexRef struct {
	object string
	index  int
	point  geometry.Vector3
}

// scene is what the viewport draws, captured from the document
type scene struct {
	camera   viewer.CameraPose
	segments []segment
	vertices []vertexRef
	picked   []geometry.Vector3
}

// Viewport draws the document's visible edges and the working plane grid.
// Tapping near a vertex selects it.
type Viewport struct {
	widget.BaseWidget
	guard  *session.Guard
	doc    *document.Document
	logger *slog.Logger

	mu         sync.Mutex
	scene      scene
	width      float64
	height     float64
	dragStart  *fyne.Position
	isDragging bool
}

// NewViewport creates a viewport over doc. Document changes made through
// the guard are picked up automatically.
func NewViewport(guard *session.Guard, doc *document.Document, logger *slog.Logger) *Viewport {
	v := &Viewport{
		guard:  guard,
		doc:    doc,
		logger: logger.With(slog.String("component", "viewport")),
		width:  400,
		height: 400,
	}
	v.ExtendBaseWidget(v)

	guard.Do(func(c *session.Controller) error {
		doc.OnChange(func() {
			v.capture()
			fyne.Do(v.Refresh)
		})
		v.capture()
		return nil
	})
	return v
}

// capture copies the drawable state of the document. It runs with the
// guard held.
func (v *Viewport) capture() {
	s := scene{camera: v.doc.Camera()}

	for _, obj := range v.doc.Objects() {
		if !obj.Visible {
			continue
		}
		for _, e := range obj.Edges {
			s.segments = append(s.segments, segment{a: e.Start, b: e.End, color: edgeColor, width: 1})
		}
		for i, p := range obj.Vertices {
			s.vertices = append(s.vertices, vertexRef{object: obj.Name, index: i, point: p})
		}
	}
	s.segments = append(s.segments, gridSegments(v.doc.Grid())...)

	for _, item := range v.doc.Selection() {
		obj, ok := v.doc.Object(item.Object)
		if !ok {
			continue
		}
		for _, name := range item.SubElements {
			sub, err := document.ParseSubElement(name)
			if err != nil || sub.Type != "Vertex" {
				continue
			}
			if p, err := obj.Vertex(sub.Index); err == nil {
				s.picked = append(s.picked, p)
			}
		}
	}

	v.mu.Lock()
	v.scene = s
	v.mu.Unlock()
}

// gridSegments lays out the grid lines and the U and V axes on the plane
func gridSegments(g document.Grid) []segment {
	if g.Spacing <= 0 {
		return nil
	}
	plane := g.Plane
	extent := float64(gridHalfLines) * g.Spacing
	segments := make([]segment, 0, 4*gridHalfLines+4)

	at := func(u, v float64) geometry.Vector3 {
		return plane.ToGlobal(geometry.NewVector3(u, v, 0))
	}
	for i := -gridHalfLines; i <= gridHalfLines; i++ {
		if i == 0 {
			continue
		}
		c, w := color.Color(gridColor), float32(1)
		if g.MainLine > 1 && i%g.MainLine == 0 {
			c, w = mainLineColor, 1.5
		}
		d := float64(i) * g.Spacing
		segments = append(segments,
			segment{a: at(d, -extent), b: at(d, extent), color: c, width: w},
			segment{a: at(-extent, d), b: at(extent, d), color: c, width: w},
		)
	}
	segments = append(segments,
		segment{a: at(-extent, 0), b: at(extent, 0), color: axisUColor, width: 2},
		segment{a: at(0, -extent), b: at(0, extent), color: axisVColor, width: 2},
	)
	return segments
}

// CreateRenderer creates the renderer for the widget
func (v *Viewport) CreateRenderer() fyne.WidgetRenderer {
	v.mu.Lock()
	w, h := v.width, v.height
	v.mu.Unlock()

	r := &viewportRenderer{viewport: v, size: fyne.NewSize(float32(w), float32(h))}
	r.objects = v.render(w, h)
	return r
}

// render projects the scene for the given size
func (v *Viewport) render(width, height float64) []fyne.CanvasObject {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width, v.height = width, height

	objects := make([]fyne.CanvasObject, 0, len(v.scene.segments)+len(v.scene.picked))
	cam := v.scene.camera
	for _, s := range v.scene.segments {
		x1, y1, z1 := cam.Project(s.a, width, height)
		x2, y2, z2 := cam.Project(s.b, width, height)
		if !cam.Perspective && (z1 <= 0 && z2 <= 0) {
			continue
		}
		line := canvas.NewLine(s.color)
		line.StrokeWidth = s.width
		line.Position1 = fyne.NewPos(float32(x1), float32(y1))
		line.Position2 = fyne.NewPos(float32(x2), float32(y2))
		objects = append(objects, line)
	}

	for _, p := range v.scene.picked {
		x, y, _ := cam.Project(p, width, height)
		marker := canvas.NewCircle(pickColor)
		marker.StrokeColor = color.White
		marker.StrokeWidth = 2
		size := float32(10)
		marker.Resize(fyne.NewSize(size, size))
		marker.Move(fyne.NewPos(float32(x)-size/2, float32(y)-size/2))
		objects = append(objects, marker)
	}
	return objects
}

// nearestVertex finds the vertex closest to screen coordinates that lies
// in front of the camera
func (v *Viewport) nearestVertex(screenX, screenY float64) (vertexRef, float64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var nearest vertexRef
	minDist := math.MaxFloat64
	for _, ref := range v.scene.vertices {
		x, y, z := v.scene.camera.Project(ref.point, v.width, v.height)
		if z <= 0 {
			continue
		}
		if dist := math.Hypot(x-screenX, y-screenY); dist < minDist {
			minDist = dist
			nearest = ref
		}
	}
	return nearest, minDist
}

// Tapped selects the vertex under the pointer and lets the session react
// to the pick
func (v *Viewport) Tapped(event *fyne.PointEvent) {
	if v.isDragging {
		return
	}
	ref, dist := v.nearestVertex(float64(event.Position.X), float64(event.Position.Y))
	if dist > v.pickRadius() {
		return
	}
	v.Pick(ref.object, ref.index)
}

func (v *Viewport) pickRadius() float64 {
	radius := 1.0
	v.guard.Do(func(c *session.Controller) error {
		radius = math.Max(radius, float64(c.Preferences().SnapRadius))
		return nil
	})
	return radius
}

// Pick selects a vertex of an object (zero based) and delivers the pointer
// event to the session. A pick that completes a plane starts a new
// selection.
func (v *Viewport) Pick(object string, index int) {
	err := v.guard.Do(func(c *session.Controller) error {
		if err := v.doc.Select(object, fmt.Sprintf("Vertex%d", index+1)); err != nil {
			return err
		}
		if !c.Active() {
			return c.Activate()
		}
		c.OnPointerDown()
		return nil
	})
	if err != nil {
		v.logger.Warn("pick failed", slog.String("error", err.Error()))
		return
	}

	v.guard.Drain()
	v.guard.Do(func(c *session.Controller) error {
		if !c.Active() {
			v.doc.ClearSelection()
		}
		return nil
	})
	v.Refresh()
}

// Dragged orbits the camera
func (v *Viewport) Dragged(event *fyne.DragEvent) {
	if v.dragStart != nil {
		dx := float64(event.Position.X - v.dragStart.X)
		dy := float64(event.Position.Y - v.dragStart.Y)
		v.guard.Do(func(c *session.Controller) error {
			v.doc.SetCamera(v.doc.Camera().Orbit(-dx*0.01, -dy*0.01))
			return nil
		})
		v.Refresh()
	}
	pos := event.Position
	v.dragStart = &pos
	v.isDragging = true
}

// DragEnd handles the end of a drag event
func (v *Viewport) DragEnd() {
	v.dragStart = nil
	v.isDragging = false
}

// Scrolled zooms the camera
func (v *Viewport) Scrolled(event *fyne.ScrollEvent) {
	delta := -float64(event.Scrolled.DY) * 0.001
	v.guard.Do(func(c *session.Controller) error {
		v.doc.SetCamera(v.doc.Camera().Zoom(delta))
		return nil
	})
	v.Refresh()
}

// Plane returns the plane the grid is drawn on
func (v *Viewport) Plane() workplane.Plane {
	var p workplane.Plane
	v.guard.Do(func(c *session.Controller) error {
		p = v.doc.Grid().Plane
		return nil
	})
	return p
}

type viewportRenderer struct {
	viewport *Viewport
	objects  []fyne.CanvasObject
	size     fyne.Size
}

func (r *viewportRenderer) Layout(size fyne.Size) {
	r.size = size
	r.objects = r.viewport.render(float64(size.Width), float64(size.Height))
}

func (r *viewportRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (r *viewportRenderer) Refresh() {
	size := r.size
	if size.Width == 0 && size.Height == 0 {
		size = r.MinSize()
	}
	r.objects = r.viewport.render(float64(size.Width), float64(size.Height))
	canvas.Refresh(r.viewport)
}

func (r *viewportRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *viewportRenderer) Destroy() {}
