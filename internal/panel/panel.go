// Package panel is the fyne task panel of the working plane command: the
// canonical plane buttons, offset and grid settings, the status line and a
// viewport to pick geometry in.
package panel

import (
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/internal/prefs"
	"github.com/philipparndt/gowp/internal/session"
	"github.com/philipparndt/gowp/pkg/workplane"
)

// snapshot is the session state mirrored into the widgets
type snapshot struct {
	state  session.State
	status session.Status
	offset float64
	prefs  prefs.Preferences
}

// Panel mirrors a session into widgets and turns widget events into
// session calls
type Panel struct {
	guard  *session.Guard
	doc    *document.Document
	logger *slog.Logger

	mu       sync.Mutex
	snap     snapshot
	updating bool

	buttons  map[string]*widget.Button
	offset   *widget.Entry
	center   *widget.Check
	spacing  *widget.Entry
	mainLine *widget.Entry
	snapRad  *widget.Entry
	label    *widget.Label
	status   *widget.Label
	message  *widget.Label
	content  fyne.CanvasObject
}

// New builds the panel for a guarded session and its document
func New(guard *session.Guard, doc *document.Document, logger *slog.Logger) *Panel {
	p := &Panel{
		guard:   guard,
		doc:     doc,
		logger:  logger.With(slog.String("component", "panel")),
		buttons: make(map[string]*widget.Button),
	}
	p.build()

	guard.Do(func(c *session.Controller) error {
		c.OnChange(func() {
			p.capture(c)
			fyne.Do(p.sync)
		})
		p.capture(c)
		return nil
	})
	p.sync()
	return p
}

// Content returns the panel's root object
func (p *Panel) Content() fyne.CanvasObject {
	return p.content
}

func (p *Panel) build() {
	p.label = widget.NewLabel("")
	p.label.TextStyle = fyne.TextStyle{Bold: true}
	p.status = widget.NewLabel("")
	p.status.Wrapping = fyne.TextWrapWord
	p.message = widget.NewLabel("")
	p.message.Wrapping = fyne.TextWrapWord

	var canonical []fyne.CanvasObject
	for _, d := range workplane.Directions() {
		direction := d
		btn := widget.NewButton(direction.String(), func() {
			p.run(direction.String(), func(c *session.Controller) error {
				return c.OnCanonicalButton(direction, c.Offset())
			})
		})
		p.buttons[direction.String()] = btn
		canonical = append(canonical, btn)
	}

	actions := []struct {
		name string
		fn   func(c *session.Controller) error
	}{
		{"Align to view", (*session.Controller).OnAlignToView},
		{"Auto", (*session.Controller).OnAuto},
		{"Move working plane", (*session.Controller).OnMove},
		{"Center view", (*session.Controller).OnCenter},
	}
	var tools []fyne.CanvasObject
	for _, a := range actions {
		action := a
		btn := widget.NewButton(action.name, func() { p.run(action.name, action.fn) })
		p.buttons[action.name] = btn
		tools = append(tools, btn)
	}

	p.buttons["Previous"] = widget.NewButton("Previous", func() {
		p.call("Previous", (*session.Controller).OnPrevious)
	})
	p.buttons["Cancel"] = widget.NewButton("Cancel", func() {
		p.call("Cancel", (*session.Controller).Cancel)
	})
	p.buttons["Clear selection"] = widget.NewButton("Clear selection", func() {
		p.call("Clear selection", func(c *session.Controller) error {
			p.doc.ClearSelection()
			return nil
		})
	})
	p.buttons["Save proxy"] = widget.NewButton("Save proxy", func() {
		p.call("Save proxy", func(c *session.Controller) error {
			_, err := p.doc.AddProxy("", c.Plane())
			return err
		})
	})

	p.offset = widget.NewEntry()
	p.offset.SetPlaceHolder("0 mm")
	p.offset.OnSubmitted = func(text string) {
		p.call("Offset", func(c *session.Controller) error { return c.SetOffsetText(text) })
	}

	p.center = widget.NewCheck("Center plane on view", func(checked bool) {
		if p.isUpdating() {
			return
		}
		p.call("Center plane on view", func(c *session.Controller) error {
			c.SetCenterPlaneOnView(checked)
			return nil
		})
	})

	p.spacing = widget.NewEntry()
	p.spacing.OnSubmitted = func(text string) {
		p.call("Grid spacing", func(c *session.Controller) error { return c.SetGridSpacingText(text) })
	}
	p.mainLine = widget.NewEntry()
	p.mainLine.OnSubmitted = func(text string) {
		p.call("Main line every", func(c *session.Controller) error {
			n, err := strconv.Atoi(text)
			if err != nil {
				return fmt.Errorf("main line: %w", err)
			}
			c.SetGridMainLine(n)
			return nil
		})
	}
	p.snapRad = widget.NewEntry()
	p.snapRad.OnSubmitted = func(text string) {
		p.call("Snapping radius", func(c *session.Controller) error {
			n, err := strconv.Atoi(text)
			if err != nil {
				return fmt.Errorf("snap radius: %w", err)
			}
			c.SetSnapRadius(n)
			return nil
		})
	}

	settings := widget.NewForm(
		widget.NewFormItem("Offset", p.offset),
		widget.NewFormItem("Grid spacing", p.spacing),
		widget.NewFormItem("Main line every", p.mainLine),
		widget.NewFormItem("Snapping radius", p.snapRad),
	)

	p.content = container.NewVBox(
		widget.NewLabel("Select a face, three vertices, a working plane proxy or one of the planes below:"),
		container.NewGridWithColumns(3, canonical...),
		widget.NewSeparator(),
		container.NewGridWithColumns(2, tools...),
		container.NewGridWithColumns(2, p.buttons["Previous"], p.buttons["Cancel"]),
		container.NewGridWithColumns(2, p.buttons["Clear selection"], p.buttons["Save proxy"]),
		widget.NewSeparator(),
		settings,
		p.center,
		widget.NewSeparator(),
		p.label,
		p.status,
		p.message,
	)
}

// run applies the offset field, activates the session when needed and
// runs a plane action
func (p *Panel) run(name string, fn func(c *session.Controller) error) {
	offset := p.offset.Text
	p.call(name, func(c *session.Controller) error {
		// the typed offset counts even when it was not submitted
		if offset != "" {
			if err := c.SetOffsetText(offset); err != nil {
				return err
			}
		}
		if !c.Active() {
			if err := c.Activate(); err != nil {
				return err
			}
		}
		if !c.Active() {
			return nil
		}
		return fn(c)
	})
}

// call runs fn under the guard and reports failures in the message line
func (p *Panel) call(name string, fn func(c *session.Controller) error) {
	err := p.guard.Do(fn)
	p.sync()
	if err != nil {
		p.logger.Info("action failed", slog.String("action", name), slog.String("error", err.Error()))
		p.message.SetText(fmt.Sprintf("%s: %v", name, err))
		return
	}
	p.message.SetText("")
}

// capture copies the session state. It runs with the guard held.
func (p *Panel) capture(c *session.Controller) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snap = snapshot{
		state:  c.State(),
		status: c.Status(),
		offset: c.Offset(),
		prefs:  c.Preferences(),
	}
}

func (p *Panel) isUpdating() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.updating
}

// sync writes the last captured state into the widgets
func (p *Panel) sync() {
	p.mu.Lock()
	s := p.snap
	p.updating = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.updating = false
		p.mu.Unlock()
	}()

	p.label.SetText(s.status.Label)
	p.status.SetText(s.status.Text)
	p.center.SetChecked(s.prefs.CenterPlaneOnView)
	p.offset.SetText(prefs.FormatLength(s.offset))
	p.spacing.SetText(prefs.FormatLength(s.prefs.GridSpacing))
	p.mainLine.SetText(strconv.Itoa(s.prefs.GridMainLine))
	p.snapRad.SetText(strconv.Itoa(s.prefs.SnapRadius))
}
