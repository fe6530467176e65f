package session

import (
	"fmt"
	"log/slog"

	"github.com/philipparndt/gowp/internal/prefs"
)

// SetOffset sets the offset applied to the next solved plane
func (c *Controller) SetOffset(offset float64) {
	c.offset = offset
	c.notify()
}

// SetOffsetText parses a length such as "5", "2 cm" or "-1 in" as the
// offset. Invalid text leaves the offset unchanged.
func (c *Controller) SetOffsetText(text string) error {
	v, err := prefs.ParseLength(text)
	if err != nil {
		return fmt.Errorf("offset: %w", err)
	}
	c.SetOffset(v)
	return nil
}

// SetCenterPlaneOnView toggles centering canonical planes under the camera
func (c *Controller) SetCenterPlaneOnView(center bool) {
	if c.prefs.CenterPlaneOnView == center {
		return
	}
	c.prefs.CenterPlaneOnView = center
	c.persist()
	c.notify()
}

// SetGridSpacingText parses and stores the grid spacing
func (c *Controller) SetGridSpacingText(text string) error {
	v, err := prefs.ParseLength(text)
	if err != nil {
		return fmt.Errorf("grid spacing: %w", err)
	}
	if v <= 0 {
		return fmt.Errorf("grid spacing must be positive, got %v", v)
	}
	c.prefs.GridSpacing = v
	c.persist()
	c.updateGrid()
	c.notify()
	return nil
}

// SetGridMainLine stores the main line interval. Values of one or less
// are ignored.
func (c *Controller) SetGridMainLine(every int) {
	if every <= 1 {
		return
	}
	c.prefs.GridMainLine = every
	c.persist()
	c.updateGrid()
	c.notify()
}

// SetSnapRadius stores the snap radius in pixels
func (c *Controller) SetSnapRadius(radius int) {
	if radius < 0 {
		return
	}
	c.prefs.SnapRadius = radius
	c.persist()
	c.updateGrid()
	c.notify()
}

// ApplyPreferences takes over preferences changed outside the session,
// such as edits of the preferences file
func (c *Controller) ApplyPreferences(p prefs.Preferences) {
	if err := p.Validate(); err != nil {
		c.logger.Warn("ignoring invalid preferences", slog.String("error", err.Error()))
		return
	}
	if p == c.prefs {
		return
	}
	c.prefs = p
	c.updateGrid()
	c.notify()
}
