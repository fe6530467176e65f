// Package mcpserver exposes a working plane session as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/internal/session"
	"github.com/philipparndt/gowp/pkg/geometry"
	"github.com/philipparndt/gowp/pkg/workplane"
)

// Tool is an MCP tool definition with its handler
type Tool struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// Tools drives a session on behalf of MCP clients
type Tools struct {
	guard  *session.Guard
	doc    *document.Document
	logger *slog.Logger
}

// NewTools creates the tool set for a guarded session
func NewTools(guard *session.Guard, doc *document.Document, logger *slog.Logger) *Tools {
	return &Tools{
		guard:  guard,
		doc:    doc,
		logger: logger.With(slog.String("component", "mcp")),
	}
}

// StatusData is the JSON payload of wp_status
type StatusData struct {
	State   string          `json:"state"`
	Label   string          `json:"label"`
	Text    string          `json:"text"`
	Offset  float64         `json:"offset"`
	History int             `json:"history"`
	Plane   workplane.Plane `json:"plane"`
}

// List returns all tools
func (t *Tools) List() []Tool {
	directions := make([]string, 0, 6)
	for _, d := range workplane.Directions() {
		directions = append(directions, strings.ToLower(d.String()))
	}

	return []Tool{
		{
			Tool: mcp.NewTool("wp_canonical",
				mcp.WithDescription("Set the working plane to one of the six axis-aligned planes"),
				mcp.WithString("direction",
					mcp.Required(),
					mcp.Description("Plane orientation"),
					mcp.Enum(directions...),
				),
				mcp.WithNumber("offset",
					mcp.Description("Distance along the plane normal, in mm"),
				),
			),
			Handler: t.handleCanonical,
		},
		{
			Tool: mcp.NewTool("wp_points",
				mcp.WithDescription("Set the working plane through three points"),
				mcp.WithString("p0", mcp.Required(), mcp.Description("First point as x,y,z")),
				mcp.WithString("p1", mcp.Required(), mcp.Description("Second point as x,y,z")),
				mcp.WithString("p2", mcp.Required(), mcp.Description("Third point as x,y,z")),
			),
			Handler: t.handlePoints,
		},
		{
			Tool: mcp.NewTool("wp_face",
				mcp.WithDescription("Set the working plane on a planar face"),
				mcp.WithString("normal", mcp.Required(), mcp.Description("Face normal as x,y,z")),
				mcp.WithString("point", mcp.Required(), mcp.Description("Point on the face as x,y,z")),
			),
			Handler: t.handleFace,
		},
		{
			Tool: mcp.NewTool("wp_select",
				mcp.WithDescription("Select document geometry and derive the working plane from the selection"),
				mcp.WithString("object", mcp.Required(), mcp.Description("Object name")),
				mcp.WithString("sub_elements",
					mcp.Description("Comma separated sub-elements such as Face1 or Vertex1,Vertex2,Vertex3"),
				),
			),
			Handler: t.handleSelect,
		},
		{
			Tool:    mcp.NewTool("wp_previous", mcp.WithDescription("Restore the previous working plane")),
			Handler: t.handlePrevious,
		},
		{
			Tool:    mcp.NewTool("wp_align_view", mcp.WithDescription("Align the working plane to the current view")),
			Handler: t.handleAlignView,
		},
		{
			Tool:    mcp.NewTool("wp_status", mcp.WithDescription("Get the working plane and session state")),
			Handler: t.handleStatus,
		},
	}
}

// Register adds all tools to an MCP server
func (t *Tools) Register(s *server.MCPServer) {
	for _, tool := range t.List() {
		s.AddTool(tool.Tool, tool.Handler)
	}
}

// run activates the session when needed and runs fn. When the current
// selection already completes the command on activation, fn is skipped.
func (t *Tools) run(fn func(c *session.Controller) error) (string, error) {
	var text string
	err := t.guard.Do(func(c *session.Controller) error {
		if !c.Active() {
			if err := c.Activate(); err != nil {
				return err
			}
		}
		if c.Active() {
			if err := fn(c); err != nil {
				return err
			}
		}
		text = c.Status().Text
		return nil
	})
	return text, err
}

func (t *Tools) result(action string, text string, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		t.logger.Info("tool failed", slog.String("tool", action), slog.String("error", err.Error()))
		return mcp.NewToolResultError(fmt.Sprintf("%s failed: %v", action, err)), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (t *Tools) handleCanonical(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("direction")
	if err != nil {
		return mcp.NewToolResultError("The 'direction' parameter is required"), nil
	}
	direction, err := workplane.ParseDirection(name)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Unknown direction: %v", err)), nil
	}
	offset := req.GetFloat("offset", 0)

	text, err := t.run(func(c *session.Controller) error {
		return c.OnCanonicalButton(direction, offset)
	})
	return t.result("wp_canonical", text, err)
}

func requireVectors(req mcp.CallToolRequest, names ...string) ([]geometry.Vector3, error) {
	out := make([]geometry.Vector3, len(names))
	for i, name := range names {
		s, err := req.RequireString(name)
		if err != nil {
			return nil, fmt.Errorf("the '%s' parameter is required", name)
		}
		v, err := geometry.ParseVector3(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[i] = v
	}
	return out, nil
}

func (t *Tools) handlePoints(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := requireVectors(req, "p0", "p1", "p2")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := t.run(func(c *session.Controller) error {
		return c.OnSelectionMade(workplane.ThreePoints{P0: p[0], P1: p[1], P2: p[2]})
	})
	return t.result("wp_points", text, err)
}

func (t *Tools) handleFace(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	v, err := requireVectors(req, "normal", "point")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := t.run(func(c *session.Controller) error {
		return c.OnSelectionMade(workplane.Face{Normal: v[0], Point: v[1]})
	})
	return t.result("wp_face", text, err)
}

func (t *Tools) handleSelect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	object, err := req.RequireString("object")
	if err != nil {
		return mcp.NewToolResultError("The 'object' parameter is required"), nil
	}
	var subs []string
	for _, s := range strings.Split(req.GetString("sub_elements", ""), ",") {
		if s = strings.TrimSpace(s); s != "" {
			subs = append(subs, s)
		}
	}

	pending := false
	text, err := t.run(func(c *session.Controller) error {
		if err := t.doc.Select(object, subs...); err != nil {
			return err
		}
		err := c.CheckSelection()
		if errors.Is(err, workplane.ErrNoSelection) {
			pending = true
			return nil
		}
		return err
	})
	if err == nil && pending {
		return mcp.NewToolResultText("Selection recorded, waiting for more geometry"), nil
	}
	return t.result("wp_select", text, err)
}

func (t *Tools) handlePrevious(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var text string
	err := t.guard.Do(func(c *session.Controller) error {
		if err := c.OnPrevious(); err != nil {
			return err
		}
		text = c.Status().Text
		return nil
	})
	return t.result("wp_previous", text, err)
}

func (t *Tools) handleAlignView(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := t.run((*session.Controller).OnAlignToView)
	return t.result("wp_align_view", text, err)
}

func (t *Tools) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var data StatusData
	t.guard.Do(func(c *session.Controller) error {
		data = StatusData{
			State:   c.State().String(),
			Label:   c.Status().Label,
			Text:    c.Status().Text,
			Offset:  c.Offset(),
			History: c.HistoryLen(),
			Plane:   c.Plane(),
		}
		return nil
	})

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to serialize status: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
