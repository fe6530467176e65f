package mcpserver_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/internal/mcpserver"
	"github.com/philipparndt/gowp/internal/session"
	"github.com/philipparndt/gowp/pkg/geometry"
)

func createTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

func call(tools *mcpserver.Tools, name string, args map[string]any) *mcp.CallToolResult {
	for _, tool := range tools.List() {
		if tool.Tool.Name != name {
			continue
		}
		req := mcp.CallToolRequest{}
		req.Params.Name = name
		req.Params.Arguments = args
		res, err := tool.Handler(context.Background(), req)
		Expect(err).NotTo(HaveOccurred())
		return res
	}
	Fail("unknown tool " + name)
	return nil
}

func text(res *mcp.CallToolResult) string {
	Expect(res.Content).NotTo(BeEmpty())
	content, ok := res.Content[0].(mcp.TextContent)
	Expect(ok).To(BeTrue())
	return content.Text
}

var _ = Describe("Tools", func() {
	var (
		doc   *document.Document
		guard *session.Guard
		tools *mcpserver.Tools
	)

	plane := func() (p struct{ Origin, Normal geometry.Vector3 }) {
		guard.Do(func(c *session.Controller) error {
			p.Origin = c.Plane().Origin
			p.Normal = c.Plane().Normal
			return nil
		})
		return p
	}

	BeforeEach(func() {
		doc = document.New()
		_, err := doc.Add(document.Object{
			Name:    "Box",
			Visible: true,
			Faces:   []document.Face{{Normal: geometry.UnitX, Point: geometry.NewVector3(2, 0, 0)}},
			Vertices: []geometry.Vector3{
				geometry.NewVector3(0, 0, 0),
				geometry.NewVector3(1, 0, 0),
				geometry.NewVector3(0, 1, 0),
			},
		})
		Expect(err).NotTo(HaveOccurred())

		logger := createTestLogger()
		c := session.New(session.Deps{Selection: doc, Geometry: doc, Viewport: doc, Logger: logger})
		guard = session.NewGuard(c)
		tools = mcpserver.NewTools(guard, doc, logger)
	})

	It("lists every tool", func() {
		var names []string
		for _, tool := range tools.List() {
			names = append(names, tool.Tool.Name)
		}
		Expect(names).To(ConsistOf(
			"wp_canonical", "wp_points", "wp_face", "wp_select",
			"wp_previous", "wp_align_view", "wp_status",
		))
	})

	Describe("wp_canonical", func() {
		It("applies the top plane with an offset", func() {
			res := call(tools, "wp_canonical", map[string]any{"direction": "top", "offset": 5.0})
			Expect(res.IsError).To(BeFalse())
			Expect(text(res)).To(Equal("Current working plane: Top +O Offset: 5.0 Dir: (0.0,0.0,1.0)"))
			Expect(plane().Origin).To(Equal(geometry.NewVector3(0, 0, 5)))
		})

		It("rejects unknown directions", func() {
			res := call(tools, "wp_canonical", map[string]any{"direction": "diagonal"})
			Expect(res.IsError).To(BeTrue())
		})

		It("requires a direction", func() {
			res := call(tools, "wp_canonical", map[string]any{})
			Expect(res.IsError).To(BeTrue())
		})
	})

	Describe("wp_points", func() {
		It("solves three points", func() {
			res := call(tools, "wp_points", map[string]any{"p0": "0,0,0", "p1": "1,0,0", "p2": "0,1,0"})
			Expect(res.IsError).To(BeFalse())
			Expect(text(res)).To(ContainSubstring("(0.0,0.0,1.0)"))
		})

		It("reports collinear points", func() {
			res := call(tools, "wp_points", map[string]any{"p0": "0,0,0", "p1": "1,0,0", "p2": "2,0,0"})
			Expect(res.IsError).To(BeTrue())
			Expect(text(res)).To(ContainSubstring("degenerate"))
		})

		It("reports malformed points", func() {
			res := call(tools, "wp_points", map[string]any{"p0": "0,0", "p1": "1,0,0", "p2": "2,0,0"})
			Expect(res.IsError).To(BeTrue())
		})
	})

	It("solves a face", func() {
		res := call(tools, "wp_face", map[string]any{"normal": "0,-1,0", "point": "(1,0,1)"})
		Expect(res.IsError).To(BeFalse())
		Expect(plane().Normal).To(Equal(geometry.NewVector3(0, -1, 0)))
	})

	Describe("wp_select", func() {
		It("derives a plane from a selected face", func() {
			res := call(tools, "wp_select", map[string]any{"object": "Box", "sub_elements": "Face1"})
			Expect(res.IsError).To(BeFalse())
			Expect(plane().Normal).To(Equal(geometry.UnitX))
		})

		It("waits for more vertices", func() {
			res := call(tools, "wp_select", map[string]any{"object": "Box", "sub_elements": "Vertex1, Vertex2"})
			Expect(res.IsError).To(BeFalse())
			Expect(text(res)).To(ContainSubstring("waiting"))

			res = call(tools, "wp_select", map[string]any{"object": "Box", "sub_elements": "Vertex3"})
			Expect(res.IsError).To(BeFalse())
			Expect(plane().Normal).To(Equal(geometry.UnitZ))
		})

		It("rejects unknown geometry", func() {
			res := call(tools, "wp_select", map[string]any{"object": "Box", "sub_elements": "Face9"})
			Expect(res.IsError).To(BeTrue())
		})
	})

	It("goes back to the previous plane", func() {
		call(tools, "wp_canonical", map[string]any{"direction": "front"})
		Expect(plane().Normal).To(Equal(geometry.NewVector3(0, -1, 0)))

		res := call(tools, "wp_previous", nil)
		Expect(res.IsError).To(BeFalse())
		Expect(plane().Normal).To(Equal(geometry.UnitZ))
	})

	It("aligns the plane to the view", func() {
		res := call(tools, "wp_align_view", nil)
		Expect(res.IsError).To(BeFalse())
		Expect(plane().Normal.ApproxEqual(geometry.UnitZ, 1e-9)).To(BeTrue())
	})

	It("reports the status as JSON", func() {
		call(tools, "wp_canonical", map[string]any{"direction": "side", "offset": 2.0})

		var data mcpserver.StatusData
		Expect(json.Unmarshal([]byte(text(call(tools, "wp_status", nil))), &data)).To(Succeed())
		Expect(data.State).To(Equal("idle"))
		Expect(data.Label).To(Equal("Side +O"))
		Expect(data.Offset).To(Equal(2.0))
		Expect(data.History).To(Equal(2))
		Expect(data.Plane.Origin).To(Equal(geometry.NewVector3(2, 0, 0)))
	})
})
