package script

import (
	"bytes"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/internal/session"
	"github.com/philipparndt/gowp/pkg/geometry"
	"github.com/philipparndt/gowp/pkg/workplane"
)

type harness struct {
	doc    *document.Document
	guard  *session.Guard
	engine *Engine
	out    *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	doc := document.New()
	_, err := doc.Add(document.Object{
		Name:    "Box",
		Visible: true,
		Vertices: []geometry.Vector3{
			geometry.NewVector3(0, 0, 0),
			geometry.NewVector3(1, 0, 0),
			geometry.NewVector3(0, 1, 0),
		},
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := session.New(session.Deps{Selection: doc, Geometry: doc, Viewport: doc, Logger: logger})
	guard := session.NewGuard(c)
	out := &bytes.Buffer{}
	return &harness{doc: doc, guard: guard, engine: NewEngine(guard, doc, out, logger), out: out}
}

func (h *harness) run(t *testing.T, source string) {
	t.Helper()
	evalErrs, err := h.engine.Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
}

func (h *harness) plane() workplane.Plane {
	var p workplane.Plane
	h.guard.Do(func(c *session.Controller) error {
		p = c.Plane()
		return nil
	})
	return p
}

func (h *harness) controller(fn func(c *session.Controller)) {
	h.guard.Do(func(c *session.Controller) error {
		fn(c)
		return nil
	})
}

func TestEvaluateEmptyString(t *testing.T) {
	h := newHarness(t)
	h.run(t, "  \n\t ")
	if h.out.Len() != 0 {
		t.Errorf("expected no output, got %q", h.out.String())
	}
}

func TestCanonicalWithOffset(t *testing.T) {
	h := newHarness(t)
	h.run(t, `
; top plane five units up
(activate)
(top :offset 5)
(status)
`)
	p := h.plane()
	if !p.Origin.ApproxEqual(geometry.NewVector3(0, 0, 5), 1e-12) {
		t.Errorf("Origin failed: expected (0,0,5), got %v", p.Origin)
	}
	expected := "Current working plane: Top +O Offset: 5.0 Dir: (0.0,0.0,1.0)"
	if strings.TrimSpace(h.out.String()) != expected {
		t.Errorf("status failed: expected %q, got %q", expected, h.out.String())
	}
}

func TestPositionalOffsetAndDirections(t *testing.T) {
	tests := []struct {
		source string
		normal geometry.Vector3
	}{
		{"(front)", geometry.NewVector3(0, -1, 0)},
		{"(side)", geometry.UnitX},
		{"(bottom)", geometry.NewVector3(0, 0, -1)},
		{"(rear)", geometry.UnitY},
		{"(left -2)", geometry.NewVector3(-1, 0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			h := newHarness(t)
			h.run(t, "(activate) "+tt.source)
			if got := h.plane().Normal; !got.ApproxEqual(tt.normal, 1e-12) {
				t.Errorf("Normal failed: expected %v, got %v", tt.normal, got)
			}
		})
	}

	h := newHarness(t)
	h.run(t, "(activate) (left -2)")
	if got := h.plane().Origin; !got.ApproxEqual(geometry.NewVector3(2, 0, 0), 1e-12) {
		t.Errorf("negative offset failed: expected (2,0,0), got %v", got)
	}
}

func TestThreePoints(t *testing.T) {
	h := newHarness(t)
	h.run(t, `(activate) (points (vec3 0 0 0) (vec3 1 0 0) (vec3 0 1 0))`)
	p := h.plane()
	if !p.Normal.ApproxEqual(geometry.UnitZ, 1e-12) || !p.Origin.ApproxEqual(geometry.Vector3{}, 1e-12) {
		t.Errorf("points failed: got origin %v normal %v", p.Origin, p.Normal)
	}
}

func TestSelectAndClick(t *testing.T) {
	h := newHarness(t)
	h.run(t, `
(activate)
(select "Box" "Vertex1" "Vertex2" "Vertex3")
(click)
(status)
`)
	if got := h.plane().Normal; !got.ApproxEqual(geometry.UnitZ, 1e-12) {
		t.Errorf("Normal failed: expected %v, got %v", geometry.UnitZ, got)
	}
	if !strings.Contains(h.out.String(), "(0.0,0.0,1.0)") {
		t.Errorf("status failed: got %q", h.out.String())
	}
	h.controller(func(c *session.Controller) {
		if c.Active() {
			t.Errorf("session should have finished")
		}
	})
}

func TestCollinearPointsIsEvalError(t *testing.T) {
	h := newHarness(t)
	evalErrs, err := h.engine.Evaluate(`(activate)
(points (vec3 0 0 0) (vec3 1 0 0) (vec3 2 0 0))`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected an eval error for collinear points")
	}
	if !strings.Contains(evalErrs[0].Message, "points") {
		t.Errorf("error should name the command, got %q", evalErrs[0].Message)
	}
	h.controller(func(c *session.Controller) {
		if !c.Active() {
			t.Errorf("session should keep waiting after a failed pick")
		}
	})
}

func TestParseError(t *testing.T) {
	h := newHarness(t)
	evalErrs, err := h.engine.Evaluate("(activate")
	if err != nil {
		t.Fatalf("unexpected fatal error: %v", err)
	}
	if len(evalErrs) == 0 || evalErrs[0].Message == "" {
		t.Errorf("expected a parse error, got %v", evalErrs)
	}
}

func TestPreviousRestoresPlane(t *testing.T) {
	h := newHarness(t)
	h.run(t, `(activate) (front) (activate) (previous)`)
	if got := h.plane().Normal; !got.ApproxEqual(geometry.UnitZ, 1e-12) {
		t.Errorf("previous failed: expected %v, got %v", geometry.UnitZ, got)
	}
}

func TestOffsetText(t *testing.T) {
	h := newHarness(t)
	h.run(t, `(offset "2 cm") (activate) (top)`)
	if got := h.plane().Origin; !got.ApproxEqual(geometry.NewVector3(0, 0, 20), 1e-12) {
		t.Errorf("offset failed: expected (0,0,20), got %v", got)
	}
}

func TestCameraAndAlignView(t *testing.T) {
	h := newHarness(t)
	h.run(t, `(camera (vec3 0 -10 0) (vec3 0 1 0)) (activate) (align-view)`)
	if got := h.plane().Normal; !got.ApproxEqual(geometry.NewVector3(0, -1, 0), 1e-9) {
		t.Errorf("align-view failed: expected (0,-1,0), got %v", got)
	}
}

func TestSettings(t *testing.T) {
	h := newHarness(t)
	h.run(t, `(center-on-view true) (grid :spacing "5 mm" :main-line 4 :snap 3)`)
	h.controller(func(c *session.Controller) {
		p := c.Preferences()
		if !p.CenterPlaneOnView || p.GridSpacing != 5 || p.GridMainLine != 4 || p.SnapRadius != 3 {
			t.Errorf("settings failed: got %+v", p)
		}
	})
	if g := h.doc.Grid(); g.Spacing != 5 {
		t.Errorf("grid not updated: got %+v", g)
	}
}

func TestSaveProxy(t *testing.T) {
	h := newHarness(t)
	h.run(t, `(activate) (side 1) (save-proxy "Level 1")`)
	obj, ok := h.doc.Object("Level_1")
	if !ok {
		t.Fatal("expected a proxy named Level_1")
	}
	if obj.Kind != document.KindProxy {
		t.Errorf("Kind failed: expected %v, got %v", document.KindProxy, obj.Kind)
	}
	if !obj.Placement.Base.ApproxEqual(geometry.NewVector3(1, 0, 0), 1e-12) {
		t.Errorf("Placement failed: got %v", obj.Placement.Base)
	}
}

func TestPreprocess(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"keyword", `(top :offset 5)`, `(top "__kw_offset" 5)`},
		{"kebab-case", `(align-view)`, `(align_view)`},
		{"hyphenated keyword", `(grid :main-line 4)`, `(grid "__kw_main-line" 4)`},
		{"minus preserved", `(top -5)`, `(top -5)`},
		{"string preserved", `(select "my-box" "Face1")`, `(select "my-box" "Face1")`},
		{"comment", `;; note: keep`, `// note: keep`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preprocessSource(tt.input); got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}
