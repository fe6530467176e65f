package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/internal/session"
	"github.com/philipparndt/gowp/pkg/geometry"
	"github.com/philipparndt/gowp/pkg/workplane"
	"github.com/spf13/cobra"
)

type solveOptions struct {
	direction string
	offset    string
	points    string
	selection string
	jsonOut   bool
}

var solveOpts solveOptions

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Derive a working plane and print it",
	Long: `Derive a working plane from a canonical direction, three points or a
selection on the loaded model, and print its origin and axes.`,
	Example: `  gowp solve --direction front --offset "2 cm"
  gowp solve --points "0,0,0;1,0,0;0,1,1"
  gowp solve -m part.stl --select Face3
  gowp solve -m part.stl --select Vertex1,Vertex4,Vertex7`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(guard *session.Guard, doc *document.Document, logger *slog.Logger) error {
			var result solveResult
			err := guard.Do(func(c *session.Controller) error {
				var err error
				result, err = solve(c, doc, solveOpts)
				return err
			})
			if err != nil {
				return err
			}
			return result.print(cmd.OutOrStdout(), solveOpts.jsonOut)
		})
	},
}

func init() {
	f := solveCmd.Flags()
	f.StringVarP(&solveOpts.direction, "direction", "d", "", "canonical direction (top, front, side, bottom, rear, left)")
	f.StringVarP(&solveOpts.offset, "offset", "o", "", `offset along the normal, e.g. "5" or "2 cm"`)
	f.StringVarP(&solveOpts.points, "points", "p", "", `three points "x,y,z;x,y,z;x,y,z"`)
	f.StringVarP(&solveOpts.selection, "select", "s", "", "comma separated sub-elements of the loaded model")
	f.BoolVar(&solveOpts.jsonOut, "json", false, "print the result as JSON")
	solveCmd.MarkFlagsMutuallyExclusive("direction", "points", "select")
	rootCmd.AddCommand(solveCmd)
}

type solveResult struct {
	Status session.Status  `json:"status"`
	Plane  workplane.Plane `json:"plane"`
}

func solve(c *session.Controller, doc *document.Document, opts solveOptions) (solveResult, error) {
	if opts.offset != "" {
		if err := c.SetOffsetText(opts.offset); err != nil {
			return solveResult{}, err
		}
	}

	if opts.selection != "" {
		shape, ok := firstShape(doc)
		if !ok {
			return solveResult{}, errors.New("--select needs a model, pass one with --model")
		}
		if err := doc.Select(shape.Name, splitList(opts.selection)...); err != nil {
			return solveResult{}, err
		}
	}

	if err := c.Activate(); err != nil {
		return solveResult{}, err
	}

	var err error
	switch {
	case opts.direction != "":
		var d workplane.Direction
		if d, err = workplane.ParseDirection(opts.direction); err == nil {
			err = c.OnCanonicalButton(d, c.Offset())
		}
	case opts.points != "":
		var pts []geometry.Vector3
		if pts, err = parsePoints(opts.points); err == nil {
			err = c.OnSelectionMade(workplane.ThreePoints{P0: pts[0], P1: pts[1], P2: pts[2]})
		}
	case opts.selection != "":
		if err = c.CheckSelection(); errors.Is(err, workplane.ErrNoSelection) {
			err = fmt.Errorf("the selection does not define a working plane: %w", err)
		}
	default:
		err = errors.New("nothing to solve, pass --direction, --points or --select")
	}
	if err != nil {
		_ = c.Cancel()
		return solveResult{}, err
	}
	if c.Active() {
		_ = c.Cancel()
		return solveResult{}, errors.New("the selection does not define a working plane")
	}
	return solveResult{Status: c.Status(), Plane: c.Plane()}, nil
}

func (r solveResult) print(w io.Writer, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	printSuccess(w, r.Status.Text)
	printSection(w, "Working plane")
	printLabelValue(w, "Origin", formatVector(r.Plane.Origin))
	printLabelValue(w, "Normal", formatVector(r.Plane.Normal))
	printLabelValue(w, "U", formatVector(r.Plane.U))
	printLabelValue(w, "V", formatVector(r.Plane.V))
	printLabelValue(w, "Offset", fmt.Sprintf("%g", r.Plane.Offset))
	return nil
}

func firstShape(doc *document.Document) (document.Object, bool) {
	for _, obj := range doc.Objects() {
		if obj.Kind == document.KindShape {
			return obj, true
		}
	}
	return document.Object{}, false
}

// parsePoints reads three points separated by semicolons
func parsePoints(s string) ([]geometry.Vector3, error) {
	parts := strings.Split(s, ";")
	if len(parts) != 3 {
		return nil, fmt.Errorf("expected three points, got %d", len(parts))
	}
	pts := make([]geometry.Vector3, 0, 3)
	for _, part := range parts {
		p, err := geometry.ParseVector3(part)
		if err != nil {
			return nil, err
		}
		pts = append(pts, p)
	}
	return pts, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
