package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/internal/session"
	"github.com/philipparndt/gowp/pkg/analysis"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Display the loaded model and its selectable sub-elements",
	Long: `Show the size of the loaded model and list the faces, edges and vertices
by the names accepted by "solve --select".`,
	Example: `  gowp info -m part.stl`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd.Context(), func(guard *session.Guard, doc *document.Document, logger *slog.Logger) error {
			return printInfo(cmd.OutOrStdout(), doc)
		})
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func printInfo(w io.Writer, doc *document.Document) error {
	obj, ok := firstShape(doc)
	if !ok {
		return errors.New("no model loaded, pass one with --model")
	}
	model, ok := doc.Model(obj.Name)
	if !ok {
		return fmt.Errorf("object %s has no mesh", obj.Name)
	}
	s := analysis.Summarize(model)

	printSection(w, "Model "+obj.Name)
	printLabelValue(w, "Triangles", fmt.Sprintf("%d", s.TriangleCount))
	printLabelValue(w, "Surface area", fmt.Sprintf("%.6f", s.SurfaceArea))
	printLabelValue(w, "Min", formatVector(s.BoundingBox.Min))
	printLabelValue(w, "Max", formatVector(s.BoundingBox.Max))
	printLabelValue(w, "Dimensions", formatVector(s.Dimensions))

	printSection(w, fmt.Sprintf("Faces (%d)", s.FaceCount))
	for i, f := range obj.Faces {
		printLabelValue(w, fmt.Sprintf("Face%d", i+1), "normal "+formatVector(f.Normal))
	}
	printSection(w, fmt.Sprintf("Edges (%d)", s.EdgeCount))
	for i, e := range obj.Edges {
		printLabelValue(w, fmt.Sprintf("Edge%d", i+1), formatVector(e.Start)+" -> "+formatVector(e.End))
	}
	printSection(w, fmt.Sprintf("Vertices (%d)", s.VertexCount))
	for i, v := range obj.Vertices {
		printLabelValue(w, fmt.Sprintf("Vertex%d", i+1), formatVector(v))
	}
	return nil
}
