package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/pkg/openscad"
)

// LoadModel imports an STL or OpenSCAD file into doc. OpenSCAD sources are
// rendered to a temporary STL first.
func LoadModel(ctx context.Context, doc *document.Document, path string, logger *slog.Logger) (document.Object, error) {
	ext := strings.ToLower(filepath.Ext(path))
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	switch ext {
	case ".stl":
		obj, err := doc.ImportSTLFile(path)
		if err != nil {
			return document.Object{}, fmt.Errorf("failed to load STL file: %w", err)
		}
		logger.Info("model loaded", slog.String("file", path), slog.String("object", obj.Name))
		return obj, nil

	case ".scad":
		logger.Info("rendering OpenSCAD file", slog.String("file", path))
		renderer := openscad.NewRenderer(filepath.Dir(path))
		tmp, err := renderer.RenderTemp(ctx, path)
		if err != nil {
			return document.Object{}, fmt.Errorf("failed to render OpenSCAD file: %w", err)
		}
		defer os.Remove(tmp)

		f, err := os.Open(tmp)
		if err != nil {
			return document.Object{}, fmt.Errorf("failed to open rendered STL: %w", err)
		}
		defer f.Close()

		obj, err := doc.ImportSTL(name, f)
		if err != nil {
			return document.Object{}, fmt.Errorf("failed to parse rendered STL: %w", err)
		}
		logger.Info("model loaded", slog.String("file", path), slog.String("object", obj.Name))
		return obj, nil

	default:
		return document.Object{}, fmt.Errorf("unsupported file type: %q (expected .stl or .scad)", ext)
	}
}
