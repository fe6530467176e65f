package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/philipparndt/gowp/internal/app"
	"github.com/philipparndt/gowp/internal/config"
	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/internal/panel"
	"github.com/philipparndt/gowp/internal/session"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

type gui struct {
	window fyne.Window
	guard  *session.Guard
	doc    *document.Document
	logger *slog.Logger
}

func main() {
	if len(os.Args) > 1 {
		viper.Set("model", os.Args[1])
	}

	g := &gui{}
	application := fx.New(
		config.Module,
		app.Module,
		fx.Populate(&g.guard, &g.doc, &g.logger),
		fx.NopLogger,
	)
	if err := application.Start(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer application.Stop(context.Background())

	a := fyneapp.New()
	g.window = a.NewWindow("gowp - Working Plane")
	g.setupMainUI()

	// the command starts active so picks in the viewport define the plane
	_ = g.guard.Do(func(c *session.Controller) error {
		return c.Activate()
	})

	g.window.Resize(fyne.NewSize(1200, 800))
	g.window.ShowAndRun()
}

func (g *gui) setupMainUI() {
	p := panel.New(g.guard, g.doc, g.logger)
	viewport := panel.NewViewport(g.guard, g.doc, g.logger)

	openButton := widget.NewButton("Open model", g.showFileDialog)
	side := container.NewBorder(openButton, nil, nil, nil, container.NewVScroll(p.Content()))

	split := container.NewHSplit(viewport, side)
	split.Offset = 0.7
	g.window.SetContent(split)

	g.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name != fyne.KeyEscape {
			return
		}
		if err := g.guard.Do(func(c *session.Controller) error { return c.OnEscape() }); err != nil {
			g.logger.Debug("escape ignored", slog.String("error", err.Error()))
		}
	})
}

func (g *gui) showFileDialog() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, g.window)
			return
		}
		if reader == nil {
			return
		}
		defer reader.Close()

		path := reader.URI().Path()
		err = g.guard.Do(func(c *session.Controller) error {
			_, err := app.LoadModel(context.Background(), g.doc, path, g.logger)
			return err
		})
		if err != nil {
			dialog.ShowError(err, g.window)
		}
	}, g.window)
}
