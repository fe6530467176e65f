// Package app wires the document, the preferences and the working plane
// session into an fx application shared by the command line tools.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/philipparndt/gowp/internal/config"
	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/internal/prefs"
	"github.com/philipparndt/gowp/internal/session"
	"go.uber.org/fx"
)

// Module provides the document, the preferences store, the controller and
// its guard. The configuration and logger come from config.Module.
var Module = fx.Module("app",
	fx.Provide(
		NewStore,
		NewDocument,
		NewController,
		session.NewGuard,
	),
	fx.Invoke(registerWatcherHooks),
)

// NewStore opens the preferences file named by the configuration
func NewStore(cfg *config.Config) *prefs.Store {
	return prefs.NewStore(cfg.PrefsPath)
}

// NewDocument creates the document and loads the configured model
func NewDocument(cfg *config.Config, logger *slog.Logger) (*document.Document, error) {
	doc := document.New()
	if cfg.Model == "" {
		return doc, nil
	}
	if _, err := LoadModel(context.Background(), doc, cfg.Model, logger); err != nil {
		return nil, err
	}
	return doc, nil
}

// NewController creates a session working on doc
func NewController(doc *document.Document, store *prefs.Store, logger *slog.Logger) *session.Controller {
	return session.New(session.Deps{
		Selection: doc,
		Geometry:  doc,
		Viewport:  doc,
		Store:     store,
		Logger:    logger,
	})
}

// registerWatcherHooks reloads the preferences into the session whenever
// the file changes on disk.
func registerWatcherHooks(lc fx.Lifecycle, cfg *config.Config, store *prefs.Store, guard *session.Guard, logger *slog.Logger) error {
	if !cfg.WatchPrefs {
		return nil
	}

	w, err := prefs.NewWatcher(store, cfg.WatchDebounce, logger, func(p prefs.Preferences) {
		_ = guard.Do(func(c *session.Controller) error {
			c.ApplyPreferences(p)
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("failed to create preferences watcher: %w", err)
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := w.Start(); err != nil {
				// the preferences directory may not exist until the first save
				logger.Warn("preferences are not watched", slog.String("error", err.Error()))
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return w.Close()
		},
	})
	return nil
}
