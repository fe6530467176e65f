package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/philipparndt/gowp/internal/app"
	"github.com/philipparndt/gowp/internal/config"
	"github.com/philipparndt/gowp/internal/document"
	"github.com/philipparndt/gowp/internal/session"
	"github.com/philipparndt/gowp/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var rootCmd = &cobra.Command{
	Use:   "gowp",
	Short: "Working plane tool for STL models",
	Long: `gowp derives working planes from faces, edges and points of STL models,
from canonical directions or from the current view. It runs one-shot solves,
working plane scripts and an MCP server exposing the same commands.`,
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("model", "m", "", "STL or OpenSCAD model to load")
	rootCmd.PersistentFlags().String("prefs", "", "preferences file")

	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("prefs_path", rootCmd.PersistentFlags().Lookup("prefs"))

	rootCmd.SetVersionTemplate(fmt.Sprintf("gowp %s\n", version.GetFullVersion()))
}

// withSession starts the application without the preferences watcher and
// runs fn against its session.
func withSession(ctx context.Context, fn func(guard *session.Guard, doc *document.Document, logger *slog.Logger) error) error {
	viper.Set("watch_prefs", false)

	var (
		guard  *session.Guard
		doc    *document.Document
		logger *slog.Logger
	)
	application := fx.New(
		config.Module,
		app.Module,
		fx.Populate(&guard, &doc, &logger),
		fx.NopLogger,
	)
	if err := application.Err(); err != nil {
		return err
	}
	if err := application.Start(ctx); err != nil {
		return err
	}
	defer func() {
		_ = application.Stop(context.Background())
	}()

	return fn(guard, doc, logger)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		printError(err.Error())
		os.Exit(1)
	}
}
