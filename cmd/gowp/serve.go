package main

import (
	"os"

	"github.com/philipparndt/gowp/internal/app"
	"github.com/philipparndt/gowp/internal/config"
	"github.com/philipparndt/gowp/internal/mcpserver"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the working plane tools over MCP (stdio)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fx.New(
			fx.WithLogger(func(cfg *config.Config) fxevent.Logger {
				// stdout carries the protocol
				if cfg.LogLevel == "debug" {
					return &fxevent.ConsoleLogger{W: os.Stderr}
				}
				return fxevent.NopLogger
			}),
			config.Module,
			app.Module,
			mcpserver.Module,
		).Run()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
