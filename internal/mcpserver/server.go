package mcpserver

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"
	"github.com/philipparndt/gowp/internal/config"
	"github.com/philipparndt/gowp/version"
	"go.uber.org/fx"
)

// NewMCPServer creates the MCP server with tool capabilities
func NewMCPServer(cfg *config.Config, tools *Tools, logger *slog.Logger) *server.MCPServer {
	logger.Debug("Creating MCP server instance")
	s := server.NewMCPServer(
		cfg.ServerName,
		version.GetVersion(),
		server.WithToolCapabilities(true),
	)
	tools.Register(s)
	return s
}

// registerServerHooks serves MCP over stdio for the lifetime of the app
func registerServerHooks(lc fx.Lifecycle, s *server.MCPServer, shutdowner fx.Shutdowner, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("Starting MCP server with 'stdio' transport.")
			go func() {
				if err := server.ServeStdio(s); err != nil {
					logger.Error("Stdio server failed", "error", err)
				}
				_ = shutdowner.Shutdown()
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Stdio server shutdown.")
			return nil
		},
	})
}

var Module = fx.Module("mcpserver",
	fx.Provide(
		NewTools,
		NewMCPServer,
	),
	fx.Invoke(registerServerHooks),
)
