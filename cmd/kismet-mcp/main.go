package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/usestring/kismetrest/internal/config"
	"github.com/usestring/kismetrest/pkg/client"
	"github.com/usestring/kismetrest/pkg/mcpsrv"
)

func main() {
	// Set up context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Configuration is loaded from environment variables:
	// - KISMET_URI: Kismet REST base URL (default: http://127.0.0.1:2501)
	// - KISMET_USERNAME / KISMET_PASSWORD: login for admin endpoints
	// - LOG_LEVEL: debug, info, warn, error (default: info)
	// - LOG_FILE: path to log file (default: stderr only)
	// - etc. (see internal/config for all options)
	cfg := config.Load()
	kismet := client.New(cfg.ClientOptions()...)

	server, err := mcpsrv.NewServer(kismet, mcpsrv.WithConfig(cfg))
	if err != nil {
		slog.Error("failed to create MCP server", "error", err)
		os.Exit(1)
	}
	defer server.Close()

	// Run the server with stdio transport
	slog.Info("starting Kismet MCP server on stdio", "kismet", kismet.BaseURL())
	if err := server.Run(ctx); err != nil && err != context.Canceled {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
