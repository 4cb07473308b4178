package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	mcpadapter "github.com/dkotenko/docstore/internal/adapters/mcp"
	"github.com/dkotenko/docstore/internal/bootstrap"
	"github.com/dkotenko/docstore/internal/config"
	"github.com/dkotenko/docstore/internal/observability/logging"
)

func main() {
	// The protocol owns stdout, so all logging goes to stderr.
	slog.SetDefault(logging.NewJSONLoggerTo(os.Stderr, "mcp", "info"))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	logger := logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		logger.Error("bootstrap error", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := mcpadapter.NewServer(app.Documents, app.Batches, app.Versions)
	if err := srv.ServeStdio(); err != nil {
		logger.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
