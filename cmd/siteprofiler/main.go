package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"SiteProfiler/internal/app"
	"SiteProfiler/internal/config"
	"SiteProfiler/internal/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	application := app.New(cfg, logger)

	if err := application.Run(ctx); err != nil {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
