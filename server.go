package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"claude-restore/internal/config"
)

const shutdownTimeout = 10 * time.Second

// serve runs the HTTP server until ctx is cancelled or a termination signal
// arrives, then shuts down gracefully
func serve(ctx context.Context, cfg config.Config, logOut io.Writer) error {
	slog.SetDefault(newLogger(logOut, cfg.LogLevel, cfg.LogFormat))

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	app := NewApp(cfg)
	if _, err := app.Startup(); err != nil {
		return err
	}

	<-ctx.Done()
	slog.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.Shutdown(shutdownCtx)
}
