// app.go
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"claude-restore/internal/archive"
	"claude-restore/internal/checkpoint"
	"claude-restore/internal/config"
	"claude-restore/internal/git"
	"claude-restore/internal/observability"
	"claude-restore/internal/paths"
	"claude-restore/internal/server"
	"claude-restore/internal/session"
)

// App struct contains the core application state and components
type App struct {
	config config.Config

	guard    *paths.Guard
	store    *session.Store
	blobs    *checkpoint.BlobStore
	browser  *checkpoint.Browser
	restorer *checkpoint.Restorer
	exporter *archive.Exporter
	importer *archive.Importer
	metrics  *observability.Metrics
	router   *gin.Engine
	server   *server.Server
}

// NewApp wires every component from a resolved configuration
func NewApp(cfg config.Config) *App {
	a := &App{config: cfg}

	a.guard = paths.NewGuard(cfg.HomeDir, cfg.PrivateRoots()...)
	a.store = session.NewStore(cfg.ProjectsRoot)
	a.blobs = checkpoint.NewBlobStore(cfg.HistoryRoot)
	a.browser = checkpoint.NewBrowser(a.store, a.blobs)

	var inspect checkpoint.InspectFunc
	if cfg.InspectGit {
		inspect = git.Inspect
	}
	a.restorer = checkpoint.NewRestorer(a.store, a.blobs, a.guard, inspect)

	a.exporter = archive.NewExporter(cfg.ClaudeRoot, cfg.ProjectsRoot, cfg.HistoryRoot)
	a.importer = archive.NewImporter(cfg.ClaudeRoot, cfg.ProjectsRoot, cfg.HistoryRoot, a.guard)

	a.metrics = observability.NewMetrics(nil)

	gin.SetMode(gin.ReleaseMode)
	handlers := server.NewHandlers(server.Deps{
		Store:    a.store,
		Browser:  a.browser,
		Restorer: a.restorer,
		Exporter: a.exporter,
		Importer: a.importer,
		Metrics:  a.metrics,
	})
	a.router = server.NewRouter(handlers, a.metrics)

	return a
}

// Startup binds the listener and starts serving. It returns the bound address.
func (a *App) Startup() (string, error) {
	a.server = server.New(a.config.Addr(), a.router)
	addr, err := a.server.Start()
	if err != nil {
		return "", err
	}

	slog.Info("claude-restore started",
		"addr", addr,
		"claude_root", a.config.ClaudeRoot,
		"inspect_git", a.config.InspectGit)
	return addr, nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (a *App) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	if err := a.server.Stop(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("claude-restore shutdown complete")
	return nil
}

// newLogger builds the process logger for the configured level and format
func newLogger(w io.Writer, level, format string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	if strings.ToLower(format) == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
