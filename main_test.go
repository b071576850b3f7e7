package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"claude-restore/internal/config"
)

func TestRootFlags_OnlyChangedOverride(t *testing.T) {
	cmd := NewRootCommand()
	if err := cmd.Flags().Parse([]string{"--port", "4100", "--no-git"}); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var flags rootFlags
	flags.port = 4100
	flags.noGit = true
	o := flags.overrides(cmd)

	if o.Port == nil || *o.Port != 4100 {
		t.Errorf("Expected port override 4100, got %v", o.Port)
	}
	if o.NoGit == nil || !*o.NoGit {
		t.Error("Expected no-git override")
	}
	if o.Host != nil || o.ClaudeRoot != nil || o.LogLevel != nil || o.LogFormat != nil {
		t.Error("Unset flags must not override config")
	}
}

func TestVersionCommand(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "claude-restore ") {
		t.Errorf("Unexpected version output: %q", out.String())
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "shown" || entry["key"] != "value" {
		t.Errorf("Unexpected entry: %v", entry)
	}
}

func TestAppLifecycle(t *testing.T) {
	home := t.TempDir()
	claudeRoot := filepath.Join(home, ".claude")
	if err := os.MkdirAll(filepath.Join(claudeRoot, "projects", "-home-user-app"), 0755); err != nil {
		t.Fatalf("Failed to create fixture: %v", err)
	}

	cfg := config.Config{
		HomeDir:      home,
		ClaudeRoot:   claudeRoot,
		ProjectsRoot: filepath.Join(claudeRoot, "projects"),
		HistoryRoot:  filepath.Join(claudeRoot, "file-history"),
		Host:         "127.0.0.1",
		Port:         0,
		LogLevel:     "info",
		LogFormat:    "text",
	}

	app := NewApp(cfg)
	addr, err := app.Startup()
	if err != nil {
		t.Fatalf("Startup failed: %v", err)
	}

	resp, err := http.Get("http://" + addr + "/api/projects")
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), `"-home-user-app"`) {
		t.Errorf("Expected fixture project in response, got %s", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown failed: %v", err)
	}
}
