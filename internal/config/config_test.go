package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	if cfg.ClaudeRoot != filepath.Join(home, ".claude") {
		t.Errorf("Unexpected claude root: %s", cfg.ClaudeRoot)
	}
	if cfg.ProjectsRoot != filepath.Join(cfg.ClaudeRoot, "projects") {
		t.Errorf("Unexpected projects root: %s", cfg.ProjectsRoot)
	}
	if cfg.HistoryRoot != filepath.Join(cfg.ClaudeRoot, "file-history") {
		t.Errorf("Unexpected history root: %s", cfg.HistoryRoot)
	}
	if cfg.Port != DefaultPort || cfg.Host != DefaultHost {
		t.Errorf("Unexpected address: %s", cfg.Addr())
	}
	if !cfg.InspectGit {
		t.Error("Expected git inspection on by default")
	}
}

func TestLoad_Precedence(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")
	yamlContent := `claude_root: /data/claude
port: 4000
log_level: debug
inspect_git: false
`
	if err := os.WriteFile(configFile, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	t.Run("file overrides defaults", func(t *testing.T) {
		cfg, err := Load(Overrides{ConfigFile: configFile})
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.ClaudeRoot != filepath.Clean("/data/claude") {
			t.Errorf("Expected file claude root, got %s", cfg.ClaudeRoot)
		}
		if cfg.ProjectsRoot != filepath.Join("/data/claude", "projects") {
			t.Errorf("Expected derived projects root, got %s", cfg.ProjectsRoot)
		}
		if cfg.Port != 4000 {
			t.Errorf("Expected port 4000, got %d", cfg.Port)
		}
		if cfg.LogLevel != "debug" {
			t.Errorf("Expected debug, got %s", cfg.LogLevel)
		}
		if cfg.InspectGit {
			t.Error("Expected git inspection disabled by file")
		}
		if cfg.Host != DefaultHost {
			t.Errorf("Expected default host, got %s", cfg.Host)
		}
	})

	t.Run("flags override file", func(t *testing.T) {
		port := 5000
		root := filepath.Join(tmpDir, "claude")
		cfg, err := Load(Overrides{ConfigFile: configFile, Port: &port, ClaudeRoot: &root})
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Port != 5000 {
			t.Errorf("Expected port 5000, got %d", cfg.Port)
		}
		if cfg.ClaudeRoot != root {
			t.Errorf("Expected flag claude root, got %s", cfg.ClaudeRoot)
		}
		if cfg.HistoryRoot != filepath.Join(root, "file-history") {
			t.Errorf("Expected derived history root, got %s", cfg.HistoryRoot)
		}
	})
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(Overrides{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")})
		if err == nil {
			t.Error("Expected error for missing config file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configFile := filepath.Join(t.TempDir(), "bad.yaml")
		os.WriteFile(configFile, []byte("port: [not a number"), 0644)
		if _, err := Load(Overrides{ConfigFile: configFile}); err == nil {
			t.Error("Expected parse error")
		}
	})

	t.Run("invalid port", func(t *testing.T) {
		port := 70000
		if _, err := Load(Overrides{Port: &port}); err == nil {
			t.Error("Expected invalid port error")
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		level := "verbose"
		if _, err := Load(Overrides{LogLevel: &level}); err == nil {
			t.Error("Expected invalid log level error")
		}
	})
}

func TestTildeClaudeRoot(t *testing.T) {
	root := "~/custom-claude"
	cfg, err := Load(Overrides{ClaudeRoot: &root})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ClaudeRoot != filepath.Join(cfg.HomeDir, "custom-claude") {
		t.Errorf("Expected expanded root, got %s", cfg.ClaudeRoot)
	}
}

func TestPrivateRoots(t *testing.T) {
	root := "/srv/claude"
	cfg, err := Load(Overrides{ClaudeRoot: &root})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	roots := cfg.PrivateRoots()
	if len(roots) != 2 {
		t.Fatalf("Expected 2 private roots, got %d", len(roots))
	}
	if roots[0] != filepath.Clean(root) || roots[1] != filepath.Join(cfg.HomeDir, ".claude") {
		t.Errorf("Unexpected private roots: %v", roots)
	}
}
