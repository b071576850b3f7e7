// internal/config/config.go
package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultHost      = "127.0.0.1"
	DefaultPort      = 3000
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Config holds the resolved runtime configuration. It is built once at
// startup and passed by value into every component that needs it.
type Config struct {
	HomeDir      string
	ClaudeRoot   string
	ProjectsRoot string
	HistoryRoot  string
	Host         string
	Port         int
	LogLevel     string
	LogFormat    string
	InspectGit   bool
}

// FileConfig is the on-disk YAML form. Zero values mean "not set".
type FileConfig struct {
	ClaudeRoot string `yaml:"claude_root"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
	InspectGit *bool  `yaml:"inspect_git"`
}

// Overrides carries explicitly set command-line flags
type Overrides struct {
	ConfigFile string
	ClaudeRoot *string
	Host       *string
	Port       *int
	LogLevel   *string
	LogFormat  *string
	NoGit      *bool
}

// Default returns the configuration used when nothing is overridden
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg := Config{
		HomeDir:    home,
		ClaudeRoot: filepath.Join(home, ".claude"),
		Host:       DefaultHost,
		Port:       DefaultPort,
		LogLevel:   DefaultLogLevel,
		LogFormat:  DefaultLogFormat,
		InspectGit: true,
	}
	cfg.derive()
	return cfg, nil
}

// Load builds a Config from defaults, an optional YAML file and flags, in
// increasing order of precedence
func Load(o Overrides) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return Config{}, err
	}

	if o.ConfigFile != "" {
		fc, err := ReadFile(o.ConfigFile)
		if err != nil {
			return Config{}, err
		}
		cfg.applyFile(fc)
	}

	if o.ClaudeRoot != nil {
		cfg.ClaudeRoot = *o.ClaudeRoot
	}
	if o.Host != nil {
		cfg.Host = *o.Host
	}
	if o.Port != nil {
		cfg.Port = *o.Port
	}
	if o.LogLevel != nil {
		cfg.LogLevel = *o.LogLevel
	}
	if o.LogFormat != nil {
		cfg.LogFormat = *o.LogFormat
	}
	if o.NoGit != nil && *o.NoGit {
		cfg.InspectGit = false
	}

	cfg.derive()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ReadFile parses a YAML configuration file
func ReadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &fc, nil
}

func (c *Config) applyFile(fc *FileConfig) {
	if fc.ClaudeRoot != "" {
		c.ClaudeRoot = fc.ClaudeRoot
	}
	if fc.Host != "" {
		c.Host = fc.Host
	}
	if fc.Port != 0 {
		c.Port = fc.Port
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		c.LogFormat = fc.LogFormat
	}
	if fc.InspectGit != nil {
		c.InspectGit = *fc.InspectGit
	}
}

// derive expands the Claude root and recomputes the paths below it
func (c *Config) derive() {
	if c.ClaudeRoot == "~" || strings.HasPrefix(c.ClaudeRoot, "~/") {
		c.ClaudeRoot = filepath.Join(c.HomeDir, strings.TrimPrefix(c.ClaudeRoot, "~"))
	}
	if abs, err := filepath.Abs(c.ClaudeRoot); err == nil {
		c.ClaudeRoot = abs
	}
	c.ProjectsRoot = filepath.Join(c.ClaudeRoot, "projects")
	c.HistoryRoot = filepath.Join(c.ClaudeRoot, "file-history")
}

// Validate rejects values the server cannot start with
func (c Config) Validate() error {
	if c.ClaudeRoot == "" {
		return fmt.Errorf("claude root must not be empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	return nil
}

// Addr returns the listen address
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DefaultClaudeRoot returns ~/.claude for the configured home
func (c Config) DefaultClaudeRoot() string {
	return filepath.Join(c.HomeDir, ".claude")
}

// PrivateRoots lists the directories restore and import must never write into
func (c Config) PrivateRoots() []string {
	return []string{c.ClaudeRoot, c.DefaultClaudeRoot()}
}
