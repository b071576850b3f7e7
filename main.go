package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"claude-restore/internal/config"
)

// Set at build time with -ldflags "-X main.version=..."
var version = "dev"

type rootFlags struct {
	configFile string
	claudeRoot string
	host       string
	port       int
	logLevel   string
	logFormat  string
	noGit      bool
}

// NewRootCommand creates the root command
func NewRootCommand() *cobra.Command {
	var flags rootFlags

	rootCmd := &cobra.Command{
		Use:   "claude-restore",
		Short: "Browse Claude conversation checkpoints and restore files from them",
		Long: `claude-restore serves a local web UI and JSON API for browsing Claude
conversation logs, previewing checkpointed file versions, restoring them into a
directory, and exporting or importing portable bundles.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.overrides(cmd))
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, cmd.ErrOrStderr())
		},
	}

	f := rootCmd.Flags()
	f.StringVar(&flags.configFile, "config", "", "Path to a YAML config file")
	f.StringVar(&flags.claudeRoot, "claude-root", "", "Claude data directory (default ~/.claude)")
	f.StringVar(&flags.host, "host", config.DefaultHost, "Address to listen on")
	f.IntVarP(&flags.port, "port", "p", config.DefaultPort, "Port to listen on")
	f.StringVar(&flags.logLevel, "log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	f.StringVar(&flags.logFormat, "log-format", config.DefaultLogFormat, "Log format: text or json")
	f.BoolVar(&flags.noGit, "no-git", false, "Do not inspect restore targets for git status")

	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// overrides returns only the flags the user actually set, so that a config
// file value is not clobbered by a flag default
func (f *rootFlags) overrides(cmd *cobra.Command) config.Overrides {
	o := config.Overrides{ConfigFile: f.configFile}
	changed := cmd.Flags().Changed

	if changed("claude-root") {
		o.ClaudeRoot = &f.claudeRoot
	}
	if changed("host") {
		o.Host = &f.host
	}
	if changed("port") {
		o.Port = &f.port
	}
	if changed("log-level") {
		o.LogLevel = &f.logLevel
	}
	if changed("log-format") {
		o.LogFormat = &f.logFormat
	}
	if changed("no-git") {
		o.NoGit = &f.noGit
	}
	return o
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "claude-restore %s\n", version)
		},
	}
}

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
