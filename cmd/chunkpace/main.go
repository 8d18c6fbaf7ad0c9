// Package main provides the entry point for the chunkpace CLI tool.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chunkpace/chunkpace/cmd/chunkpace/commands"
	"github.com/chunkpace/chunkpace/internal/config"
	"github.com/chunkpace/chunkpace/pkg/version"
)

var (
	verbose    bool
	quiet      bool
	configPath string
)

func main() {
	version.InitBinaryVersion()

	rootCmd := &cobra.Command{
		Use:   "chunkpace",
		Short: "Chunkpace - memory-aware adaptive file chunking",
		Long: `Chunkpace reads files as a sequence of chunks whose size adapts to
observed read latency while staying within available system memory.

Commands:
  read      Stream a file in chunks to an output
  extract   Copy a byte range delimited by pattern matches`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setupLogging()
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")

	rootCmd.AddCommand(commands.NewReadCommand())
	rootCmd.AddCommand(commands.NewExtractCommand())
	rootCmd.AddCommand(versionCmd())

	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging installs the default slog logger. Flags take precedence over
// the configured level.
func setupLogging() error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	level := parseLevel(cfg.Logging.Level)

	if verbose {
		level = slog.LevelDebug
	}

	if quiet {
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Logging.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))

	return nil
}

func parseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "chunkpace %s (commit: %s, built: %s)\n", version.Version, version.Commit, version.Date)
		},
	}
}
