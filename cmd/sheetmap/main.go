// Package main provides the CLI entry point for sheetmap-go.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ukaji3/sheetmap-go/pkg/sheetmap"
)

var (
	configPath string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetmap",
		Short: "Map typed records to and from Excel workbooks",
		Long: `sheetmap-go writes relational record graphs to Excel workbooks,
one sheet per record type, and dumps workbooks as JSON.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug records to stderr")

	rootCmd.AddCommand(newDumpCmd(), newDemoCmd())
	return rootCmd
}

// loadConfig reads --config, or returns the defaults when it is unset.
func loadConfig() (*sheetmap.Config, error) {
	if configPath == "" {
		return &sheetmap.Config{}, nil
	}
	cfg, err := sheetmap.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
