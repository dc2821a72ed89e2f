package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/quiver/internal/cli"
	"github.com/aretw0/quiver/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "quiver",
	Short: "Quiver is an interactive automaton editor",
	Long: `Quiver edits labeled finite-state automata through pointer and keyboard events.
It runs as a line-delimited JSON filter, an HTTP/WebSocket server or an MCP server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to the configuration file (default ./"+config.DefaultConfigFile+" if present)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

// loadConfig reads and validates the configuration selected by --config.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultConfigFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setup loads the configuration and builds the logger for a command.
func setup(cmd *cobra.Command) (*config.Config, *slog.Logger, bool, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, false, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	return cfg, cli.CreateLogger(cfg, debug), debug, nil
}
