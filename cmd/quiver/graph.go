package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/quiver/internal/cli"
	"github.com/aretw0/quiver/internal/presentation/graph"
	"github.com/aretw0/quiver/pkg/domain"
)

var graphCmd = &cobra.Command{
	Use:   "graph [automaton]",
	Short: "Export an automaton",
	Long: `Prints an automaton from the library (by name), a stored session (--session)
or a daut file (--daut) as mermaid, daut, json or a terminal summary.
With --save the automaton is also written to the library under that name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, _, err := setup(cmd)
		if err != nil {
			return err
		}
		sessionID, _ := cmd.Flags().GetString("session")
		dautPath, _ := cmd.Flags().GetString("daut")
		format, _ := cmd.Flags().GetString("format")
		saveAs, _ := cmd.Flags().GetString("save")

		stack, err := cli.OpenStack(cfg, logger)
		if err != nil {
			return err
		}
		defer stack.Close()

		ctx := cmd.Context()
		var (
			name string
			snap *domain.Snapshot
		)
		switch {
		case dautPath != "":
			data, err := os.ReadFile(dautPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", dautPath, err)
			}
			snap, name, err = graph.ParseDaut(string(data))
			if err != nil {
				return err
			}
		case sessionID != "":
			name = sessionID
			if snap, err = stack.Store.Load(ctx, sessionID); err != nil {
				return err
			}
		case len(args) == 1:
			name = args[0]
			if snap, err = stack.Seed(ctx, "", name); err != nil {
				return err
			}
		default:
			return fmt.Errorf("nothing to export: give an automaton name, --session or --daut")
		}

		if saveAs != "" {
			if stack.Library == nil {
				return fmt.Errorf("--save needs library.dir to be configured")
			}
			if err := stack.Library.Put(ctx, saveAs, snap); err != nil {
				return err
			}
			logger.Info("automaton saved", "name", saveAs)
		}
		return cli.RenderGraph(cmd.OutOrStdout(), name, snap, format)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("session", "s", "", "Export a stored session")
	graphCmd.Flags().String("daut", "", "Read the automaton from a daut file")
	graphCmd.Flags().StringP("format", "f", "mermaid", "Output format: mermaid, daut, json or summary")
	graphCmd.Flags().String("save", "", "Also save the automaton to the library under this name")
}
