package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/quiver/internal/cli"
)

var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Replay a recorded editing script",
	Long: `Applies the events of a YAML script to a fresh editor and prints the result.
The script may embed its starting graph as daut text or name a library automaton.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, _, err := setup(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		verbose, _ := cmd.Flags().GetBool("mutations")

		script, err := cli.LoadScript(args[0])
		if err != nil {
			return err
		}

		stack, err := cli.OpenStack(cfg, logger)
		if err != nil {
			return err
		}
		defer stack.Close()

		ctx := cmd.Context()
		snap, ok, err := script.Seed()
		if err != nil {
			return err
		}
		if !ok {
			if snap, err = stack.Seed(ctx, "", script.Automaton); err != nil {
				return err
			}
		}
		doc, err := stack.OpenDocument(ctx, "", snap)
		if err != nil {
			return err
		}
		editor, err := cli.NewEditor(ctx, cfg, logger, doc)
		if err != nil {
			return err
		}

		res, err := cli.Replay(ctx, editor, script)
		if err != nil {
			return err
		}
		if verbose {
			for _, m := range res.Mutations {
				if m.StateID != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "%-18s %s\n", m.Kind, m.StateID)
					continue
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "%-18s %s -> %s %q\n", m.Kind, m.Source, m.Target, m.Label)
			}
		}
		return cli.RenderGraph(cmd.OutOrStdout(), script.Automaton, res.Snapshot, format)
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().StringP("format", "f", "daut", "Output format: mermaid, daut, json or summary")
	replayCmd.Flags().Bool("mutations", false, "Print every mutation to stderr")
}
