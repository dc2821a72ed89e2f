package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/quiver/internal/cli"
	"github.com/aretw0/quiver/pkg/runner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Edit an automaton over line-delimited JSON",
	Long: `Reads one editor event per line on stdin and writes mutations, diffs and frames
as JSON lines on stdout. Commands "tick", "frame", "snapshot" and "export" are
accepted besides the events. Logs and the banner go to stderr.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, debug, err := setup(cmd)
		if err != nil {
			return err
		}
		sessionID, _ := cmd.Flags().GetString("session")
		automaton, _ := cmd.Flags().GetString("automaton")
		document, _ := cmd.Flags().GetString("document")
		frames, _ := cmd.Flags().GetBool("frames")
		quiet, _ := cmd.Flags().GetBool("quiet")

		signals := runner.NewSignalManager()
		defer signals.Stop()

		return cli.Execute(signals.Context(), cli.RunOptions{
			Config:    cfg,
			Debug:     debug,
			SessionID: sessionID,
			Automaton: automaton,
			Document:  document,
			Frames:    frames,
			Quiet:     quiet,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("session", "s", "", "Session ID: resume it and save every edit to the configured store")
	runCmd.Flags().StringP("automaton", "a", "", "Start from a named automaton of the library")
	runCmd.Flags().String("document", "", "Mirror the graph into a shared redis document with this name")
	runCmd.Flags().Bool("frames", false, "Emit a frame after every layout tick")
	runCmd.Flags().BoolP("quiet", "q", false, "Do not print the banner and status messages")
}
