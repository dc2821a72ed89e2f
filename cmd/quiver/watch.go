package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/quiver/internal/cli"
	"github.com/aretw0/quiver/pkg/runner"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the graph diffs published on NATS",
	Long: `Subscribes to the diffs that editors publish when nats.url is configured
and prints them as they arrive, for one session or for all of them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, _, err := setup(cmd)
		if err != nil {
			return err
		}
		if url, _ := cmd.Flags().GetString("url"); url != "" {
			cfg.NATS.URL = url
		}
		sessionID, _ := cmd.Flags().GetString("session")
		asJSON, _ := cmd.Flags().GetBool("json")

		signals := runner.NewSignalManager()
		defer signals.Stop()

		return cli.Watch(signals.Context(), cli.WatchOptions{
			URL:       cfg.NATS.URL,
			SessionID: sessionID,
			JSON:      asJSON,
			Output:    cmd.OutOrStdout(),
		})
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("url", "", "NATS server url (defaults to nats.url of the config)")
	watchCmd.Flags().StringP("session", "s", "", "Only print the diffs of this session")
	watchCmd.Flags().Bool("json", false, "Print each diff as a JSON line")
}
