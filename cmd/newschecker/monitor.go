package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var monitorOnce bool

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Re-score the configured watchlist on its cron schedule",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, logger, err := newApplication(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := application.Close(); err != nil {
				logger.Warn("close application", "error", err)
			}
		}()

		if !monitorOnce {
			return application.Watch(cmd.Context())
		}

		summary, err := application.RunMonitor(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "checked %d, skipped %d, failed %d, unreliable %d\n",
			summary.Checked, summary.Skipped, summary.Failed, len(summary.Unreliable))
		for _, a := range summary.Unreliable {
			fmt.Fprintf(out, "  %s %s\n", statusColors[a.Result.Status].Sprintf("%3d", a.Result.Score), a.URL)
		}
		return nil
	},
}

func init() {
	monitorCmd.Flags().BoolVar(&monitorOnce, "once", false, "run a single pass and exit")
}
