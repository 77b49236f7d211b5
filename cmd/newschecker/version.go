package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Set at build time with -ldflags "-X main.version=... -X main.commit=...".
var (
	version = "dev"
	commit  = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if commit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "newschecker %s (%s)\n", version, commit)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "newschecker %s\n", version)
	},
}
