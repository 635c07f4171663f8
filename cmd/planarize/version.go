package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is overridden at link time with -ldflags "-X main.Version=...".
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the planarize version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "planarize", Version)
	},
}
