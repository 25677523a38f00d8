package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trigtutor/tutor"
	"github.com/trigtutor/tutor/intent"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "trigtutor %s (keywords %s)\n", tutor.Version, intent.DefaultKeywords.Version)
	},
}
