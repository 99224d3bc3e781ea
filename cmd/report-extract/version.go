package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/report-extract/pkg/types"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of report-extract",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "report-extract %s (markers v%s)\n", version, types.MarkersVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
