package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"memlens/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "memlens", version.Version)
		if version.GitCommit != "" {
			fmt.Fprintln(out, "commit:", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Fprintln(out, "built:", version.BuildDate)
		}
	},
}
