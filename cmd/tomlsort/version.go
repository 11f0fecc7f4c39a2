package main

import (
	"github.com/spf13/cobra"

	"tomlsort/internal/document"
	"tomlsort/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		out := cmd.OutOrStdout()
		locator := "lexical"
		if document.IsTreeSitterAvailable() {
			locator = "tree-sitter"
		}
		printf(out, "%s\n", version.Full(locator))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
