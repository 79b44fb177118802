package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "grammarsmith",
	Short: "Grammar-driven editor extension generator",
	Long: `Grammarsmith turns a YAML grammar manifest into a ready-to-load
editor extension: TextMate grammar, language configuration, snippets,
extension manifest, language server stub, and README.

Artifacts are rendered in parallel over a worker pool. Dependent
artifacts (the extension manifest, the README) wait for the files they
reference before rendering.

Core capabilities:
- Validates the grammar manifest before any work starts
- Renders independent artifacts concurrently, in dependency waves
- Records every run in a project-local history ledger
- Regenerates on manifest changes in watch mode`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
