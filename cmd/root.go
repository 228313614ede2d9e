// Package cmd contains the gradhouse command line interface.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gradhouse",
	Short: "Index and validate arXiv bulk source archives",
	Long: `gradhouse tracks the arXiv bulk source data: it imports the S3
manifest, detects new and updated bulk archives between manifest
generations, validates archive and submission files against the arXiv
naming schemes, and maintains registries of everything it has seen.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
