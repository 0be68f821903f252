// Package cmd implements the CLI commands for htmd using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "htmd",
	Short: "htmd — convert HTML documents into Markdown",
	Long: `htmd parses HTML files, URLs or standard input into a document tree and
renders it as Markdown, JSON, PDF, or an HTML preview.

Usage:
  htmd convert <input>... [flags]
  htmd parse <input> [flags]`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
