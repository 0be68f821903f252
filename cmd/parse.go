// Package cmd — parse command.
// Prints the document tree the converter works on, for debugging input
// that renders unexpectedly.
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/htmd/core/config"
	"github.com/gaurav-prasanna/htmd/core/parser"
)

var flagParseHTML bool

var parseCmd = &cobra.Command{
	Use:   "parse <input>",
	Short: "Print the parsed document tree",
	Long: `Parse reads an input (a file path, an http(s) URL, or - for stdin) and
prints its document tree as JSON, or re-serialized as HTML with --html.

Examples:
  htmd parse page.html
  echo '<ul><li>a</li></ul>' | htmd parse -
  htmd parse https://example.com --html`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().BoolVar(&flagParseHTML, "html", false, "Print the tree as HTML instead of JSON")
}

func runParse(cmd *cobra.Command, args []string) error {
	in := newInputReader(config.Default().Fetch, cmd.InOrStdin())
	html, err := in.read(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	tree, err := parser.ParseContext(cmd.Context(), html)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	out := cmd.OutOrStdout()
	if flagParseHTML {
		fmt.Fprintln(out, tree.HTML())
		return nil
	}

	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling tree: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}
