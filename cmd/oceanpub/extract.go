package main

import (
	"github.com/spf13/cobra"

	"github.com/odbtw/oceanpub/internal/citation"
)

func init() {
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract <citation>",
	Short: "Show the title extracted from a raw citation string",
	Long: `Show the title extracted from a raw citation string, along with the
normalized comparison key used for Crossref matching.

Extraction is a heuristic anchored on the publication year; when no
year/terminator pattern matches, the whole citation is returned and
flagged as low confidence.

Example:
  oceanpub extract "Smith, J. (2020) Ocean warming trends. Nature."`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

// ExtractResult is the JSON output for the extract command.
type ExtractResult struct {
	Title         string `json:"title"`
	NormalizedKey string `json:"normalized_key"`
	Matched       bool   `json:"matched"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	title, matched := citation.Extract(args[0])
	result := ExtractResult{
		Title:         title,
		NormalizedKey: citation.NormalizeKey(title),
		Matched:       matched,
	}

	if humanOutput {
		outputHuman("title:      %s\nkey:        %s\nconfident:  %v\n",
			result.Title, result.NormalizedKey, result.Matched)
	} else {
		outputJSON(result)
	}
	return nil
}
