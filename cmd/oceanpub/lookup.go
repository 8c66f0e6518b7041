package main

import (
	"context"
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/odbtw/oceanpub/internal/citation"
	"github.com/odbtw/oceanpub/internal/crossref"
)

func init() {
	rootCmd.AddCommand(lookupCmd)
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <title>",
	Short: "Resolve a single title against Crossref without persisting",
	Long: `Resolve a single title against Crossref without persisting.

Queries the works API and prints the first candidate whose normalized
title equals the normalized query exactly. Useful for checking why a
spreadsheet row did or did not match.

Examples:
  oceanpub lookup "Ocean warming trends"
  oceanpub lookup "Coral bleaching" --human`,
	Args: cobra.ExactArgs(1),
	RunE: runLookup,
}

// LookupResult is the JSON output for the lookup command.
type LookupResult struct {
	DOI           string `json:"doi"`
	Title         string `json:"title"`
	FirstAuthor   string `json:"first_author,omitempty"`
	Publisher     string `json:"publisher,omitempty"`
	Journal       string `json:"journal,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	URL           string `json:"url"`
}

func joinDateParts(parts []int) string {
	s := ""
	for i, p := range parts {
		if i > 0 {
			s += "-"
		}
		s += strconv.Itoa(p)
	}
	return s
}

func runLookup(cmd *cobra.Command, args []string) error {
	title := args[0]
	cfg := loadConfig()
	ctx := context.Background()

	work, err := newClient(cfg).ResolveByTitle(ctx, title)
	if err != nil {
		if crossref.IsNoMatch(err) {
			exitWithError(ExitNoMatch, "no confident match for %q", title)
		}
		var apiErr *crossref.APIError
		if errors.As(err, &apiErr) {
			exitWithError(ExitError, "Crossref request failed: %v", apiErr)
		}
		exitWithError(ExitError, "lookup failed: %v", err)
	}

	first := ""
	if len(work.Author) > 0 {
		a := work.Author[0]
		first = a.Given + " " + a.Family
	}

	result := LookupResult{
		DOI:         work.DOI,
		Title:       citation.FormatTitle(work.PrimaryTitle()),
		FirstAuthor: first,
		Publisher:   work.Publisher,
		Journal:     work.ShortJournal(),
		URL:         "https://doi.org/" + work.DOI,
	}
	if parts := work.PublishedPrint.Parts(); len(parts) > 0 && parts[0] > 0 {
		result.PublishedDate = joinDateParts(parts)
	} else if parts := work.PublishedOnline.Parts(); len(parts) > 0 && parts[0] > 0 {
		result.PublishedDate = joinDateParts(parts)
	}

	if humanOutput {
		outputHuman("%s\n  %s\n  %s %s (%s)\n  %s\n",
			result.Title, result.DOI, result.FirstAuthor, result.Journal,
			result.PublishedDate, result.URL)
	} else {
		outputJSON(result)
	}
	return nil
}
