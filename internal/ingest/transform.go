package ingest

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/odbtw/oceanpub/internal/citation"
	"github.com/odbtw/oceanpub/internal/crossref"
	"github.com/odbtw/oceanpub/internal/publication"
)

// Crossref abstracts arrive as JATS XML; the markup and the literal
// "Abstract" label both go away before storage.
var abstractNoiseRe = regexp.MustCompile(`<[^>]*>|Abstract`)

// Transform maps a resolved Crossref work plus the source row's fields into
// the output record shape. Pure function, no I/O.
func Transform(row SourceRow, work *crossref.Work) publication.Publication {
	year, date := resolveDate(work)

	pub := publication.Publication{
		DOI:             work.DOI,
		Title:           citation.FormatTitle(work.PrimaryTitle()),
		FirstAuthor:     firstAuthorName(work.Author),
		Authors:         joinAuthors(work.Author),
		Publisher:       work.Publisher,
		Journal:         work.ShortJournal(),
		PublishedYear:   year,
		PublishedDate:   date,
		Abstract:        cleanAbstract(work.Abstract),
		URL:             "https://doi.org/" + work.DOI,
		AffiliationTW:   row.AffiliationTW,
		CorrespondingTW: row.CorrespondingTW,
		Flags:           make(map[string]bool),
	}

	for name, set := range row.Flags {
		if publication.IsKnownFlag(name) {
			pub.Flags[name] = set
		}
	}

	return pub
}

// resolveDate prefers the print publication date and falls back to the
// online one. With neither present the year is nil and the date is the
// "Unknown" sentinel.
func resolveDate(work *crossref.Work) (*int, string) {
	parts := work.PublishedPrint.Parts()
	if len(parts) == 0 {
		parts = work.PublishedOnline.Parts()
	}
	if len(parts) == 0 {
		return nil, publication.UnknownDate
	}

	year := parts[0]
	segs := make([]string, len(parts))
	for i, p := range parts {
		segs[i] = strconv.Itoa(p)
	}
	return &year, strings.Join(segs, "-")
}

// firstAuthorName formats the first listed author as "Given Family".
// Returns "" when the work has no authors.
func firstAuthorName(authors []crossref.Author) string {
	if len(authors) == 0 {
		return ""
	}
	return authorName(authors[0])
}

func authorName(a crossref.Author) string {
	return strings.TrimSpace(a.Given + " " + a.Family)
}

// joinAuthors formats all authors as a comma-separated "Given Family" list.
func joinAuthors(authors []crossref.Author) string {
	names := make([]string, len(authors))
	for i, a := range authors {
		names[i] = authorName(a)
	}
	return strings.Join(names, ", ")
}

func cleanAbstract(abstract string) string {
	return strings.TrimSpace(abstractNoiseRe.ReplaceAllString(abstract, ""))
}
