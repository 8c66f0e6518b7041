package citation

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	tagOrPercentRe = regexp.MustCompile(`<[^>]*>|%`)
	tagRe          = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe   = regexp.MustCompile(`\s+`)

	// Hyphen-family variants plus ASCII hyphen with surrounding spaces.
	hyphenRe = regexp.MustCompile("[‐–—]|\\s*-\\s*")

	curlyQuoteRe = regexp.MustCompile("[‘’“”]")
)

// foldDiacritics maps accented letters to their base form (La Niña -> La Nina).
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeKey maps a title to its comparison key. Two titles refer to the
// same work iff their keys are equal; there is no edit-distance fuzziness.
//
// The key drops HTML-like markup, "%", hyphen and quote variants, diacritics
// and all punctuation, then lower-cases and single-spaces what remains.
// NormalizeKey is idempotent.
func NormalizeKey(title string) string {
	s := tagOrPercentRe.ReplaceAllString(title, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = hyphenRe.ReplaceAllString(s, "")
	s = curlyQuoteRe.ReplaceAllString(s, "")
	if folded, _, err := transform.String(foldDiacritics, s); err == nil {
		s = folded
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == ' ' {
			return r
		}
		return -1
	}, s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(strings.ToLower(s))
}

// FormatTitle cleans a title for storage while preserving case and
// diacritics: markup and entity noise go away, Unicode hyphens and curly
// quotes become their ASCII forms, and single quotes are doubled so the
// value is safe to embed as a literal.
//
// This is a distinct transform from NormalizeKey: one is for display and
// storage, the other for comparison. They must not be merged.
func FormatTitle(title string) string {
	if title == "" {
		return ""
	}

	s := tagRe.ReplaceAllString(title, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	s = hyphenRe.ReplaceAllString(s, "-")

	s = strings.NewReplacer(
		"‘", "'", "’", "'",
		"“", `"`, "”", `"`,
	).Replace(s)

	s = html.UnescapeString(s)

	return strings.TrimSpace(strings.ReplaceAll(s, "'", "''"))
}
