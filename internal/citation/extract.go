// Package citation parses and canonicalizes free-text citation strings.
package citation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Year anchors. A title starts after a 4-digit year, which is either
// enclosed in parentheses (possibly with trailing text inside them) or
// bare. An optional "." or "," and whitespace may follow the anchor.
var (
	parenYearRe = regexp.MustCompile(`[（(]\d{4}[^）)]*[）)][.,]?\s*`)
	bareYearRe  = regexp.MustCompile(`\d{4}[.,]?\s*`)

	citationQuoteRe = regexp.MustCompile(`[‘’“”']`)
)

// Extract returns the best-guess title substring of a raw citation string.
//
// The title runs from the first year anchor to the next sentence terminator:
// a Latin or CJK full stop, or a comma that is not inside a later parenthesis
// and is followed by a capitalized word. When no anchor/terminator pair
// matches, the whole trimmed input is returned with matched=false; callers
// must treat that as low confidence and filter before any lookup.
func Extract(raw string) (title string, matched bool) {
	s := citationQuoteRe.ReplaceAllString(raw, "")

	if t, ok := extractAfterAnchor(s, parenYearRe); ok {
		return t, true
	}
	if t, ok := extractAfterAnchor(s, bareYearRe); ok {
		return t, true
	}
	return strings.TrimSpace(s), false
}

// extractAfterAnchor tries every anchor position in order and returns the
// text between the first anchor that is followed by a terminator and that
// terminator.
func extractAfterAnchor(s string, anchor *regexp.Regexp) (string, bool) {
	for _, loc := range anchor.FindAllStringIndex(s, -1) {
		start := loc[1]
		if end, ok := findTerminator(s, start); ok {
			return strings.TrimSpace(s[start:end]), true
		}
	}
	return "", false
}

// findTerminator scans for the first sentence terminator at or after start.
func findTerminator(s string, start int) (int, bool) {
	for i, r := range s[start:] {
		idx := start + i
		switch r {
		case '.', '。':
			return idx, true
		case ',':
			rest := s[idx+utf8.RuneLen(r):]
			if commaInsideParens(rest) {
				continue
			}
			if followedByCapital(rest) {
				return idx, true
			}
		}
	}
	return 0, false
}

// commaInsideParens reports whether the text after a comma closes a
// parenthesis before opening one, meaning the comma sits inside a
// parenthesized group such as an author list.
func commaInsideParens(rest string) bool {
	for _, r := range rest {
		switch r {
		case '(', '（':
			return false
		case ')', '）':
			return true
		}
	}
	return false
}

// followedByCapital reports whether the first non-space rune is an
// uppercase Latin letter.
func followedByCapital(rest string) bool {
	for _, r := range rest {
		if unicode.IsSpace(r) {
			continue
		}
		return r >= 'A' && r <= 'Z'
	}
	return false
}
