package shared

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

var punctuationReplacer = strings.NewReplacer(
	"\u2018", "'",
	"\u2019", "'",
	"\u00b4", "'",
	"`", "'",
	"\u201c", `"`,
	"\u201d", `"`,
	"-", " ",
	"\u2010", " ",
	"\u2013", " ",
	"\u2014", " ",
)

// Normalize folds a title or artist name into the form used for reference lookups.
//
// Text is NFC-composed, trimmed and lowercased. Quote variants are unified, hyphens and dashes become
// spaces, and every whitespace run collapses to one space.
func Normalize(s string) string {
	s = norm.NFC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	s = punctuationReplacer.Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeTrackKey builds a "title|artist" key from normalized parts.
func NormalizeTrackKey(title, artist string) string {
	return Normalize(title) + "|" + Normalize(artist)
}

// MutuallyContains reports whether either string contains the other.
func MutuallyContains(a, b string) bool {
	return strings.Contains(a, b) || strings.Contains(b, a)
}
