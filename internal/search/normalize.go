// Package search builds the full-text query pipeline: normalization,
// filter composition, and result statistics.
package search

import (
	"strings"
	"unicode"
)

// NormalizeQuery cleans a raw user query for full-text matching: whitespace
// runs collapse to a single space, leading/trailing whitespace is trimmed,
// and characters outside [word characters, whitespace, hyphen, @, .] become
// spaces so stripping punctuation never merges adjacent words.
//
// NormalizeQuery is idempotent. An empty result means the query carried no
// searchable content and must be rejected by the caller.
func NormalizeQuery(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if isQueryRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

func isQueryRune(r rune) bool {
	switch {
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		return true
	case r == '-' || r == '@' || r == '.':
		return true
	case unicode.IsSpace(r):
		return true
	default:
		return false
	}
}
