package search

import (
	"math"
	"strings"
	"time"
)

const (
	// MinSuggestionQueryLen is the shortest prefix that produces suggestions.
	MinSuggestionQueryLen = 2
	// MaxSuggestions caps the suggestion list per request.
	MaxSuggestions = 5
	// suggestionMaxLen bounds each suggestion, in characters, before the
	// ellipsis.
	suggestionMaxLen = 50
)

// Stats carries the informational timing and volume numbers returned with a
// search response. They never affect correctness.
type Stats struct {
	SearchTimeMs   float64 `json:"search_time_ms"`
	TotalMatches   int     `json:"total_matches"`
	QueryLength    int     `json:"query_length"`
	IsComplexQuery bool    `json:"is_complex_query"`
}

// CalculateStats computes wall-clock search duration in milliseconds,
// rounded to two decimal places.
func CalculateStats(start time.Time, totalMatches int, query string) Stats {
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	return Stats{
		SearchTimeMs:   math.Round(elapsed*100) / 100,
		TotalMatches:   totalMatches,
		QueryLength:    len(query),
		IsComplexQuery: len(strings.Fields(query)) > 3,
	}
}

// DedupeSuggestions truncates, de-duplicates (first occurrence wins), and
// caps raw suggestion candidates.
func DedupeSuggestions(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	suggestions := make([]string, 0, MaxSuggestions)

	for _, candidate := range candidates {
		s := strings.TrimSpace(candidate)
		if s == "" {
			continue
		}
		// Truncation counts characters, not bytes, so multibyte input is
		// never cut mid-rune.
		if runes := []rune(s); len(runes) > suggestionMaxLen {
			s = string(runes[:suggestionMaxLen-3]) + "..."
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		suggestions = append(suggestions, s)
		if len(suggestions) == MaxSuggestions {
			break
		}
	}

	return suggestions
}
