package app

import (
	"regexp"
	"strings"
)

// Corpus snapshot upserts carry the full document payload, which can run to
// megabytes. Span attributes get a flattened, truncated rendition instead.
const maxTracedQueryLength = 512

var queryWhitespacePattern = regexp.MustCompile(`\s+`)

func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	flat := queryWhitespacePattern.ReplaceAllString(query, " ")
	if len(flat) <= maxTracedQueryLength {
		return flat
	}
	return flat[:maxTracedQueryLength] + "..."
}
