package search

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Cache key namespaces. Spelling corrections are cached under the raw
// input string with no prefix, so the scheduler's prefix purges leave
// them alone.
const (
	TotalCountKey = "total_count"
	SearchPrefix  = "search_"
	InstantPrefix = "isearch_"
)

// Per-operation TTL policy.
const (
	TotalCountTTL = 30 * time.Minute
	SearchTTL     = 15 * time.Minute
	InstantTTL    = time.Hour
	CorrectionTTL = 24 * time.Hour
)

// The literal input "a" pre-seeds a fixed decoy value with a 15-year TTL,
// kept as a long-lived cache smoke test.
const (
	decoyInput = "a"
	decoyValue = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	decoyTTL   = 15 * 365 * 24 * time.Hour
)

// normalizeKey turns a free-text query into a safe cache key fragment:
// spaces become underscores, apostrophes become dashes, regex
// metacharacters are escaped, and the result is lower-cased.
func normalizeKey(query string) string {
	trimmed := strings.ReplaceAll(query, " ", "_")
	trimmed = strings.ReplaceAll(trimmed, "'", "-")
	return strings.ToLower(regexp.QuoteMeta(trimmed))
}

func searchKey(query string, page int) string {
	return fmt.Sprintf("%s%s_%d", SearchPrefix, normalizeKey(query), page)
}

func instantKey(query string) string {
	return InstantPrefix + normalizeKey(query)
}
