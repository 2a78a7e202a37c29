// Package similarity holds the fuzzy description-matching rules used by
// both pending-transaction reconciliation and recurring-bill linking.
// Thresholds are named here so they can be tuned and tested in isolation.
package similarity

import (
	"strings"
	"unicode"
)

const (
	// PendingOverlap is the token-overlap ratio required to treat an
	// incoming transaction as the posted form of a pending one.
	PendingOverlap = 0.70
	// BillOverlap is the looser ratio used when linking a transaction
	// to a recurring bill definition.
	BillOverlap = 0.60
	// CommonTokenFloor accepts a pair outright when at least this many
	// significant tokens are shared, regardless of ratio.
	CommonTokenFloor = 3
	// minTokenLen drops short filler tokens ("of", "to", "st") before
	// computing overlap.
	minTokenLen = 3
	// minMerchantLen guards the pipe-merchant rule against matching on
	// one- or two-letter prefixes.
	minMerchantLen = 3
)

// Match reports whether two free-text descriptions refer to the same
// charge. Comparison is case-insensitive and whitespace-trimmed.
// Rules, first satisfied wins: exact equality, substring containment,
// pipe-merchant token equality, token overlap at the given ratio (or
// CommonTokenFloor shared tokens).
func Match(a, b string, overlap float64) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	if ma, mb := merchantToken(a), merchantToken(b); ma != "" && ma == mb {
		return true
	}
	common, larger := tokenOverlap(a, b)
	if common >= CommonTokenFloor {
		return true
	}
	return larger > 0 && float64(common)/float64(larger) >= overlap
}

// merchantToken extracts the leading alphabetic run before the first
// pipe separator, e.g. "shell oil 12345 | shell oil 12345" -> "shell".
// Returns "" when the string has no pipe or the run is too short.
func merchantToken(s string) string {
	idx := strings.IndexByte(s, '|')
	if idx < 0 {
		return ""
	}
	head := strings.TrimSpace(s[:idx])
	var run strings.Builder
	for _, r := range head {
		if !unicode.IsLetter(r) {
			break
		}
		run.WriteRune(r)
	}
	if run.Len() < minMerchantLen {
		return ""
	}
	return run.String()
}

// tokenOverlap tokenizes both strings by whitespace, strips
// non-alphanumeric characters, keeps tokens of minTokenLen or longer,
// and returns the shared-token count and the larger set size.
func tokenOverlap(a, b string) (common, larger int) {
	ta := tokenSet(a)
	tb := tokenSet(b)
	for tok := range ta {
		if tb[tok] {
			common++
		}
	}
	larger = len(ta)
	if len(tb) > larger {
		larger = len(tb)
	}
	return common, larger
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, field := range strings.Fields(s) {
		tok := strings.Map(func(r rune) rune {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				return r
			}
			return -1
		}, field)
		if len(tok) >= minTokenLen {
			set[tok] = true
		}
	}
	return set
}
