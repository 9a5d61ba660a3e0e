// Package fuzzy provides the string similarity measures used for fallback
// matching and relevance scoring.
package fuzzy

import (
	"math"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kailas-cloud/stockdex/internal/textnorm"
)

// Ratio returns the sequence-matcher similarity of a and b in [0, 1] after
// folding both. It is symmetric: Ratio(a, b) == Ratio(b, a).
func Ratio(a, b string) float64 {
	ra, rb := runes(textnorm.Fold(a)), runes(textnorm.Fold(b))
	if len(ra) == 0 && len(rb) == 0 {
		return 1
	}
	return math.Max(
		difflib.NewMatcher(ra, rb).Ratio(),
		difflib.NewMatcher(rb, ra).Ratio(),
	)
}

// PartialRatio scores the best alignment of the shorter string inside the
// longer one on a 0-100 scale. Empty input scores 0.
func PartialRatio(a, b string) int {
	ra, rb := runes(textnorm.Fold(a)), runes(textnorm.Fold(b))
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	best := 0.0
	for _, block := range difflib.NewMatcher(shorter, longer).GetMatchingBlocks() {
		start := block.B - block.A
		if start < 0 {
			start = 0
		}
		end := start + len(shorter)
		if end > len(longer) {
			end = len(longer)
		}
		r := difflib.NewMatcher(shorter, longer[start:end]).Ratio()
		if r > 0.995 {
			return 100
		}
		if r > best {
			best = r
		}
	}
	return int(math.Round(best * 100))
}

// runes splits s into one-rune elements for the sequence matcher.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
