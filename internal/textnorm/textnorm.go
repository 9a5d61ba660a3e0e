// Package textnorm canonicalizes Persian catalog and query text.
package textnorm

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	zwnj    = '\u200c'
	tatweel = '\u0640'
)

var letterVariants = map[rune]rune{
	'ي': 'ی', // Arabic yeh -> Persian yeh
	'ى': 'ی', // alef maksura -> Persian yeh
	'ك': 'ک', // Arabic kaf -> Persian keheh
}

func mapLetter(r rune) rune {
	if m, ok := letterVariants[r]; ok {
		return m
	}
	return r
}

func isDropped(r rune) bool {
	return r == zwnj || r == tatweel
}

// pipeline is built per call: transform.Chain keeps internal buffers.
func pipeline() transform.Transformer {
	return transform.Chain(
		norm.NFC,
		runes.Map(mapLetter),
		runes.Remove(runes.Predicate(isDropped)),
		norm.NFC,
	)
}

// Normalize returns the canonical form of s: NFC composed, Arabic letter
// variants mapped to Persian, ZWNJ and tatweel removed, whitespace runs
// collapsed to one space, trimmed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	out, _, err := transform.String(pipeline(), s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(out), " ")
}

// NormalizeQuery strips question marks (Latin and Arabic) and normalizes.
func NormalizeQuery(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '?' || r == '؟' {
			return -1
		}
		return r
	}, s)
	return Normalize(s)
}

// Fold is the comparison form: normalized and lower-cased.
func Fold(s string) string {
	return strings.ToLower(Normalize(s))
}

// ASCIIDigits rewrites Persian and Arabic-Indic digits as ASCII digits.
func ASCIIDigits(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= '۰' && r <= '۹':
			return '0' + (r - '۰')
		case r >= '٠' && r <= '٩':
			return '0' + (r - '٠')
		}
		return r
	}, s)
}

// ContainsAny reports whether the folded haystack contains any folded needle.
func ContainsAny(haystack string, needles []string) bool {
	h := Fold(haystack)
	for _, n := range needles {
		if f := Fold(n); f != "" && strings.Contains(h, f) {
			return true
		}
	}
	return false
}

// IsBlank reports whether s has no visible content after normalization.
func IsBlank(s string) bool {
	return Normalize(s) == ""
}
