// Package ticker provides symbol validation and risk heuristics.
package ticker

import (
	"regexp"
	"strings"
)

// symbolPattern is the structural grammar for a listed US equity symbol:
// 1-5 uppercase letters, optionally a dot and a single class-share letter.
var symbolPattern = regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z])?$`)

// Normalize trims whitespace and uppercases a raw symbol.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// IsValid reports whether a symbol passes the structural grammar and the
// requested suffix exclusions. The ".F" suffix marks foreign listings,
// ".Y" marks ADRs and ".Q" marks companies in bankruptcy proceedings.
func IsValid(symbol string, excludeForeign, excludeADR, excludeDistressed bool) bool {
	s := Normalize(symbol)

	if !symbolPattern.MatchString(s) {
		return false
	}
	if excludeForeign && strings.HasSuffix(s, ".F") {
		return false
	}
	if excludeADR && strings.HasSuffix(s, ".Y") {
		return false
	}
	if excludeDistressed && strings.HasSuffix(s, ".Q") {
		return false
	}
	return true
}

// IsProbablyOTC flags suffix-less 5-letter symbols whose last letter is
// one of F, Q, Y or Z, a pattern common to OTC and pink-sheet listings
// that never carry the formal dot-suffix grammar. This is a heuristic,
// independent of the structural check in IsValid.
func IsProbablyOTC(symbol string) bool {
	s := Normalize(symbol)

	if len(s) != 5 || strings.Contains(s, ".") {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	switch s[4] {
	case 'F', 'Q', 'Y', 'Z':
		return true
	}
	return false
}
