package ticker

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: for any string, IsValid with no suffix exclusions agrees with
// the grammar ^[A-Z]{1,5}(\.[A-Z])?$ applied to the normalized symbol.

var grammar = regexp.MustCompile(`^[A-Z]{1,5}(\.[A-Z])?$`)

func TestProperty_ValidationMatchesGrammar(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("arbitrary strings", prop.ForAll(
		func(s string) bool {
			return IsValid(s, false, false, false) == grammar.MatchString(Normalize(s))
		},
		gen.AnyString(),
	))

	properties.Property("well-formed symbols always validate", prop.ForAll(
		func(base string, suffix rune) bool {
			symbol := base + "." + string(suffix)
			return IsValid(symbol, false, false, false)
		},
		gen.RegexMatch(`^[A-Z]{1,5}$`),
		gen.RuneRange('A', 'Z'),
	))

	properties.TestingRun(t)
}

func TestProperty_OTCHeuristicShape(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	// Any flagged symbol is exactly 5 letters, has no dot, and ends in
	// one of the OTC marker letters.
	properties.Property("flagged symbols have OTC shape", prop.ForAll(
		func(s string) bool {
			if !IsProbablyOTC(s) {
				return true
			}
			n := Normalize(s)
			return len(n) == 5 &&
				!strings.Contains(n, ".") &&
				strings.ContainsRune("FQYZ", rune(n[4]))
		},
		gen.AnyString(),
	))

	properties.Property("five-letter OTC-suffixed symbols are flagged", prop.ForAll(
		func(base string, marker rune) bool {
			return IsProbablyOTC(base + string(marker))
		},
		gen.RegexMatch(`^[A-Z]{4}$`),
		gen.OneConstOf('F', 'Q', 'Y', 'Z'),
	))

	properties.TestingRun(t)
}
