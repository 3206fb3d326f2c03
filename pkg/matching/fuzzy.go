package matching

import (
	"math"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"
)

// Match is a target string with its similarity score in [0,100].
type Match struct {
	Target string `json:"target"`
	Score  int    `json:"score"`
}

// Scorer scores one candidate against every target.
type Scorer interface {
	BestMatches(candidate string, targets []string) []Match
}

// FuzzyMatcher scores strings with partial-substring similarity.
type FuzzyMatcher struct{}

// NewFuzzyMatcher returns the default scorer used by the auto-mapper.
func NewFuzzyMatcher() *FuzzyMatcher {
	return &FuzzyMatcher{}
}

// Score returns PartialRatio of the two raw strings.
func (f *FuzzyMatcher) Score(candidate, target string) int {
	return PartialRatio(candidate, target)
}

// BestMatches scores candidate against every target, in target order.
// Duplicate targets are scored independently and nothing is pruned.
// Both sides pass through Preprocess first.
func (f *FuzzyMatcher) BestMatches(candidate string, targets []string) []Match {
	query := Preprocess(candidate)
	matches := make([]Match, len(targets))
	for i, target := range targets {
		matches[i] = Match{
			Target: target,
			Score:  PartialRatio(query, Preprocess(target)),
		}
	}
	return matches
}

// Preprocess replaces every rune that is not a letter, digit or underscore
// with a space, lower-cases the result and trims it.
func Preprocess(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			return r
		}
		return ' '
	}, s)
	return strings.TrimSpace(strings.ToLower(mapped))
}

// PartialRatio returns how well the shorter string aligns with its best
// matching window inside the longer one, as a percentage.
//
// For every matching block of the two strings, a window of the shorter
// string's length is cut from the longer string at the block's alignment and
// compared as a whole. The best window ratio wins; a ratio above 0.995 counts
// as a perfect match. Equal strings score 100, an empty string otherwise 0.
func PartialRatio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}

	shorter, longer := splitRunes(a), splitRunes(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	best := 0.0
	for _, block := range difflib.NewMatcher(shorter, longer).GetMatchingBlocks() {
		start := block.B - block.A
		if start < 0 {
			start = 0
		}
		end := min(start+len(shorter), len(longer))
		if start > end {
			start = end
		}

		ratio := difflib.NewMatcher(shorter, longer[start:end]).Ratio()
		if ratio > 0.995 {
			return 100
		}
		best = max(best, ratio)
	}

	return int(math.RoundToEven(100 * best))
}

// splitRunes turns a string into one element per code point, the unit the
// sequence matcher compares.
func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

var _ Scorer = (*FuzzyMatcher)(nil)
