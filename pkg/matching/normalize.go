package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize canonicalizes a field or attribute name for comparison:
//  1. NFKD decompose and drop combining marks ("Não" -> "Nao")
//  2. lower-case
//  3. remove underscores
//  4. trim surrounding whitespace
//
// Names that normalize to the same string are treated as the same token.
func Normalize(name string) string {
	s := stripDiacritics(name)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "_", "")
	return strings.TrimSpace(s)
}

// stripDiacritics removes combining marks after compatibility decomposition.
func stripDiacritics(s string) string {
	decomposed := norm.NFKD.String(s)
	var result strings.Builder
	result.Grow(len(decomposed))

	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}
