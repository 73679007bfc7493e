package ordercode

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

func isInvisible(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\uFEFF':
		return true
	}
	return unicode.IsSpace(r) || unicode.IsControl(r)
}

// Normalize prepares a code for equality comparison: whitespace, control and
// zero-width characters are removed wherever they appear.
func Normalize(code string) string {
	out, _, err := transform.String(runes.Remove(runes.Predicate(isInvisible)), code)
	if err != nil {
		return strings.Join(strings.Fields(code), "")
	}
	return out
}

