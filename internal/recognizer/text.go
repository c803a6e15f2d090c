package recognizer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// CleanText canonicalizes one recognized fragment: NFC composition (Hangul
// jamo sequences become syllables), full-width forms folded to their narrow
// equivalents, and runs of whitespace collapsed to one space.
func CleanText(s string) string {
	s = norm.NFC.String(s)
	s = width.Narrow.String(s)
	return strings.Join(strings.Fields(s), " ")
}
