// Package normalize canonicalizes raw input text into the form every feature
// space is fitted on.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// urlPattern matches a scheme or www. prefix followed by the maximal run of
// non-whitespace characters. It must run before the alphabetic filter, which
// would otherwise remove the ":" and "." anchors.
var urlPattern = regexp.MustCompile(`(?:https?://|ftp://|www\.)\S*`)

// Normalize lower-cases text, strips URLs, deletes everything outside a-z
// and whitespace, and collapses whitespace. Normalize(Normalize(s)) ==
// Normalize(s) for every s.
func Normalize(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	// Compose first so a decomposed "é" is deleted as one rune instead of
	// leaving its base letter behind.
	text = norm.NFC.String(text)
	text = strings.ToLower(text)
	text = urlPattern.ReplaceAllString(text, " ")

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
