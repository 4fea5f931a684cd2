// Package segment splits passages into candidate sentences.
package segment

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMinWords is the word count a fragment must exceed to be kept.
const DefaultMinWords = 3

// Splitter cuts text after '.', '!' or '?' when followed by whitespace.
type Splitter struct {
	MinWords int
}

// New creates a Splitter. Zero keeps every non-empty fragment; a negative
// minWords uses DefaultMinWords.
func New(minWords int) *Splitter {
	if minWords < 0 {
		minWords = DefaultMinWords
	}
	return &Splitter{MinWords: minWords}
}

// Split returns the trimmed sentences of text that have more than MinWords
// words, in order. The terminating punctuation stays with its sentence.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var out []string
	keep := func(frag string) {
		frag = strings.TrimSpace(frag)
		if len(strings.Fields(frag)) > s.MinWords {
			out = append(out, frag)
		}
	}

	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next, _ := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsSpace(next) {
			continue
		}
		keep(text[start:i])
		for i < len(text) {
			r, size := utf8.DecodeRuneInString(text[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += size
		}
		start = i
	}
	keep(text[start:])
	return out
}

// Split is New(DefaultMinWords).Split(text).
func Split(text string) []string {
	return New(DefaultMinWords).Split(text)
}
