// Package language rejects text the English-only vocabularies cannot score.
package language

import (
	"github.com/pemistahl/lingua-go"
)

// DefaultLanguages are the candidates the guard distinguishes English from.
var DefaultLanguages = []lingua.Language{
	lingua.English,
	lingua.French,
	lingua.German,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Dutch,
}

// minRelativeDistance keeps ambiguous short inputs undetermined, which the
// guard lets through.
const minRelativeDistance = 0.1

// Guard reports whether text is English. It is safe for concurrent use.
type Guard struct {
	detector lingua.LanguageDetector
}

// New builds a guard over langs, or DefaultLanguages when none are given.
// English is always a candidate.
func New(langs ...lingua.Language) *Guard {
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	candidates := []lingua.Language{lingua.English}
	for _, l := range langs {
		if l != lingua.English {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) < 2 {
		candidates = DefaultLanguages
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(candidates...).
		WithMinimumRelativeDistance(minRelativeDistance).
		Build()
	return &Guard{detector: detector}
}

// Check returns the detected language name and whether the text may be
// classified. Text whose language cannot be determined is allowed.
func (g *Guard) Check(text string) (string, bool) {
	lang, ok := g.detector.DetectLanguageOf(text)
	if !ok {
		return "", true
	}
	return lang.String(), lang == lingua.English
}
