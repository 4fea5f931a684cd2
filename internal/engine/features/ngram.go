package features

import "strings"

// tokenize splits normalized text into tokens of two or more letters,
// mirroring the default token pattern the vocabularies were fitted with.
// Stop words are removed before n-grams are formed.
func (v *Vocabulary) tokenize(normalized string) []string {
	fields := strings.Fields(normalized)
	var tokens []string
	for _, f := range fields {
		if len(f) < 2 || v.isStopWord(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// ngrams returns every contiguous n-gram of tokens for n in [min, max],
// joined by single spaces, in order of n then position.
func ngrams(tokens []string, lo, hi int) []string {
	var out []string
	for n := lo; n <= hi; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			out = append(out, strings.Join(tokens[i:i+n], " "))
		}
	}
	return out
}
