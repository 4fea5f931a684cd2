// Package features turns normalized text into fixed-width vectors: TF-IDF
// n-gram weights over a fitted vocabulary followed by the manual cues.
package features

import "math"

// Builder produces feature vectors for one fitted feature space. It holds no
// mutable state and is safe for concurrent use.
type Builder struct {
	vocab *Vocabulary
}

// NewBuilder creates a Builder over the given vocabulary.
func NewBuilder(v *Vocabulary) *Builder {
	return &Builder{vocab: v}
}

// Width returns the vector length: lexical columns plus manual cues.
func (b *Builder) Width() int {
	return b.vocab.Size() + len(ManualCues)
}

// LexicalWidth returns the number of lexical columns.
func (b *Builder) LexicalWidth() int {
	return b.vocab.Size()
}

// Vector builds the feature vector for one normalized text. Callers must pass
// text that has already been through normalize.Normalize. Out-of-vocabulary
// n-grams contribute nothing.
func (b *Builder) Vector(normalized string) []float64 {
	v := b.vocab
	vec := make([]float64, b.Width())
	lex := vec[:v.Size()]

	for _, gram := range ngrams(v.tokenize(normalized), v.ngramMin, v.ngramMax) {
		if id, ok := v.lookup(gram); ok {
			lex[id]++
		}
	}

	var sumSq float64
	for i, tf := range lex {
		if tf == 0 {
			continue
		}
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		w := tf * v.idf[i]
		lex[i] = w
		sumSq += w * w
	}
	if v.normalizeL2 && sumSq > 0 {
		inv := 1 / math.Sqrt(sumSq)
		for i := range lex {
			lex[i] *= inv
		}
	}

	manualVector(normalized, vec[v.Size():])
	return vec
}

// Build returns one vector per normalized text.
func (b *Builder) Build(normalized []string) [][]float64 {
	out := make([][]float64, len(normalized))
	for i, t := range normalized {
		out[i] = b.Vector(t)
	}
	return out
}
