package features

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// VocabOptions carries the fitted vectorizer settings that travel with a
// vocabulary.
type VocabOptions struct {
	NgramMin    int
	NgramMax    int
	SublinearTF bool
	NormalizeL2 bool
	StopWords   []string
}

// Vocabulary is a fitted lexical feature space: n-gram terms mapped to
// column indices, with one idf weight per column. Immutable after load.
type Vocabulary struct {
	termToID  map[string]int
	idToTerm  []string
	idf       []float64
	stopWords map[string]struct{}

	ngramMin    int
	ngramMax    int
	sublinearTF bool
	normalizeL2 bool
}

// LoadVocabulary reads a vocabulary TSV where each non-empty line is
// "term<TAB>idf" and terms take consecutive column indices in file order.
func LoadVocabulary(path string, opts VocabOptions) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: %w", err)
	}
	defer f.Close()

	var terms []string
	var idf []float64

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}
		term, weight, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("vocab: %s:%d: expected term<TAB>idf", path, line)
		}
		w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
		if err != nil {
			return nil, fmt.Errorf("vocab: %s:%d: bad idf %q: %w", path, line, weight, err)
		}
		terms = append(terms, term)
		idf = append(idf, w)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vocab: read error: %w", err)
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("vocab: file is empty: %s", path)
	}
	return NewVocabulary(terms, idf, opts)
}

// NewVocabulary builds a vocabulary from parallel term and idf slices. Term
// i occupies column i.
func NewVocabulary(terms []string, idf []float64, opts VocabOptions) (*Vocabulary, error) {
	if len(terms) != len(idf) {
		return nil, fmt.Errorf("vocab: %d terms but %d idf weights", len(terms), len(idf))
	}
	if opts.NgramMin <= 0 {
		opts.NgramMin = 1
	}
	if opts.NgramMax < opts.NgramMin {
		opts.NgramMax = opts.NgramMin
	}

	v := &Vocabulary{
		termToID:    make(map[string]int, len(terms)),
		idToTerm:    append([]string(nil), terms...),
		idf:         append([]float64(nil), idf...),
		ngramMin:    opts.NgramMin,
		ngramMax:    opts.NgramMax,
		sublinearTF: opts.SublinearTF,
		normalizeL2: opts.NormalizeL2,
	}
	for i, term := range terms {
		if _, dup := v.termToID[term]; dup {
			return nil, fmt.Errorf("vocab: duplicate term %q", term)
		}
		v.termToID[term] = i
	}
	if len(opts.StopWords) > 0 {
		v.stopWords = make(map[string]struct{}, len(opts.StopWords))
		for _, w := range opts.StopWords {
			v.stopWords[w] = struct{}{}
		}
	}
	return v, nil
}

// lookup returns the column index of term.
func (v *Vocabulary) lookup(term string) (int, bool) {
	id, ok := v.termToID[term]
	return id, ok
}

// Size returns the number of lexical columns.
func (v *Vocabulary) Size() int {
	return len(v.idToTerm)
}

// Term returns the term at column i.
func (v *Vocabulary) Term(i int) string {
	return v.idToTerm[i]
}

func (v *Vocabulary) isStopWord(tok string) bool {
	_, ok := v.stopWords[tok]
	return ok
}
