// Package rules is the single-stage regular-expression detector used when no
// trained model is available.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/gatekeeper/internal/engine/taxonomy"
	"github.com/crimson-sun/gatekeeper/internal/model"
)

//go:embed default.yaml
var defaultYAML []byte

// Match is one detector hit.
type Match = model.RuleMatch

type table struct {
	Rules []struct {
		Label    string   `yaml:"label"`
		Patterns []string `yaml:"patterns"`
	} `yaml:"rules"`
}

type rule struct {
	label    model.Label
	patterns []*regexp.Regexp
}

// Detector matches text against an ordered table of labels, each with an
// ordered pattern list. It is immutable and safe for concurrent use.
type Detector struct {
	rules []rule
	tax   *taxonomy.Taxonomy
}

// Default returns a detector over the built-in pattern table.
func Default(tax *taxonomy.Taxonomy) *Detector {
	d, err := Parse(defaultYAML, tax)
	if err != nil {
		panic(fmt.Sprintf("rules: embedded default.yaml: %v", err))
	}
	return d
}

// Load reads a pattern table from a YAML file.
func Load(path string, tax *taxonomy.Taxonomy) (*Detector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rules: %w", err)
	}
	return Parse(data, tax)
}

// Parse compiles a YAML pattern table. Explanations and prompts for each
// match come from tax (the built-in table when nil).
func Parse(data []byte, tax *taxonomy.Taxonomy) (*Detector, error) {
	if tax == nil {
		tax = taxonomy.Default()
	}
	var tbl table
	if err := yaml.Unmarshal(data, &tbl); err != nil {
		return nil, fmt.Errorf("rules: parse: %w", err)
	}

	d := &Detector{tax: tax}
	seen := make(map[model.Label]bool)
	for _, r := range tbl.Rules {
		l, ok := model.ParseLabel(r.Label)
		if !ok || !l.IsFallacy() {
			return nil, fmt.Errorf("rules: %q is not a fallacy label", r.Label)
		}
		if seen[l] {
			return nil, fmt.Errorf("rules: duplicate label %q", l)
		}
		seen[l] = true

		compiled := rule{label: l}
		for _, p := range r.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("rules: %s: %w", l, err)
			}
			compiled.patterns = append(compiled.patterns, re)
		}
		d.rules = append(d.rules, compiled)
	}
	return d, nil
}

// Detect returns at most one match per label, in table order. When nothing
// matches the result is a single "no fallacy" entry with an empty phrase.
func (d *Detector) Detect(text string) []Match {
	text = Fold(text)

	var matches []Match
	for _, r := range d.rules {
		for _, re := range r.patterns {
			loc := re.FindStringIndex(text)
			if loc == nil {
				continue
			}
			matches = append(matches, d.match(r.label, text[loc[0]:loc[1]]))
			break
		}
	}
	if len(matches) == 0 {
		matches = append(matches, d.match(model.NoFallacy, ""))
	}
	return matches
}

func (d *Detector) match(l model.Label, phrase string) Match {
	_, md := d.tax.Resolve(l)
	return Match{
		Fallacy:       l.Display(),
		MatchedPhrase: phrase,
		Explanation:   md.Explanation,
		Prompt:        md.Prompt,
	}
}

var apostrophes = runes.Map(func(r rune) rune {
	switch r {
	case '’', '‘', 'ʼ', '′':
		return '\''
	}
	return r
})

// Fold lower-cases text and folds typographic apostrophes to ASCII.
func Fold(text string) string {
	folded, _, err := transform.String(apostrophes, strings.ToLower(text))
	if err != nil {
		return strings.ToLower(text)
	}
	return folded
}
