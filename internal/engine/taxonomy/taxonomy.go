// Package taxonomy owns the read-only fallacy metadata table: title,
// explanation and critical-thinking prompt per label.
package taxonomy

import (
	_ "embed"
	"fmt"
	"os"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/crimson-sun/gatekeeper/internal/model"
)

//go:embed default.yaml
var defaultYAML []byte

type document struct {
	Labels []entry `yaml:"labels"`
}

type entry struct {
	Label          string `yaml:"label"`
	model.Metadata `yaml:",inline"`
}

// Taxonomy maps every label to its metadata. It is never mutated after
// construction and is safe for concurrent use.
type Taxonomy struct {
	entries map[model.Label]model.Metadata
	order   []model.Label
}

// Default returns the built-in table.
func Default() *Taxonomy {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("taxonomy: embedded default.yaml: %v", err))
	}
	return t
}

// Load reads a YAML file and overlays its entries on the built-in table.
// Fields left empty in the file keep their default values.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("taxonomy: %w", err)
	}
	overlay, err := parseDocument(data)
	if err != nil {
		return nil, err
	}

	t := Default()
	for _, l := range overlay.order {
		md := overlay.entries[l]
		base := t.entries[l]
		if md.Title != "" {
			base.Title = md.Title
		}
		if md.Explanation != "" {
			base.Explanation = md.Explanation
		}
		if md.Prompt != "" {
			base.Prompt = md.Prompt
		}
		t.entries[l] = base
	}
	return t, nil
}

// Parse builds a complete table from YAML. The no_fallacy entry is required.
func Parse(data []byte) (*Taxonomy, error) {
	t, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	if _, ok := t.entries[model.NoFallacy]; !ok {
		return nil, fmt.Errorf("taxonomy: missing %s entry", model.NoFallacy)
	}
	return t, nil
}

func parseDocument(data []byte) (*Taxonomy, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("taxonomy: parse: %w", err)
	}

	titler := cases.Title(language.English)
	t := &Taxonomy{entries: make(map[model.Label]model.Metadata, len(doc.Labels))}
	for _, e := range doc.Labels {
		l, ok := model.ParseLabel(e.Label)
		if !ok {
			return nil, fmt.Errorf("taxonomy: unknown label %q", e.Label)
		}
		if _, dup := t.entries[l]; dup {
			return nil, fmt.Errorf("taxonomy: duplicate label %q", l)
		}
		md := e.Metadata
		if md.Title == "" {
			md.Title = titler.String(l.Display())
		}
		t.entries[l] = md
		t.order = append(t.order, l)
	}
	return t, nil
}

// Lookup returns the metadata for l.
func (t *Taxonomy) Lookup(l model.Label) (model.Metadata, bool) {
	md, ok := t.entries[l]
	return md, ok
}

// Resolve returns l and its metadata, or no_fallacy and its metadata when l
// has no entry.
func (t *Taxonomy) Resolve(l model.Label) (model.Label, model.Metadata) {
	if md, ok := t.entries[l]; ok {
		return l, md
	}
	return model.NoFallacy, t.entries[model.NoFallacy]
}

// Labels returns the labels in table order.
func (t *Taxonomy) Labels() []model.Label {
	return append([]model.Label(nil), t.order...)
}
