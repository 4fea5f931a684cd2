// Package composer turns a (label, confidence) pair into the user-facing
// result record.
package composer

import (
	"math"

	"github.com/crimson-sun/gatekeeper/internal/engine/taxonomy"
	"github.com/crimson-sun/gatekeeper/internal/model"
)

// Composer attaches taxonomy metadata to classification outcomes.
type Composer struct {
	tax *taxonomy.Taxonomy
}

// New creates a Composer over tax. A nil tax uses the built-in table.
func New(tax *taxonomy.Taxonomy) *Composer {
	if tax == nil {
		tax = taxonomy.Default()
	}
	return &Composer{tax: tax}
}

// Taxonomy returns the metadata table in use.
func (c *Composer) Taxonomy() *taxonomy.Taxonomy {
	return c.tax
}

// Compose builds the result for sentence. Labels without metadata render as
// no_fallacy. Confidence is rounded to two decimals here and nowhere else.
func (c *Composer) Compose(sentence string, label model.Label, confidence float64) model.Result {
	label, md := c.tax.Resolve(label)
	return model.Result{
		Sentence:    sentence,
		Fallacy:     label,
		Confidence:  Round(confidence),
		Title:       md.Title,
		Explanation: md.Explanation,
		Prompt:      md.Prompt,
		Mode:        model.ModeModel,
	}
}

// Empty is the result for blank input.
func (c *Composer) Empty(sentence string) model.Result {
	return c.Compose(sentence, model.NoFallacy, 0)
}

// Round rounds to two decimal places, halves away from zero.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}
