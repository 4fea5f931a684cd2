package rules

import (
	"github.com/crimson-sun/gatekeeper/internal/engine/composer"
	"github.com/crimson-sun/gatekeeper/internal/model"
)

// Engine exposes the detector at the same boundary as the statistical
// pipeline.
type Engine struct {
	detector *Detector
	composer *composer.Composer
	warning  string
}

// NewEngine creates a rules Engine. warning, when set, is attached to every
// result (e.g. to report that trained models were unavailable).
func NewEngine(d *Detector, c *composer.Composer, warning string) *Engine {
	return &Engine{detector: d, composer: c, warning: warning}
}

// Classify reports the first hit in table order as the result label with
// confidence 0, and every hit in Matches.
func (e *Engine) Classify(text string) model.Result {
	matches := e.detector.Detect(text)

	label, _ := model.ParseLabel(matches[0].Fallacy)
	res := e.composer.Compose(text, label, 0)
	res.Mode = model.ModeRules
	res.Matches = matches
	res.Warning = e.warning
	return res
}

// ClassifyBatch classifies each text independently.
func (e *Engine) ClassifyBatch(texts []string) []model.Result {
	results := make([]model.Result, len(texts))
	for i, t := range texts {
		results[i] = e.Classify(t)
	}
	return results
}
