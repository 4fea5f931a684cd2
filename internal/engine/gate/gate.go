// Package gate implements the Stage-1 binary decision: does the text contain
// any tracked fallacy at all.
package gate

import (
	"fmt"
	"slices"

	"github.com/crimson-sun/gatekeeper/internal/engine/classifier"
)

// DefaultPositive is the Stage-1 class name meaning "some fallacy present".
const DefaultPositive = "fallacy"

// Gate is the Stage-1 fallacy gate.
type Gate struct {
	model    classifier.Model
	positive string
}

// New creates a Gate over a binary model. positive names the class that
// means "fallacy present" and must be one of the model's two classes.
func New(m classifier.Model, positive string) (*Gate, error) {
	if positive == "" {
		positive = DefaultPositive
	}
	classes := m.Classes()
	if len(classes) != 2 {
		return nil, fmt.Errorf("gate: expected a binary model, got %d classes", len(classes))
	}
	if !slices.Contains(classes, positive) {
		return nil, fmt.Errorf("gate: positive class %q not in model classes %v", positive, classes)
	}
	return &Gate{model: m, positive: positive}, nil
}

// Width returns the feature width the gate model expects.
func (g *Gate) Width() int {
	return g.model.Width()
}

// Model returns the underlying stage model.
func (g *Gate) Model() classifier.Model {
	return g.model
}

// Decide reports whether vec is predicted to contain a fallacy, with the
// posterior of the predicted class. Uncalibrated models report
// classifier.SentinelConfidence.
func (g *Gate) Decide(vec []float64) (isFallacy bool, confidence float64, err error) {
	pred, err := g.model.Predict(vec)
	if err != nil {
		return false, 0, fmt.Errorf("gate: %w", err)
	}
	return pred.Label == g.positive, pred.Confidence, nil
}
