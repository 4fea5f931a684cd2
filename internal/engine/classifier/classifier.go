package classifier

import (
	"log/slog"

	"github.com/crimson-sun/gatekeeper/internal/model"
)

// DefaultThreshold is the default Stage-2 confidence floor.
const DefaultThreshold = 0.55

// Result holds the outcome of classifying a single feature vector.
type Result struct {
	Label      model.Label
	Confidence float64 // unrounded
}

// Classifier is the Stage-2 fallacy classifier. It names the fallacy and
// vetoes any prediction whose confidence falls below Threshold.
type Classifier struct {
	model     Model
	Threshold float64
	logger    *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger sets the logger used for unknown-label warnings. Nil keeps
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a Classifier over a multi-class model with the given
// confidence floor.
func New(m Model, threshold float64, opts ...Option) *Classifier {
	c := &Classifier{model: m, Threshold: threshold, logger: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Width returns the feature width the underlying model expects.
func (c *Classifier) Width() int {
	return c.model.Width()
}

// Model returns the underlying stage model.
func (c *Classifier) Model() Model {
	return c.model
}

// Classify scores vec. Labels outside the enumeration, a literal no_fallacy
// and any confidence below Threshold all yield model.NoFallacy; the
// confidence is passed through unrounded in every case.
func (c *Classifier) Classify(vec []float64) (Result, error) {
	pred, err := c.model.Predict(vec)
	if err != nil {
		return Result{}, err
	}

	res := Result{Label: model.NoFallacy, Confidence: pred.Confidence}

	label, ok := model.ParseLabel(pred.Label)
	if !ok {
		c.logger.Warn("stage-2 returned unknown label", "label", pred.Label, "confidence", pred.Confidence)
		return res, nil
	}
	if label == model.NoFallacy || pred.Confidence < c.Threshold {
		return res, nil
	}
	res.Label = label
	return res, nil
}
