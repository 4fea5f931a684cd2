// Package engine wires the two-stage pipeline: normalize, build stage-1
// features, gate, build stage-2 features, classify, compose.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/crimson-sun/gatekeeper/internal/engine/artifact"
	"github.com/crimson-sun/gatekeeper/internal/engine/classifier"
	"github.com/crimson-sun/gatekeeper/internal/engine/composer"
	"github.com/crimson-sun/gatekeeper/internal/engine/features"
	"github.com/crimson-sun/gatekeeper/internal/engine/gate"
	"github.com/crimson-sun/gatekeeper/internal/engine/language"
	"github.com/crimson-sun/gatekeeper/internal/engine/normalize"
	"github.com/crimson-sun/gatekeeper/internal/model"
)

// Engine owns every stage of the pipeline. It is immutable after New and
// safe for concurrent use.
type Engine struct {
	stage1     *features.Builder
	gate       *gate.Gate
	stage2     *features.Builder
	classifier *classifier.Classifier
	composer   *composer.Composer
	guard      *language.Guard
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguageGuard rejects non-English input before any model runs.
func WithLanguageGuard(g *language.Guard) Option {
	return func(e *Engine) { e.guard = g }
}

// WithLogger sets the logger for stage warnings. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine from its stages. Each builder's width must match
// the model that consumes its vectors.
func New(b1 *features.Builder, g *gate.Gate, b2 *features.Builder, cls *classifier.Classifier, cmp *composer.Composer, opts ...Option) (*Engine, error) {
	var errs []error
	if b1.Width() != g.Width() {
		errs = append(errs, fmt.Errorf("stage 1: builder width %d, gate expects %d", b1.Width(), g.Width()))
	}
	if b2.Width() != cls.Width() {
		errs = append(errs, fmt.Errorf("stage 2: builder width %d, classifier expects %d", b2.Width(), cls.Width()))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("engine: %w: %w", artifact.ErrFeatureSchemaMismatch, err)
	}
	if cmp == nil {
		cmp = composer.New(nil)
	}

	e := &Engine{
		stage1:     b1,
		gate:       g,
		stage2:     b2,
		classifier: cls,
		composer:   cmp,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e, nil
}

// FromArtifacts creates an Engine over a loaded artifact set with the given
// Stage-2 confidence floor.
func FromArtifacts(set *artifact.Set, threshold float64, cmp *composer.Composer, opts ...Option) (*Engine, error) {
	g, err := gate.New(set.Stage1.Model, set.Stage1.Manifest.Positive)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	cfg := &Engine{logger: slog.Default()}
	for _, o := range opts {
		o(cfg)
	}
	if !set.Stage2.Model.Probabilistic() {
		cfg.logger.Warn("stage-2 model is uncalibrated, confidence threshold has no effect",
			"kind", set.Stage2.Manifest.Kind, "threshold", threshold)
	}

	cls := classifier.New(set.Stage2.Model, threshold, classifier.WithLogger(cfg.logger))
	return New(set.Stage1.Builder, g, set.Stage2.Builder, cls, cmp, opts...)
}

// Classify runs the pipeline on one sentence. Blank input returns the
// no_fallacy record with confidence 0 without touching a model. When the
// gate says no fallacy, Stage-2 is skipped and the gate's confidence is
// reported.
func (e *Engine) Classify(text string) (model.Result, error) {
	if strings.TrimSpace(text) == "" {
		return e.composer.Empty(text), nil
	}
	if e.guard != nil {
		if lang, ok := e.guard.Check(text); !ok {
			res := e.composer.Empty(text)
			res.Warning = fmt.Sprintf("unsupported language: %s", lang)
			return res, nil
		}
	}

	norm := normalize.Normalize(text)

	isFallacy, conf, err := e.gate.Decide(e.stage1.Vector(norm))
	if err != nil {
		return model.Result{}, fmt.Errorf("engine: %w", err)
	}
	if !isFallacy {
		return e.composer.Compose(text, model.NoFallacy, conf), nil
	}

	res, err := e.classifier.Classify(e.stage2.Vector(norm))
	if err != nil {
		return model.Result{}, fmt.Errorf("engine: stage 2: %w", err)
	}
	return e.composer.Compose(text, res.Label, res.Confidence), nil
}

// ClassifyBatch classifies each text independently. It stops at the first
// model error.
func (e *Engine) ClassifyBatch(texts []string) ([]model.Result, error) {
	results := make([]model.Result, 0, len(texts))
	for _, t := range texts {
		r, err := e.Classify(t)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}
