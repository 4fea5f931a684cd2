package gatekeeper

import (
	"fmt"
	"math"

	"github.com/crimson-sun/gatekeeper/internal/config"
	"github.com/crimson-sun/gatekeeper/internal/engine/artifact"
	"github.com/crimson-sun/gatekeeper/internal/model"
	"github.com/crimson-sun/gatekeeper/internal/service"
)

// ErrModelUnavailable is returned by New when trained artifacts are missing
// and fallback is disabled.
var ErrModelUnavailable = artifact.ErrModelUnavailable

// Gatekeeper is a logical-fallacy classifier.
// Safe for concurrent use.
type Gatekeeper struct {
	svc *service.Service
}

// New loads the trained artifacts and metadata. Loading reads every model
// file, so create once and reuse.
func New(opts ...Option) (*Gatekeeper, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if t := o.confidenceThreshold; math.IsNaN(t) || t < 0 || t > 1 {
		return nil, fmt.Errorf("gatekeeper: confidence threshold must be in [0, 1], got %v", o.confidenceThreshold)
	}

	svc, err := service.New(config.EngineConfig{
		ModelDir:            o.modelDir,
		ConfidenceThreshold: o.confidenceThreshold,
		Fallback:            o.fallback,
		MetadataPath:        o.metadataPath,
		RulesPath:           o.rulesPath,
		MinWords:            o.minWords,
		LanguageGuard:       o.languageGuard,
	}, o.logger)
	if err != nil {
		return nil, fmt.Errorf("gatekeeper: %w", err)
	}
	return &Gatekeeper{svc: svc}, nil
}

// Classify classifies a single sentence. Blank input yields no_fallacy
// with confidence 0.
func (g *Gatekeeper) Classify(text string) (Result, error) {
	r, err := g.svc.Classify(text)
	if err != nil {
		return Result{}, err
	}
	return fromModel(r), nil
}

// ClassifyBatch classifies each text independently.
func (g *Gatekeeper) ClassifyBatch(texts []string) ([]Result, error) {
	rs, err := g.svc.ClassifyBatch(texts)
	if err != nil {
		return nil, err
	}
	return fromModels(rs), nil
}

// ClassifyPassage splits text into sentences and classifies each one.
func (g *Gatekeeper) ClassifyPassage(text string) ([]Result, error) {
	rs, err := g.svc.ClassifyPassage(text)
	if err != nil {
		return nil, err
	}
	return fromModels(rs), nil
}

// Mode reports "model" when trained artifacts are in use and "rules" after
// a fallback.
func (g *Gatekeeper) Mode() string {
	return g.svc.Mode()
}

// Close releases model resources.
func (g *Gatekeeper) Close() error {
	return g.svc.Close()
}

func fromModels(rs []model.Result) []Result {
	out := make([]Result, len(rs))
	for i, r := range rs {
		out[i] = fromModel(r)
	}
	return out
}

// fromModel converts the internal result to the public Result type.
func fromModel(r model.Result) Result {
	res := Result{
		Sentence:    r.Sentence,
		Fallacy:     string(r.Fallacy),
		Confidence:  r.Confidence,
		Title:       r.Title,
		Explanation: r.Explanation,
		Prompt:      r.Prompt,
		Mode:        r.Mode,
		Warning:     r.Warning,
	}
	for _, m := range r.Matches {
		res.Matches = append(res.Matches, Match(m))
	}
	return res
}
