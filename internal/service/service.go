// Package service assembles the classification stack from configuration:
// metadata, rule table, trained artifacts and the rule-based fallback.
package service

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/crimson-sun/gatekeeper/internal/config"
	"github.com/crimson-sun/gatekeeper/internal/engine"
	"github.com/crimson-sun/gatekeeper/internal/engine/artifact"
	"github.com/crimson-sun/gatekeeper/internal/engine/composer"
	"github.com/crimson-sun/gatekeeper/internal/engine/language"
	"github.com/crimson-sun/gatekeeper/internal/engine/rules"
	"github.com/crimson-sun/gatekeeper/internal/engine/segment"
	"github.com/crimson-sun/gatekeeper/internal/engine/taxonomy"
	"github.com/crimson-sun/gatekeeper/internal/model"
)

// Service classifies text with the trained pipeline, or with the rule table
// when the pipeline is unavailable. Safe for concurrent use.
type Service struct {
	engine    *engine.Engine // nil in rules mode
	rules     *rules.Engine
	detector  *rules.Detector
	artifacts *artifact.Set
	splitter  *segment.Splitter
	composer  *composer.Composer
	mode      string
	warning   string
}

// Entry pairs a label with its metadata.
type Entry struct {
	Label model.Label
	model.Metadata
}

// UnavailableWarning is the warning attached to results when no trained
// models could be loaded.
func UnavailableWarning(dir string) string {
	return fmt.Sprintf("models not found in %s; train stage 1 and stage 2 first", dir)
}

// New loads everything cfg names. Missing artifacts degrade to rules mode
// when cfg.Fallback is set and fail with artifact.ErrModelUnavailable
// otherwise. Any other load error is returned as is.
func New(cfg config.EngineConfig, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	tax := taxonomy.Default()
	if cfg.MetadataPath != "" {
		t, err := taxonomy.Load(cfg.MetadataPath)
		if err != nil {
			return nil, fmt.Errorf("service: %w", err)
		}
		tax = t
	}
	cmp := composer.New(tax)

	det := rules.Default(tax)
	if cfg.RulesPath != "" {
		d, err := rules.Load(cfg.RulesPath, tax)
		if err != nil {
			return nil, fmt.Errorf("service: %w", err)
		}
		det = d
	}

	s := &Service{
		detector: det,
		splitter: segment.New(cfg.MinWords),
		composer: cmp,
	}

	set, err := artifact.Load(cfg.ModelDir)
	switch {
	case err == nil:
	case errors.Is(err, artifact.ErrModelUnavailable) && cfg.Fallback:
		logger.Warn("trained models unavailable, using rule-based detection", "dir", cfg.ModelDir, "error", err)
		s.mode = model.ModeRules
		s.warning = UnavailableWarning(cfg.ModelDir)
		s.rules = rules.NewEngine(det, cmp, s.warning)
		return s, nil
	default:
		return nil, fmt.Errorf("service: %w", err)
	}

	opts := []engine.Option{engine.WithLogger(logger)}
	if cfg.LanguageGuard {
		opts = append(opts, engine.WithLanguageGuard(language.New()))
	}
	eng, err := engine.FromArtifacts(set, cfg.ConfidenceThreshold, cmp, opts...)
	if err != nil {
		set.Close()
		return nil, fmt.Errorf("service: %w", err)
	}

	s.engine = eng
	s.artifacts = set
	s.mode = model.ModeModel
	s.rules = rules.NewEngine(det, cmp, "")
	logger.Info("models loaded", "dir", cfg.ModelDir,
		"stage1", set.Stage1.Manifest.Kind, "stage2", set.Stage2.Manifest.Kind,
		"threshold", cfg.ConfidenceThreshold)
	return s, nil
}

// Mode reports which classifier answers Classify: model.ModeModel or
// model.ModeRules.
func (s *Service) Mode() string {
	return s.mode
}

// Warning is the notice attached to every result, empty when models loaded.
func (s *Service) Warning() string {
	return s.warning
}

// Classify classifies one sentence.
func (s *Service) Classify(text string) (model.Result, error) {
	if s.engine == nil {
		return s.rules.Classify(text), nil
	}
	return s.engine.Classify(text)
}

// ClassifyBatch classifies each text independently.
func (s *Service) ClassifyBatch(texts []string) ([]model.Result, error) {
	if s.engine == nil {
		return s.rules.ClassifyBatch(texts), nil
	}
	return s.engine.ClassifyBatch(texts)
}

// ClassifyPassage splits text into sentences and classifies each one.
func (s *Service) ClassifyPassage(text string) ([]model.Result, error) {
	return s.ClassifyBatch(s.splitter.Split(text))
}

// Rules runs the rule table alone, whatever the mode.
func (s *Service) Rules(text string) model.Result {
	return s.rules.Classify(text)
}

// Split segments text with the configured minimum word count.
func (s *Service) Split(text string) []string {
	return s.splitter.Split(text)
}

// Splitter returns the sentence splitter in use.
func (s *Service) Splitter() *segment.Splitter {
	return s.splitter
}

// Empty is the no_fallacy record for text, carrying the service warning.
func (s *Service) Empty(text string) model.Result {
	res := s.composer.Empty(text)
	res.Warning = s.warning
	return res
}

// Metadata lists every label with its metadata, no_fallacy included.
func (s *Service) Metadata() []Entry {
	tax := s.composer.Taxonomy()
	labels := tax.Labels()
	entries := make([]Entry, 0, len(labels))
	for _, l := range labels {
		md, _ := tax.Lookup(l)
		entries = append(entries, Entry{Label: l, Metadata: md})
	}
	return entries
}

// Close releases model resources.
func (s *Service) Close() error {
	if s.artifacts == nil {
		return nil
	}
	return s.artifacts.Close()
}
