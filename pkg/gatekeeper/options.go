package gatekeeper

import "log/slog"

type options struct {
	modelDir            string
	confidenceThreshold float64
	fallback            bool
	metadataPath        string
	rulesPath           string
	minWords            int
	languageGuard       bool
	logger              *slog.Logger
}

// Option configures a Gatekeeper instance.
type Option func(*options)

// WithModelDir sets the directory containing stage1.json, stage2.json and
// the files they reference. Default: "models".
func WithModelDir(dir string) Option {
	return func(o *options) {
		o.modelDir = dir
	}
}

// WithConfidenceThreshold sets the minimum stage-2 probability for naming a
// fallacy. Below it, results are no_fallacy. Default: 0.55.
func WithConfidenceThreshold(t float64) Option {
	return func(o *options) {
		o.confidenceThreshold = t
	}
}

// WithFallback controls whether missing models degrade to rule-based
// detection. Default: true.
func WithFallback(enabled bool) Option {
	return func(o *options) {
		o.fallback = enabled
	}
}

// WithMetadataPath overlays titles, explanations and prompts from a YAML
// file onto the built-in table.
func WithMetadataPath(path string) Option {
	return func(o *options) {
		o.metadataPath = path
	}
}

// WithRulesPath replaces the built-in rule table with a YAML file.
func WithRulesPath(path string) Option {
	return func(o *options) {
		o.rulesPath = path
	}
}

// WithMinWords sets how many words a sentence needs to exceed to be kept by
// ClassifyPassage. Zero keeps every fragment. Default: 3.
func WithMinWords(n int) Option {
	return func(o *options) {
		o.minWords = n
	}
}

// WithLanguageGuard skips sentences detected as a language other than
// English.
func WithLanguageGuard() Option {
	return func(o *options) {
		o.languageGuard = true
	}
}

// WithLogger sets the logger for load-time notices. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func defaultOptions() options {
	return options{
		modelDir:            "models",
		confidenceThreshold: 0.55,
		fallback:            true,
		minWords:            3,
	}
}
