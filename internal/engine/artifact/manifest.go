// Package artifact locates, loads and validates the per-stage model
// artifacts a pipeline is built from.
package artifact

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/crimson-sun/gatekeeper/internal/engine/classifier"
)

// ManifestVersion is the only manifest version this package reads.
const ManifestVersion = 1

var (
	// ErrModelUnavailable means a required artifact file is missing.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrFeatureSchemaMismatch means a model's input width or manual
	// feature schema disagrees with the feature builder.
	ErrFeatureSchemaMismatch = errors.New("feature schema mismatch")
)

// Manifest describes one stage: the model kind, its class order, and the
// feature space it was fitted on. Paths are relative to the manifest.
type Manifest struct {
	Version        int               `json:"version"`
	Kind           classifier.Kind   `json:"kind"`
	Classes        []string          `json:"classes"`
	Positive       string            `json:"positive,omitempty"`
	Vocabulary     string            `json:"vocabulary"`
	Weights        string            `json:"weights,omitempty"`
	ONNXModel      string            `json:"onnx_model,omitempty"`
	ONNXOutput     string            `json:"onnx_output,omitempty"`
	Probabilities  bool              `json:"probabilities,omitempty"` // onnx output is a posterior
	SublinearTF    bool              `json:"sublinear_tf"`
	NgramMin       int               `json:"ngram_min"`
	NgramMax       int               `json:"ngram_max"`
	NormalizeL2    *bool             `json:"normalize_l2,omitempty"`
	StopWords      []string          `json:"stop_words,omitempty"`
	ManualFeatures []string          `json:"manual_features"`
	Calibration    *classifier.Platt `json:"calibration,omitempty"`
}

// ReadManifest parses and checks a manifest file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, missing(path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("artifact: %s: %w", path, err)
	}
	if err := m.check(); err != nil {
		return nil, fmt.Errorf("artifact: %s: %w", path, err)
	}
	return &m, nil
}

func (m *Manifest) check() error {
	var errs []error
	if m.Version != ManifestVersion {
		errs = append(errs, fmt.Errorf("unsupported manifest version %d", m.Version))
	}
	if len(m.Classes) < 2 {
		errs = append(errs, fmt.Errorf("need at least 2 classes, got %d", len(m.Classes)))
	}
	if m.Vocabulary == "" {
		errs = append(errs, errors.New("vocabulary path is required"))
	}
	switch m.Kind {
	case classifier.KindLogistic, classifier.KindLinearSVC:
		if m.Weights == "" {
			errs = append(errs, fmt.Errorf("%s model needs a weights path", m.Kind))
		}
	case classifier.KindONNX:
		if m.ONNXModel == "" {
			errs = append(errs, errors.New("onnx model needs an onnx_model path"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown model kind %q", m.Kind))
	}
	return errors.Join(errs...)
}

func (m *Manifest) normalizeL2() bool {
	return m.NormalizeL2 == nil || *m.NormalizeL2
}

func missing(path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("artifact: %w: %s", ErrModelUnavailable, path)
	}
	return fmt.Errorf("artifact: %w", err)
}
