package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/crimson-sun/gatekeeper/internal/engine/classifier"
	"github.com/crimson-sun/gatekeeper/internal/engine/features"
)

// Stage is a loaded stage: its manifest, feature builder and model.
type Stage struct {
	Manifest *Manifest
	Builder  *features.Builder
	Model    classifier.Model
}

// Set holds both stages of a pipeline.
type Set struct {
	Stage1 *Stage
	Stage2 *Stage
}

// ManifestPath returns the manifest location for stage n in dir.
func ManifestPath(dir string, n int) string {
	return filepath.Join(dir, fmt.Sprintf("stage%d.json", n))
}

// Available reports whether both stage manifests exist in dir.
func Available(dir string) bool {
	for n := 1; n <= 2; n++ {
		if _, err := os.Stat(ManifestPath(dir, n)); err != nil {
			return false
		}
	}
	return true
}

// Load reads and validates both stages from dir. Missing files yield
// ErrModelUnavailable; width or schema disagreements yield
// ErrFeatureSchemaMismatch.
func Load(dir string) (*Set, error) {
	s1, err := LoadStage(dir, 1)
	if err != nil {
		return nil, err
	}
	s2, err := LoadStage(dir, 2)
	if err != nil {
		s1.Close()
		return nil, err
	}
	return &Set{Stage1: s1, Stage2: s2}, nil
}

// LoadStage reads and validates stage n from dir.
func LoadStage(dir string, n int) (*Stage, error) {
	path := ManifestPath(dir, n)
	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}

	if !slices.Equal(m.ManualFeatures, features.ManualSchema()) {
		return nil, fmt.Errorf("artifact: stage %d: %w: manual features %v, builder has %v",
			n, ErrFeatureSchemaMismatch, m.ManualFeatures, features.ManualSchema())
	}

	vocabPath := filepath.Join(dir, m.Vocabulary)
	if _, err := os.Stat(vocabPath); err != nil {
		return nil, missing(vocabPath, err)
	}
	vocab, err := features.LoadVocabulary(vocabPath, features.VocabOptions{
		NgramMin:    m.NgramMin,
		NgramMax:    m.NgramMax,
		SublinearTF: m.SublinearTF,
		NormalizeL2: m.normalizeL2(),
		StopWords:   m.StopWords,
	})
	if err != nil {
		return nil, fmt.Errorf("artifact: stage %d: %w", n, err)
	}
	builder := features.NewBuilder(vocab)

	mdl, err := loadModel(dir, m)
	if err != nil {
		return nil, fmt.Errorf("artifact: stage %d: %w", n, err)
	}

	if mdl.Width() != builder.Width() {
		closeModel(mdl)
		return nil, fmt.Errorf("artifact: stage %d: %w: vocabulary %d + manual %d = %d, model expects %d",
			n, ErrFeatureSchemaMismatch, builder.LexicalWidth(), len(features.ManualCues), builder.Width(), mdl.Width())
	}
	return &Stage{Manifest: m, Builder: builder, Model: mdl}, nil
}

func loadModel(dir string, m *Manifest) (classifier.Model, error) {
	switch m.Kind {
	case classifier.KindONNX:
		path := filepath.Join(dir, m.ONNXModel)
		if _, err := os.Stat(path); err != nil {
			return nil, missing(path, err)
		}
		return classifier.LoadONNX(path, m.ONNXOutput, m.Classes, m.Probabilities)
	default:
		path := filepath.Join(dir, m.Weights)
		if _, err := os.Stat(path); err != nil {
			return nil, missing(path, err)
		}
		return classifier.LoadLinear(path, m.Kind, m.Classes, m.Calibration)
	}
}

func closeModel(m classifier.Model) error {
	if c, ok := m.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Close releases any runtime resources held by the stage model.
func (s *Stage) Close() error {
	return closeModel(s.Model)
}

// Close releases both stages.
func (s *Set) Close() error {
	return errors.Join(s.Stage1.Close(), s.Stage2.Close())
}
