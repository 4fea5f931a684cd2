package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

//go:embed corpus.json
var corpusJSON []byte

//go:embed models
var models embed.FS

// CorpusEntry is a labeled sentence for classification validation.
type CorpusEntry struct {
	Text        string  `json:"text"`
	Rules       string  `json:"rules"`      // expected first rule-mode label
	Model       string  `json:"model"`      // expected label from the fixture models
	Confidence  float64 `json:"confidence"` // expected rounded confidence from the fixture models
	Description string  `json:"description"`
}

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}

// WriteModels copies the fixture model directory (a calibrated linear_svc
// gate and a logistic stage-2 over small vocabularies) into dir.
func WriteModels(dir string) error {
	return fs.WalkDir(models, "models", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := models.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(dir, filepath.Base(path)), data, 0644)
	})
}
