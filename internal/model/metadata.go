package model

// Metadata is the human-readable record attached to a label.
type Metadata struct {
	Title       string `json:"title" yaml:"title"`
	Explanation string `json:"explanation" yaml:"explanation"`
	Prompt      string `json:"prompt" yaml:"prompt"`
}
