package model

// Mode names the classifier that produced a Result.
const (
	ModeModel = "model"
	ModeRules = "rules"
)

// Result is the classification of a single sentence.
type Result struct {
	Sentence    string      `json:"sentence"`
	Fallacy     Label       `json:"fallacy"`
	Confidence  float64     `json:"confidence"` // rounded to two decimals
	Title       string      `json:"title"`
	Explanation string      `json:"explanation,omitempty"`
	Prompt      string      `json:"prompt,omitempty"`
	Mode        string      `json:"mode,omitempty"`
	Matches     []RuleMatch `json:"matches,omitempty"` // rules mode only
	Warning     string      `json:"warning,omitempty"`
}

// RuleMatch is a single hit of the rule-based detector.
type RuleMatch struct {
	Fallacy       string `json:"fallacy"` // space-separated name, e.g. "ad hominem"
	MatchedPhrase string `json:"matched_phrase"`
	Explanation   string `json:"explanation"`
	Prompt        string `json:"prompt"`
}
