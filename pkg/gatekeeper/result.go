package gatekeeper

// Result is the classification of one sentence.
// This is the stable public type; internal representations may evolve
// independently without breaking consumers.
type Result struct {
	Sentence    string  `json:"sentence"`
	Fallacy     string  `json:"fallacy"`    // ad_hominem, strawman, slippery_slope, false_dilemma, no_fallacy
	Confidence  float64 `json:"confidence"` // two decimals; 0 in rules mode
	Title       string  `json:"title"`
	Explanation string  `json:"explanation,omitempty"`
	Prompt      string  `json:"prompt,omitempty"`
	Mode        string  `json:"mode"` // "model" or "rules"
	Matches     []Match `json:"matches,omitempty"`
	Warning     string  `json:"warning,omitempty"`
}

// Match is one rule hit, reported in rules mode.
type Match struct {
	Fallacy       string `json:"fallacy"` // space-separated, e.g. "false dilemma"
	MatchedPhrase string `json:"matched_phrase"`
	Explanation   string `json:"explanation"`
	Prompt        string `json:"prompt"`
}

// IsFallacy reports whether the result names a fallacy.
func (r Result) IsFallacy() bool {
	return r.Fallacy != "" && r.Fallacy != "no_fallacy"
}
