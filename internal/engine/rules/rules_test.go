package rules

import (
	"testing"

	"github.com/crimson-sun/gatekeeper/internal/engine/composer"
	"github.com/crimson-sun/gatekeeper/internal/model"
)

func TestDetectScenarios(t *testing.T) {
	d := Default(nil)
	tests := []struct {
		text    string
		fallacy string
		phrase  bool
	}{
		{"You are an idiot, that's why you're wrong.", "ad hominem", true},
		{"Either we ban cars entirely or cities will collapse.", "false dilemma", true},
		{"The sky is blue today.", "no fallacy", false},
		{"So basically you’re saying we should do nothing?", "strawman", true},
		{"Before you know it, everyone will be doing it.", "slippery slope", true},
	}
	for _, tt := range tests {
		got := d.Detect(tt.text)
		if len(got) == 0 {
			t.Fatalf("Detect(%q) returned no matches", tt.text)
		}
		if got[0].Fallacy != tt.fallacy {
			t.Errorf("Detect(%q)[0].Fallacy = %q, want %q", tt.text, got[0].Fallacy, tt.fallacy)
		}
		if (got[0].MatchedPhrase != "") != tt.phrase {
			t.Errorf("Detect(%q)[0].MatchedPhrase = %q", tt.text, got[0].MatchedPhrase)
		}
		if got[0].Explanation == "" || got[0].Prompt == "" {
			t.Errorf("Detect(%q)[0] missing metadata: %+v", tt.text, got[0])
		}
	}
}

func TestDetectOneMatchPerLabel(t *testing.T) {
	d := Default(nil)
	// Three ad hominem patterns match; table order decides, not text position.
	got := d.Detect("Obviously you are a fool, as if you knew.")
	if len(got) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(got), got)
	}
	if got[0].MatchedPhrase != "you are a fool" {
		t.Errorf("MatchedPhrase = %q, want the second pattern's hit", got[0].MatchedPhrase)
	}
}

func TestDetectMultipleLabelsInTableOrder(t *testing.T) {
	d := Default(nil)
	got := d.Detect("Either you agree or you are an idiot.")
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2: %+v", len(got), got)
	}
	if got[0].Fallacy != "ad hominem" || got[1].Fallacy != "false dilemma" {
		t.Errorf("order = [%s, %s]", got[0].Fallacy, got[1].Fallacy)
	}
}

func TestFold(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"You’RE", "you're"},
		{"it‘s", "it's"},
		{"donʼt", "don't"},
		{"5′ tall", "5' tall"},
		{"café OK", "café ok"},
	}
	for _, tt := range tests {
		if got := Fold(tt.in); got != tt.want {
			t.Errorf("Fold(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := map[string]string{
		"not a fallacy": "rules:\n  - label: no_fallacy\n    patterns: [x]\n",
		"unknown":       "rules:\n  - label: red_herring\n    patterns: [x]\n",
		"duplicate":     "rules:\n  - label: strawman\n    patterns: [a]\n  - label: straw man\n    patterns: [b]\n",
		"bad regexp":    "rules:\n  - label: strawman\n    patterns: [\"(\"]\n",
	}
	for name, doc := range tests {
		if _, err := Parse([]byte(doc), nil); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestEngineClassify(t *testing.T) {
	e := NewEngine(Default(nil), composer.New(nil), "models not found")

	r := e.Classify("Either we ban cars entirely or cities will collapse.")
	if r.Fallacy != model.FalseDilemma {
		t.Errorf("Fallacy = %q, want false_dilemma", r.Fallacy)
	}
	if r.Confidence != 0 {
		t.Errorf("Confidence = %v, want 0", r.Confidence)
	}
	if r.Mode != model.ModeRules {
		t.Errorf("Mode = %q", r.Mode)
	}
	if r.Warning != "models not found" {
		t.Errorf("Warning = %q", r.Warning)
	}
	if len(r.Matches) != 1 {
		t.Errorf("Matches = %+v", r.Matches)
	}

	r = e.Classify("The sky is blue today.")
	if r.Fallacy != model.NoFallacy || r.Confidence != 0 {
		t.Errorf("no-match result = %+v", r)
	}
	if r.Sentence != "The sky is blue today." {
		t.Errorf("Sentence = %q", r.Sentence)
	}
}
