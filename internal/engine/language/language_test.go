package language

import "testing"

func TestCheck(t *testing.T) {
	g := New()
	tests := []struct {
		text    string
		allowed bool
	}{
		{"Either we ban cars entirely or cities will collapse.", true},
		{"You are an idiot, that's why you're wrong about everything.", true},
		{"Il faut absolument choisir entre la peste et le choléra, il n'y a pas d'autre solution.", false},
		{"Wenn wir das heute erlauben, dann wird morgen alles zusammenbrechen und niemand hilft uns.", false},
		{"", true},
	}
	for _, tt := range tests {
		lang, ok := g.Check(tt.text)
		if ok != tt.allowed {
			t.Errorf("Check(%q) = (%q, %v), want allowed=%v", tt.text, lang, ok, tt.allowed)
		}
	}
}

func TestCheckNamesLanguage(t *testing.T) {
	lang, ok := New().Check("Il faut absolument choisir entre la peste et le choléra, il n'y a pas d'autre solution.")
	if ok || lang != "French" {
		t.Errorf("Check() = (%q, %v), want (French, false)", lang, ok)
	}
}
