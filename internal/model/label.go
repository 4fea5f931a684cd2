package model

import "strings"

// Label is one member of the closed fallacy enumeration.
type Label string

const (
	AdHominem     Label = "ad_hominem"
	Strawman      Label = "strawman"
	SlipperySlope Label = "slippery_slope"
	FalseDilemma  Label = "false_dilemma"
	NoFallacy     Label = "no_fallacy"
)

// Fallacies lists the specific fallacy labels in canonical order.
// NoFallacy is not included.
var Fallacies = []Label{AdHominem, Strawman, SlipperySlope, FalseDilemma}

// aliases maps folded spellings produced by training data and the rule table
// onto the enumeration.
var aliases = map[string]Label{
	"ad_hominem":      AdHominem,
	"adhominem":       AdHominem,
	"strawman":        Strawman,
	"straw_man":       Strawman,
	"slippery_slope":  SlipperySlope,
	"false_dilemma":   FalseDilemma,
	"false_dichotomy": FalseDilemma,
	"no_fallacy":      NoFallacy,
	"none":            NoFallacy,
}

// ParseLabel maps a classifier or rule-table label string onto the
// enumeration. Case, spaces and hyphens are ignored ("Ad Hominem",
// "ad-hominem" and "ad_hominem" are all AdHominem). The second return value
// is false for labels outside the enumeration; the returned label is then
// NoFallacy.
func ParseLabel(s string) (Label, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if l, ok := aliases[key]; ok {
		return l, true
	}
	return NoFallacy, false
}

// Known reports whether l is a member of the enumeration.
func (l Label) Known() bool {
	switch l {
	case AdHominem, Strawman, SlipperySlope, FalseDilemma, NoFallacy:
		return true
	}
	return false
}

// IsFallacy reports whether l names a specific fallacy.
func (l Label) IsFallacy() bool {
	return l.Known() && l != NoFallacy
}

// Display returns the space-separated name used by the rule table
// ("ad hominem", "no fallacy").
func (l Label) Display() string {
	return strings.ReplaceAll(string(l), "_", " ")
}

func (l Label) String() string {
	return string(l)
}
