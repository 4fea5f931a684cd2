package features

import "strings"

// Cue is a hand-authored indicator evaluated on normalized text.
type Cue struct {
	Name string
	Test func(normalized string) bool
}

// ManualCues is the manual feature schema, in column order. Apostrophes are
// gone after normalization, so contractions appear as "youre" and "youd".
var ManualCues = []Cue{
	{Name: "either_or", Test: func(t string) bool {
		return strings.Contains(t, "either") && strings.Contains(t, "or")
	}},
	{Name: "second_person", Test: func(t string) bool {
		return strings.Contains(t, "you are") || strings.Contains(t, "youre") || strings.Contains(t, "youd")
	}},
	{Name: "conditional_will", Test: func(t string) bool {
		return strings.Contains(t, "if ") && strings.Contains(t, " will ")
	}},
	{Name: "so_you", Test: func(t string) bool {
		return strings.Contains(t, "so you")
	}},
}

// ManualSchema returns the cue names in column order.
func ManualSchema() []string {
	names := make([]string, len(ManualCues))
	for i, c := range ManualCues {
		names[i] = c.Name
	}
	return names
}

// manualVector evaluates every cue on normalized text as 0/1.
func manualVector(normalized string, dst []float64) {
	for i, c := range ManualCues {
		if c.Test(normalized) {
			dst[i] = 1
		} else {
			dst[i] = 0
		}
	}
}
