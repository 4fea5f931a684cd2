package output

import (
	"context"
	"fmt"
	"strings"

	"github.com/crimson-sun/gatekeeper/internal/model"
)

// Output defines the interface for classification result destinations.
type Output interface {
	Write(ctx context.Context, result model.Result) error
	Close() error
}

// Verbosity controls which result fields a sink emits.
type Verbosity int

const (
	// Minimal keeps the sentence, label, confidence, title and warning.
	Minimal Verbosity = iota
	// Standard keeps every field.
	Standard
)

// ParseVerbosity maps "minimal" or "standard" to a Verbosity.
func ParseVerbosity(s string) (Verbosity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minimal":
		return Minimal, nil
	case "standard", "":
		return Standard, nil
	}
	return Standard, fmt.Errorf("output: unknown verbosity %q (want minimal or standard)", s)
}

func (v Verbosity) String() string {
	if v == Minimal {
		return "minimal"
	}
	return "standard"
}

// FormatResult returns a copy of r with fields stripped according to
// verbosity. At Minimal the explanation, prompt and rule matches are
// dropped (omitted from JSON).
func FormatResult(r model.Result, verbosity Verbosity) model.Result {
	if verbosity == Minimal {
		r.Explanation = ""
		r.Prompt = ""
		r.Matches = nil
	}
	return r
}
