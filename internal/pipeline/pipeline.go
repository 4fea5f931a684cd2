// Package pipeline feeds passages through sentence segmentation and the
// classifier into an output.
package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/crimson-sun/gatekeeper/internal/engine/normalize"
	"github.com/crimson-sun/gatekeeper/internal/engine/segment"
	"github.com/crimson-sun/gatekeeper/internal/model"
	"github.com/crimson-sun/gatekeeper/internal/output"
)

const maxLineSize = 1024 * 1024

// Classifier is the single-sentence boundary the pipeline drives.
type Classifier interface {
	Classify(text string) (model.Result, error)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithDedup classifies and emits each distinct sentence (after
// normalization) only once per Scan.
func WithDedup() Option {
	return func(p *Pipeline) { p.dedup = true }
}

// WithLogger sets the logger used for skipped sentences.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// Stats summarizes one Scan.
type Stats struct {
	Passages   int
	Sentences  int
	Fallacies  int
	Duplicates int
	Skipped    int
}

// Pipeline connects a splitter, a classifier and an output.
type Pipeline struct {
	classifier Classifier
	splitter   *segment.Splitter
	output     output.Output
	dedup      bool
	logger     *slog.Logger
}

// New creates a Pipeline. A nil splitter uses the default minimum word count.
func New(c Classifier, s *segment.Splitter, out output.Output, opts ...Option) *Pipeline {
	if s == nil {
		s = segment.New(segment.DefaultMinWords)
	}
	p := &Pipeline{
		classifier: c,
		splitter:   s,
		output:     out,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Scan reads one passage per line from r and writes a result per sentence
// to the output. A sentence that fails to classify is logged and skipped;
// output errors and cancellation stop the scan.
func (p *Pipeline) Scan(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		sentences := p.splitter.Split(scanner.Text())
		if len(sentences) == 0 {
			continue
		}
		stats.Passages++

		for _, s := range sentences {
			if p.dedup {
				key := normalize.Normalize(s)
				if seen[key] {
					stats.Duplicates++
					continue
				}
				seen[key] = true
			}

			res, err := p.classifier.Classify(s)
			if err != nil {
				stats.Skipped++
				p.logger.Warn("skipping sentence", "passage", stats.Passages, "error", err)
				continue
			}
			stats.Sentences++
			if res.Fallacy.IsFallacy() {
				stats.Fallacies++
			}
			if err := p.output.Write(ctx, res); err != nil {
				return stats, fmt.Errorf("pipeline output: %w", err)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("pipeline read: %w", err)
	}
	return stats, nil
}

// Close shuts down the output.
func (p *Pipeline) Close() error {
	return p.output.Close()
}
