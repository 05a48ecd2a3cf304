// Package whitespace collapses the layout whitespace left by text extraction.
package whitespace

import (
	"context"
	"strings"
)

// Name is the registry name of the processor.
const Name = "whitespace"

// DefaultMaxBlankLines is the number of consecutive blank lines kept.
const DefaultMaxBlankLines = 1

// Processor collapses runs of spaces and blank lines.
// It implements the PostProcessor interface.
type Processor struct {
	maxBlankLines int
}

// Option configures the processor.
type Option func(*Processor)

// WithMaxBlankLines sets how many consecutive blank lines survive.
func WithMaxBlankLines(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.maxBlankLines = n
		}
	}
}

// New creates a new whitespace processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{maxBlankLines: DefaultMaxBlankLines}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process collapses whitespace inside lines, drops surplus blank lines
// and trims the result.
func (p *Processor) Process(_ context.Context, text string) (string, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))

	blank := 0
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			blank++
			if blank > p.maxBlankLines {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n")), nil
}
