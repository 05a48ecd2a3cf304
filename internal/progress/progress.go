// Package progress renders per-document progress on stderr. Output stays
// off stdout so match lists can be piped, and nothing is drawn unless
// stderr is a terminal. Log messages clear the line before they are
// written so the two never interleave.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/term"

	"github.com/custodia-labs/pdfsift/internal/logger"
)

// minItems is the minimum number of documents before progress is shown.
const minItems = 5

// maxName bounds the document name shown on the progress line.
const maxName = 40

// Progress draws a single updating line.
type Progress struct {
	mu    sync.Mutex
	w     io.Writer
	label string
	total int
	isTTY bool
	width int
	hook  sync.Once
}

// New creates a progress line on stderr for total documents.
func New(label string, total int) *Progress {
	return NewWriter(os.Stderr, label, total, term.IsTerminal(int(os.Stderr.Fd())))
}

// NewWriter creates a progress line on w.
func NewWriter(w io.Writer, label string, total int, isTTY bool) *Progress {
	return &Progress{w: w, label: label, total: total, isTTY: isTTY}
}

// Enabled reports whether anything will be drawn.
func (p *Progress) Enabled() bool {
	return p.isTTY && p.total >= minItems
}

// Update redraws the line after a document finishes.
func (p *Progress) Update(done int, name string) {
	if !p.Enabled() {
		return
	}
	// Registered outside p.mu: the logger calls Clear with its own lock held.
	p.hook.Do(func() { logger.SetBeforeWrite(p.Clear) })

	p.mu.Lock()
	defer p.mu.Unlock()

	pct := done * 100 / p.total
	line := fmt.Sprintf("%s %d/%d (%d%%) %s", p.label, done, p.total, pct, shorten(name))
	pad := max(p.width-utf8.RuneCountInString(line), 0)
	p.width = utf8.RuneCountInString(line)
	fmt.Fprintf(p.w, "\r%s%s", line, strings.Repeat(" ", pad))
}

// Clear erases the line. The next Update draws it again.
func (p *Progress) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.width == 0 {
		return
	}
	fmt.Fprintf(p.w, "\r%s\r", strings.Repeat(" ", p.width))
	p.width = 0
}

// Done clears the line to make way for final output.
func (p *Progress) Done() {
	if !p.Enabled() {
		return
	}
	logger.SetBeforeWrite(nil)
	p.Clear()
}

// shorten keeps the tail of long names, where file names differ.
func shorten(name string) string {
	if utf8.RuneCountInString(name) <= maxName {
		return name
	}
	runes := []rune(name)
	return "…" + string(runes[len(runes)-maxName+1:])
}
