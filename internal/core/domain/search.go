package domain

import (
	"fmt"
	"time"
)

// Query is a search string in every normalised form.
// Both forms are produced by the same normaliser that is applied to
// cached text, so comparison is always like-for-like.
type Query struct {
	// Raw is the query as the user typed it.
	Raw string

	// Light is the case-folded form, compared against text-layer text.
	Light string

	// Strict is the alphabet-restricted form, compared against OCR text.
	Strict string
}

// MatchVia records which cached field produced a match.
type MatchVia string

// Available match sources.
const (
	// MatchNone means the document did not match.
	MatchNone MatchVia = ""

	// MatchText means the text-layer field matched.
	MatchText MatchVia = "text"

	// MatchOCR means the recognition field matched.
	MatchOCR MatchVia = "ocr"
)

// String returns the string representation.
func (m MatchVia) String() string {
	if m == MatchNone {
		return "none"
	}
	return string(m)
}

// Outcome is the per-document result of a search.
type Outcome struct {
	// Document is the document that was checked.
	Document Document

	// Matched is true if the query was found.
	Matched bool

	// Via records which field matched.
	Via MatchVia

	// Cached is true if no extraction ran for this document in this run.
	Cached bool

	// Entry is the cached text the decision was made on.
	Entry Entry

	// Err is set when the document could not be checked at all
	// (for example the run was cancelled before it was processed).
	Err error
}

// RunReport accumulates the results and statistics of one run.
// It replaces process-wide counters so runs can be tested and
// executed in parallel safely.
type RunReport struct {
	// ID uniquely identifies the run.
	ID string

	// Query is the query of the run; empty for index runs.
	Query Query

	// Outcomes holds one outcome per document, in input order.
	Outcomes []Outcome

	// StartedAt is when the run started.
	StartedAt time.Time

	// FinishedAt is when the run finished.
	FinishedAt time.Time
}

// Matches returns the matching documents in input order.
func (r *RunReport) Matches() []Document {
	var docs []Document
	for i := range r.Outcomes {
		if r.Outcomes[i].Matched {
			docs = append(docs, r.Outcomes[i].Document)
		}
	}
	return docs
}

// Stats summarises a run.
type Stats struct {
	Total      int
	Matched    int
	Cached     int
	Extracted  int
	Recognised int
	Encrypted  int
	Unreadable int
	Errored    int
}

// Stats computes the run statistics.
func (r *RunReport) Stats() Stats {
	s := Stats{Total: len(r.Outcomes)}
	for i := range r.Outcomes {
		o := &r.Outcomes[i]
		if o.Err != nil {
			s.Errored++
			continue
		}
		if o.Matched {
			s.Matched++
		}
		if o.Cached {
			s.Cached++
		} else {
			s.Extracted++
		}
		if o.Entry.OCRStatus.Success() {
			s.Recognised++
		}
		if o.Entry.Encrypted() {
			s.Encrypted++
		}
		if o.Entry.Unreadable() {
			s.Unreadable++
		}
	}
	return s
}

// Elapsed returns the run duration.
func (r *RunReport) Elapsed() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// FormatElapsed renders a duration as "Xh Ym Zs".
func FormatElapsed(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}
