package domain

import (
	"errors"
	"slices"
	"time"
)

// Entry is the persisted unit of the document text cache.
// An entry is never partially updated; it is replaced wholesale.
type Entry struct {
	// Key is the document key.
	Key string `json:"-" yaml:"-"`

	// Text is the text-layer text, empty if nothing was found or the
	// document was encrypted.
	Text string `json:"text" yaml:"text"`

	// OCR is the recognition text, empty if recognition was skipped or
	// found nothing.
	OCR string `json:"ocr" yaml:"ocr"`

	// TextStatus records how text-layer extraction ended.
	TextStatus ExtractionStatus `json:"text_status,omitempty" yaml:"text_status,omitempty"`

	// OCRStatus records how recognition ended.
	OCRStatus ExtractionStatus `json:"ocr_status,omitempty" yaml:"ocr_status,omitempty"`

	// TextBackend names the backend that produced Text.
	TextBackend string `json:"text_backend,omitempty" yaml:"text_backend,omitempty"`

	// OCRBackend names the recognition passes that produced OCR.
	OCRBackend string `json:"ocr_backend,omitempty" yaml:"ocr_backend,omitempty"`

	// OCRPasses lists the recognition passes that were attempted. Passes
	// missing from it were skipped because earlier ones answered the query.
	OCRPasses []string `json:"ocr_passes,omitempty" yaml:"ocr_passes,omitempty"`

	// ExtractedAt is when the entry was produced.
	ExtractedAt time.Time `json:"extracted_at" yaml:"extracted_at"`
}

// NewEntry builds an entry from a pipeline extraction.
func NewEntry(key string, ex Extraction, at time.Time) Entry {
	return Entry{
		Key:         key,
		Text:        ex.TextLayer.Text,
		OCR:         ex.Recognition.Text,
		TextStatus:  ex.TextLayer.Status,
		OCRStatus:   ex.Recognition.Status,
		TextBackend: ex.TextLayer.Backend,
		OCRBackend:  ex.Recognition.Backend,
		OCRPasses:   ex.Recognition.Passes,
		ExtractedAt: at,
	}
}

// Unreadable returns true if no backend could read the document.
func (e Entry) Unreadable() bool {
	return e.TextStatus == StatusFailed &&
		(e.OCRStatus == StatusFailed || e.OCRStatus == StatusSkipped)
}

// Encrypted returns true if any backend reported the document encrypted.
func (e Entry) Encrypted() bool {
	return e.TextStatus == StatusEncrypted || e.OCRStatus == StatusEncrypted
}

// RecognitionPending returns true if recognition was skipped lazily and
// may still be run for this document.
func (e Entry) RecognitionPending() bool {
	return e.OCRStatus == StatusSkipped
}

// RecognitionRan returns true if the named recognition pass was attempted.
func (e Entry) RecognitionRan(pass string) bool {
	return slices.Contains(e.OCRPasses, pass)
}

func isEncrypted(err error) bool {
	return err != nil && errors.Is(err, ErrEncrypted)
}
