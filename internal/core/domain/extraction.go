package domain

import "strings"

// BackendKind identifies which cached field a backend produces.
type BackendKind string

// Available backend kinds.
const (
	// BackendTextLayer decodes text stored in the document.
	BackendTextLayer BackendKind = "text"

	// BackendRecognition recovers text from rasterised pages.
	BackendRecognition BackendKind = "ocr"
)

// String returns the string representation.
func (k BackendKind) String() string {
	return string(k)
}

// ExtractionStatus describes how an extraction attempt ended.
type ExtractionStatus string

// Available extraction statuses.
const (
	// StatusOK means text was produced.
	StatusOK ExtractionStatus = "ok"

	// StatusEmpty means extraction ran and found nothing.
	StatusEmpty ExtractionStatus = "empty"

	// StatusEncrypted means the document reported an encryption flag.
	StatusEncrypted ExtractionStatus = "encrypted"

	// StatusFailed means every engine failed to read the document.
	StatusFailed ExtractionStatus = "failed"

	// StatusSkipped means extraction was not attempted.
	StatusSkipped ExtractionStatus = "skipped"
)

// IsValid returns true if the status is recognised.
func (s ExtractionStatus) IsValid() bool {
	switch s {
	case StatusOK, StatusEmpty, StatusEncrypted, StatusFailed, StatusSkipped:
		return true
	default:
		return false
	}
}

// Success returns true if the attempt completed, whether or not it found text.
func (s ExtractionStatus) Success() bool {
	return s == StatusOK || s == StatusEmpty
}

// String returns the string representation.
func (s ExtractionStatus) String() string {
	return string(s)
}

// Description returns a human-readable description of the status.
func (s ExtractionStatus) Description() string {
	switch s {
	case StatusOK:
		return "text extracted"
	case StatusEmpty:
		return "no text found"
	case StatusEncrypted:
		return "encrypted"
	case StatusFailed:
		return "unreadable"
	case StatusSkipped:
		return "not attempted"
	default:
		return "unknown"
	}
}

// ExtractionResult is the outcome of one backend attempt on one document.
// It is transient: only the pipeline's combined text is persisted.
type ExtractionResult struct {
	// Text is the extracted text, possibly empty.
	Text string

	// Status describes how the attempt ended.
	Status ExtractionStatus

	// Backend is the identity of the backend that produced the result.
	Backend string

	// Err is the failure reason for encrypted or failed attempts.
	Err error

	// Pages is the number of pages processed.
	Pages int

	// Passes lists the recognition passes attempted so far, in order,
	// whether or not they produced text.
	Passes []string
}

// Success returns true if the attempt completed.
func (r ExtractionResult) Success() bool {
	return r.Status.Success()
}

// Reason returns the failure reason as text, or empty if none.
func (r ExtractionResult) Reason() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// NewTextResult builds a successful result, classifying blank text as empty.
func NewTextResult(backend, text string, pages int) ExtractionResult {
	status := StatusOK
	if strings.TrimSpace(text) == "" {
		status = StatusEmpty
	}
	return ExtractionResult{Text: text, Status: status, Backend: backend, Pages: pages}
}

// NewFailedResult builds a result for an attempt that could not complete.
// Encryption errors are classified as encrypted, everything else as failed.
func NewFailedResult(backend string, err error) ExtractionResult {
	status := StatusFailed
	if isEncrypted(err) {
		status = StatusEncrypted
	}
	return ExtractionResult{Status: status, Backend: backend, Err: err}
}

// SkippedResult builds a result for an attempt that was not made.
func SkippedResult() ExtractionResult {
	return ExtractionResult{Status: StatusSkipped}
}

// Extraction holds the combined output of one pipeline run.
// Both texts are always present, possibly as empty strings.
type Extraction struct {
	TextLayer   ExtractionResult
	Recognition ExtractionResult
}

// Hint tells the pipeline when extraction has produced enough text to
// answer the caller, so later (more expensive) steps can be skipped.
// A nil Hint means the caller wants everything the configuration allows.
type Hint func(textLayer, recognition string) bool
