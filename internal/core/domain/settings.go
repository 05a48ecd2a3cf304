package domain

import (
	"fmt"
	"runtime"
	"time"
)

const unknownDescription = "Unknown"

// RecognitionMode defines when optical recognition runs for a document.
type RecognitionMode string

// Available recognition modes.
const (
	// RecognitionAlways runs recognition for every document.
	RecognitionAlways RecognitionMode = "always"

	// RecognitionFallback runs recognition only when the text layer does
	// not already answer the query.
	RecognitionFallback RecognitionMode = "fallback"

	// RecognitionNever disables recognition.
	RecognitionNever RecognitionMode = "never"
)

// IsValid returns true if the recognition mode is recognised.
func (m RecognitionMode) IsValid() bool {
	switch m {
	case RecognitionAlways, RecognitionFallback, RecognitionNever:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m RecognitionMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m RecognitionMode) Description() string {
	switch m {
	case RecognitionAlways:
		return "Always (text layer + OCR for every document)"
	case RecognitionFallback:
		return "Fallback (OCR only when the text layer does not match)"
	case RecognitionNever:
		return "Never (text layer only)"
	default:
		return unknownDescription
	}
}

// CacheBackend identifies the durable storage of the text cache.
type CacheBackend string

// Available cache backends.
const (
	// CacheBackendJSON stores the cache as a human-readable JSON file.
	CacheBackendJSON CacheBackend = "json"

	// CacheBackendSQLite stores the cache in a SQLite database.
	CacheBackendSQLite CacheBackend = "sqlite"

	// CacheBackendMemory keeps the cache for the lifetime of the process only.
	CacheBackendMemory CacheBackend = "memory"
)

// IsValid returns true if the cache backend is recognised.
func (b CacheBackend) IsValid() bool {
	switch b {
	case CacheBackendJSON, CacheBackendSQLite, CacheBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b CacheBackend) String() string {
	return string(b)
}

// Settings is the effective configuration of a run.
// Defaults are overridden by the config file, which is overridden by flags.
type Settings struct {
	// CachePath is the durable cache location. Empty selects a per-root
	// default under the data directory.
	CachePath string

	// CacheBackend selects the durable cache implementation.
	CacheBackend CacheBackend

	// KeyMode selects how document keys are derived.
	KeyMode KeyMode

	// RecognitionMode selects when OCR runs.
	RecognitionMode RecognitionMode

	// DPIs lists recognition resolutions, lowest first.
	DPIs []int

	// Languages is passed to the recognition engine unchanged.
	Languages []string

	// TextEngines lists text-layer engines in priority order.
	TextEngines []string

	// OCREngines lists recognition engines in priority order.
	OCREngines []string

	// Alphabet restricts the strict normalisation profile.
	Alphabet string

	// Repair lists text repair steps applied to text-layer text, in order.
	// A step may carry parameters: "whitespace:max_blank_lines=0".
	Repair []string

	// Workers bounds the number of documents processed concurrently.
	Workers int

	// Timeout bounds the processing of a single document.
	Timeout time.Duration

	// Extensions lists file extensions treated as documents.
	Extensions []string

	// URLPrefix is prepended to relative keys when printing matches.
	URLPrefix string

	// RetryFailed re-extracts documents cached as unreadable.
	RetryFailed bool

	// Tools maps external program names to executable paths.
	Tools map[string]string
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	return Settings{
		CacheBackend:    CacheBackendJSON,
		KeyMode:         KeyModePath,
		RecognitionMode: RecognitionFallback,
		DPIs:            []int{100, 300},
		Languages:       []string{"rus", "eng"},
		TextEngines:     []string{"gopdf", "pdftotext"},
		OCREngines:      []string{"gosseract", "tesseract"},
		Alphabet:        "russian",
		Workers:         runtime.NumCPU(),
		Timeout:         10 * time.Minute,
		Extensions:      []string{".pdf"},
		Tools: map[string]string{
			"pdfinfo":   "pdfinfo",
			"pdftotext": "pdftotext",
			"pdftoppm":  "pdftoppm",
			"tesseract": "tesseract",
		},
	}
}

// Validate checks the settings for values that cannot work.
func (s *Settings) Validate() error {
	if !s.CacheBackend.IsValid() {
		return fmt.Errorf("%w: cache backend %q", ErrUnsupportedType, s.CacheBackend)
	}
	if !s.KeyMode.IsValid() {
		return fmt.Errorf("%w: key mode %q", ErrUnsupportedType, s.KeyMode)
	}
	if !s.RecognitionMode.IsValid() {
		return fmt.Errorf("%w: recognition mode %q", ErrUnsupportedType, s.RecognitionMode)
	}
	for _, dpi := range s.DPIs {
		if dpi <= 0 {
			return fmt.Errorf("%w: dpi must be positive, got %d", ErrInvalidInput, dpi)
		}
	}
	if s.RecognitionMode != RecognitionNever && len(s.DPIs) == 0 {
		return fmt.Errorf("%w: recognition enabled but no dpi configured", ErrInvalidInput)
	}
	if len(s.TextEngines) == 0 {
		return fmt.Errorf("%w: no text-layer engines configured", ErrInvalidInput)
	}
	if s.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidInput, s.Workers)
	}
	if s.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalidInput, s.Timeout)
	}
	return nil
}

// Tool returns the executable configured for an external program.
func (s *Settings) Tool(name string) string {
	if path, ok := s.Tools[name]; ok && path != "" {
		return path
	}
	return name
}
