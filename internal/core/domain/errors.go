package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not available in this build.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUnsupportedType indicates an unknown engine, backend or format name.
	ErrUnsupportedType = errors.New("unsupported type")

	// Run Errors.

	// ErrInvalidRoot indicates the scan root is missing or not a directory.
	// This is the only error that aborts a run before any processing.
	ErrInvalidRoot = errors.New("invalid root directory")

	// Extraction Errors.

	// ErrEncrypted indicates the document reports an encryption flag.
	// The backend is skipped for this document; the run continues.
	ErrEncrypted = errors.New("document is encrypted")

	// ErrCorrupt indicates the engine could not parse the document at all.
	ErrCorrupt = errors.New("document is corrupt")

	// ErrEngine indicates an extraction engine failed internally.
	// Treated identically to "found nothing".
	ErrEngine = errors.New("extraction engine failed")

	// ErrToolNotFound indicates an external program is not installed.
	ErrToolNotFound = errors.New("external tool not found")

	// Cache Errors.

	// ErrCacheCorrupt indicates the persisted cache could not be decoded.
	// The cache is discarded and the run starts empty.
	ErrCacheCorrupt = errors.New("cache is corrupt")
)
