package domain

import "time"

// Document is a PDF file discovered by the directory walk.
// It is read-only to the core and never mutated.
type Document struct {
	// Key is the stable cache key: the slash-separated path relative to
	// the scan root, or the bare file name when keys are names.
	Key string

	// Path is the absolute location on disk.
	Path string

	// Name is the base file name.
	Name string

	// Size is the file size in bytes at discovery time.
	Size int64

	// ModTime is the modification time at discovery time.
	ModTime time.Time
}

// KeyMode selects how document keys are derived from paths.
type KeyMode string

// Available key modes.
const (
	// KeyModePath keys documents by their path relative to the root.
	KeyModePath KeyMode = "path"

	// KeyModeName keys documents by file name, assuming names are unique.
	KeyModeName KeyMode = "name"
)

// IsValid returns true if the key mode is recognised.
func (m KeyMode) IsValid() bool {
	return m == KeyModePath || m == KeyModeName
}

// String returns the string representation.
func (m KeyMode) String() string {
	return string(m)
}
