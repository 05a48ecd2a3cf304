// Package domain defines the core business entities for pdfsift.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A PDF file discovered under the scan root
//   - ExtractionResult: The outcome of one backend attempt
//   - Entry: The cached text of a document, keyed by its stable key
//   - Query: A search string in every normalised form
//   - RunReport: Per-run matches and statistics
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
