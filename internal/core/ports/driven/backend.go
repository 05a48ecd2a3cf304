package driven

import (
	"context"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// ExtractionBackend obtains the full text of a document by one method.
// Each variant (text layer, optical recognition at a given resolution)
// implements the same failure-tolerant contract, so the pipeline never
// special-cases a particular engine.
type ExtractionBackend interface {
	// Name returns the backend identity recorded as provenance.
	Name() string

	// Kind returns which cached field this backend produces.
	Kind() domain.BackendKind

	// Extract attempts to obtain the document text.
	// It never fails: encryption, corrupt input, missing tools and
	// timeouts are reported through the result status.
	Extract(ctx context.Context, doc domain.Document) domain.ExtractionResult
}
