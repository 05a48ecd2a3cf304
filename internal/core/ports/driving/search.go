package driving

import (
	"context"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// Observer is notified as each document finishes processing.
// Calls are serialised; implementations need not be thread-safe.
type Observer func(done, total int, outcome domain.Outcome)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search checks every document for the query and reports matches in
	// input order.
	Search(ctx context.Context, docs []domain.Document, query string, observe Observer) (*domain.RunReport, error)

	// Matches checks a single document for an already normalised query.
	Matches(ctx context.Context, doc domain.Document, query domain.Query) (domain.Outcome, error)

	// Index extracts and caches every document without searching.
	Index(ctx context.Context, docs []domain.Document, observe Observer) (*domain.RunReport, error)

	// NewQuery normalises a query string with the engine's normaliser.
	NewQuery(raw string) domain.Query
}

// CacheService exposes the document text cache to external actors.
type CacheService interface {
	// Get returns the cached entry for a key.
	Get(key string) (domain.Entry, bool)

	// Snapshot returns a copy of every cached entry.
	Snapshot() map[string]domain.Entry

	// Flush persists entries added during this run.
	Flush(ctx context.Context) error

	// Path returns the durable cache location.
	Path() string

	// Len returns the number of cached entries.
	Len() int

	// Added returns the number of entries produced during this run.
	Added() int

	// Close releases the underlying repository.
	Close() error
}
