package driven

import (
	"context"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// EntryRepository is the durable storage behind the document text cache.
// The cache is read once at start, journalled incrementally as entries
// are produced, and snapshotted once at the end of a run.
type EntryRepository interface {
	// Load reads every persisted entry.
	// A missing store yields an empty map and no error.
	// Undecodable data yields an error wrapping domain.ErrCacheCorrupt,
	// alongside any entries that could still be recovered.
	Load(ctx context.Context) (map[string]domain.Entry, error)

	// Save replaces the persisted contents with the given mapping.
	Save(ctx context.Context, entries map[string]domain.Entry) error

	// Append durably records a single new or replaced entry.
	Append(ctx context.Context, entry domain.Entry) error

	// Path returns the storage location, empty for in-memory stores.
	Path() string

	// Close releases resources.
	Close() error
}
