package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// Ensure EntryRepository implements the interface.
var _ driven.EntryRepository = (*EntryRepository)(nil)

// EntryRepository is an in-memory implementation of driven.EntryRepository.
// It backs --no-cache runs and tests; nothing survives the process.
type EntryRepository struct {
	mu      sync.RWMutex
	entries map[string]domain.Entry
	loadErr error
	appends int
	saves   int
}

// NewEntryRepository creates an empty in-memory repository.
func NewEntryRepository() *EntryRepository {
	return &EntryRepository{
		entries: make(map[string]domain.Entry),
	}
}

// NewEntryRepositoryWith creates a repository pre-populated with entries.
func NewEntryRepositoryWith(entries map[string]domain.Entry) *EntryRepository {
	r := NewEntryRepository()
	for key, entry := range entries {
		entry.Key = key
		r.entries[key] = entry
	}
	return r
}

// FailLoad makes the next Load calls return err.
func (r *EntryRepository) FailLoad(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadErr = err
}

// Load returns a copy of every stored entry.
func (r *EntryRepository) Load(_ context.Context) (map[string]domain.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.loadErr != nil {
		return nil, r.loadErr
	}
	return maps.Clone(r.entries), nil
}

// Save replaces the stored entries.
func (r *EntryRepository) Save(_ context.Context, entries map[string]domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = make(map[string]domain.Entry, len(entries))
	for key, entry := range entries {
		entry.Key = key
		r.entries[key] = entry
	}
	r.saves++
	return nil
}

// Append stores a single entry.
func (r *EntryRepository) Append(_ context.Context, entry domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[entry.Key] = entry
	r.appends++
	return nil
}

// Appends returns how many entries were appended.
func (r *EntryRepository) Appends() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.appends
}

// Saves returns how many snapshots were written.
func (r *EntryRepository) Saves() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.saves
}

// Path returns an empty string; the repository has no location.
func (r *EntryRepository) Path() string {
	return ""
}

// Close is a no-op.
func (r *EntryRepository) Close() error {
	return nil
}
