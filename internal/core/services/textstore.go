package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Ensure TextStore implements the interface.
var _ driving.CacheService = (*TextStore)(nil)

// TextStore is the document text cache: an in-memory map backed by a
// durable repository. Every new entry is journalled immediately and a
// full snapshot is written on Flush.
type TextStore struct {
	repo  driven.EntryRepository
	group singleflight.Group

	// persist orders journal appends against snapshots: Put holds it
	// shared, Flush exclusively, so no append lands between the snapshot
	// copy and the journal truncation that follows it.
	persist sync.RWMutex

	mu      sync.RWMutex
	entries map[string]domain.Entry
	fresh   map[string]struct{}
	dirty   bool
}

// NewTextStore creates a store over the given repository.
func NewTextStore(repo driven.EntryRepository) *TextStore {
	return &TextStore{
		repo:    repo,
		entries: make(map[string]domain.Entry),
		fresh:   make(map[string]struct{}),
	}
}

// LoadAll reads the repository into memory. A corrupt repository is not
// fatal: the run starts with whatever the repository could recover.
func (s *TextStore) LoadAll(ctx context.Context) (map[string]domain.Entry, error) {
	loaded, err := s.repo.Load(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheCorrupt) {
			return nil, fmt.Errorf("load cache: %w", err)
		}
		logger.Warn("cache %s is unreadable, kept %d recovered entries: %v", s.repo.Path(), len(loaded), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]domain.Entry, len(loaded))
	for key, entry := range loaded {
		entry.Key = key
		s.entries[key] = entry
	}
	logger.Debug("loaded %d cached entries from %s", len(s.entries), s.repo.Path())
	return maps.Clone(s.entries), nil
}

// Get returns the cached entry for a key.
func (s *TextStore) Get(key string) (domain.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok
}

// Put inserts or replaces an entry and journals it.
// The journal write does not observe cancellation, so an entry produced
// just before an interrupt is still recorded.
func (s *TextStore) Put(ctx context.Context, entry domain.Entry) error {
	s.persist.RLock()
	defer s.persist.RUnlock()

	s.mu.Lock()
	s.entries[entry.Key] = entry
	s.fresh[entry.Key] = struct{}{}
	s.dirty = true
	s.mu.Unlock()

	if err := s.repo.Append(context.WithoutCancel(ctx), entry); err != nil {
		return fmt.Errorf("journal %s: %w", entry.Key, err)
	}
	return nil
}

// Fresh returns true if the entry was produced during this run.
func (s *TextStore) Fresh(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.fresh[key]
	return ok
}

// Resolve returns the entry for key, calling produce when need reports the
// current entry insufficient. Concurrent callers for the same key share a
// single produce call. The boolean result is true if produce ran.
func (s *TextStore) Resolve(
	ctx context.Context,
	key string,
	need func(entry domain.Entry, found bool) bool,
	produce func() (domain.Entry, error),
) (domain.Entry, bool, error) {
	if entry, ok := s.Get(key); !need(entry, ok) {
		return entry, false, nil
	}

	type resolved struct {
		entry    domain.Entry
		produced bool
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// Another caller may have finished while this one waited.
		if entry, ok := s.Get(key); !need(entry, ok) {
			return resolved{entry: entry}, nil
		}
		entry, err := produce()
		if err != nil {
			return nil, err
		}
		entry.Key = key
		if err := s.Put(ctx, entry); err != nil {
			logger.Warn("%v", err)
		}
		return resolved{entry: entry, produced: true}, nil
	})
	if err != nil {
		return domain.Entry{}, false, err
	}

	r := v.(resolved)
	return r.entry, r.produced, nil
}

// PersistAll writes a full snapshot of the given mapping.
func (s *TextStore) PersistAll(ctx context.Context, entries map[string]domain.Entry) error {
	return s.repo.Save(ctx, entries)
}

// Flush writes a snapshot if any entry was added since the last flush.
// It does not observe cancellation so it can run after an interrupt.
func (s *TextStore) Flush(ctx context.Context) error {
	s.persist.Lock()
	defer s.persist.Unlock()

	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	snapshot := maps.Clone(s.entries)
	s.dirty = false
	s.mu.Unlock()

	if err := s.PersistAll(context.WithoutCancel(ctx), snapshot); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		return fmt.Errorf("save cache: %w", err)
	}
	logger.Debug("saved %d entries to %s", len(snapshot), s.repo.Path())
	return nil
}

// Added returns the number of entries produced during this run.
func (s *TextStore) Added() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fresh)
}

// Len returns the number of cached entries.
func (s *TextStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a copy of every cached entry.
func (s *TextStore) Snapshot() map[string]domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.entries)
}

// Path returns the durable cache location.
func (s *TextStore) Path() string {
	return s.repo.Path()
}

// Close releases the repository.
func (s *TextStore) Close() error {
	return s.repo.Close()
}
