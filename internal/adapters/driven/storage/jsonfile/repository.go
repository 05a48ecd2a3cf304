package jsonfile

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Ensure Repository implements the interface.
var _ driven.EntryRepository = (*Repository)(nil)

// JournalSuffix is appended to the cache path to name the journal.
const JournalSuffix = ".journal"

// CorruptSuffix is appended to the cache path when a damaged file is moved aside.
const CorruptSuffix = ".corrupt"

// journalRecord is one line of the journal.
type journalRecord struct {
	Key string `json:"key"`
	domain.Entry
}

// Repository stores entries in a JSON file.
type Repository struct {
	mu      sync.Mutex
	path    string
	journal *os.File
}

// New creates a repository for the file at path. Nothing is created on
// disk until the first Append or Save.
func New(path string) (*Repository, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty cache path", domain.ErrInvalidInput)
	}
	return &Repository{path: path}, nil
}

// Path returns the snapshot file path.
func (r *Repository) Path() string {
	return r.path
}

// JournalPath returns the journal file path.
func (r *Repository) JournalPath() string {
	return r.path + JournalSuffix
}

// Load reads the snapshot and replays the journal over it. An undecodable
// snapshot is moved aside and the journal is replayed into an empty map;
// the recovered entries are returned with an error wrapping
// domain.ErrCacheCorrupt.
func (r *Repository) Load(ctx context.Context) (map[string]domain.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make(map[string]domain.Entry)
	var corrupt error

	data, err := os.ReadFile(r.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading cache: %w", err)
	default:
		if err := json.Unmarshal(data, &entries); err != nil {
			corrupt = r.moveAside(err)
			entries = make(map[string]domain.Entry)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	replayed, err := r.replay(entries)
	if err != nil {
		return nil, err
	}
	if replayed > 0 {
		logger.Debug("replayed %d journal entries from %s", replayed, r.JournalPath())
	}

	for key, entry := range entries {
		entry.Key = key
		entries[key] = entry
	}
	return entries, corrupt
}

// moveAside renames the damaged snapshot out of the way. The journal is
// left in place; its records are still valid.
func (r *Repository) moveAside(cause error) error {
	aside := r.path + CorruptSuffix
	if err := os.Rename(r.path, aside); err != nil {
		return fmt.Errorf("%w: %w (moving aside failed: %w)", domain.ErrCacheCorrupt, cause, err)
	}
	return fmt.Errorf("%w: %s moved to %s: %w", domain.ErrCacheCorrupt, r.path, aside, cause)
}

// replay applies journal records in order. A torn final line from an
// interrupted write is skipped.
func (r *Repository) replay(entries map[string]domain.Entry) (int, error) {
	f, err := os.Open(r.JournalPath())
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("opening journal: %w", err)
	}
	defer f.Close()

	n := 0
	line := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var rec journalRecord
		if err := json.Unmarshal(raw, &rec); err != nil || rec.Key == "" {
			logger.Warn("journal %s line %d unreadable, skipped", r.JournalPath(), line)
			continue
		}
		rec.Entry.Key = rec.Key
		entries[rec.Key] = rec.Entry
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("reading journal: %w", err)
	}
	return n, nil
}

// Save writes a full snapshot and removes the journal.
func (r *Repository) Save(ctx context.Context, entries map[string]domain.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encoding cache: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeAtomic(r.path, buf.Bytes()); err != nil {
		return err
	}

	if r.journal != nil {
		_ = r.journal.Close()
		r.journal = nil
	}
	if err := os.Remove(r.JournalPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing journal: %w", err)
	}
	return nil
}

// Append writes one entry to the journal and syncs it.
func (r *Repository) Append(_ context.Context, entry domain.Entry) error {
	if entry.Key == "" {
		return fmt.Errorf("%w: entry has no key", domain.ErrInvalidInput)
	}

	line, err := json.Marshal(journalRecord{Key: entry.Key, Entry: entry})
	if err != nil {
		return fmt.Errorf("encoding journal record: %w", err)
	}
	line = append(line, '\n')

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.journal == nil {
		if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
			return fmt.Errorf("creating cache directory: %w", err)
		}
		f, err := os.OpenFile(r.JournalPath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if err != nil {
			return fmt.Errorf("opening journal: %w", err)
		}
		r.journal = f
	}

	if _, err := r.journal.Write(line); err != nil {
		return fmt.Errorf("writing journal: %w", err)
	}
	return r.journal.Sync()
}

// Close closes the journal.
func (r *Repository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.journal == nil {
		return nil
	}
	err := r.journal.Close()
	r.journal = nil
	return err
}

// writeAtomic replaces path with data through a temporary file in the
// same directory.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing cache: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing cache: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return fmt.Errorf("setting cache permissions: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing cache: %w", err)
	}
	return nil
}
