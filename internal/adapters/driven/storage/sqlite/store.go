package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/pdfsift/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.EntryRepository = (*Store)(nil)

// Store is a SQLite-backed entry repository.
type Store struct {
	db   *sql.DB
	path string

	mu      sync.Mutex
	corrupt error
}

// NewStore opens or creates the database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: empty database path", domain.ErrInvalidInput)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	s, err := open(path)
	if err == nil {
		return s, nil
	}
	if !isNotDatabase(err) {
		return nil, err
	}

	// Keep the damaged file for inspection and start over.
	aside := path + ".corrupt"
	if rerr := os.Rename(path, aside); rerr != nil {
		return nil, fmt.Errorf("moving corrupt database aside: %w", rerr)
	}
	s, rerr := open(path)
	if rerr != nil {
		return nil, rerr
	}
	s.corrupt = fmt.Errorf("%w: %s moved to %s: %w", domain.ErrCacheCorrupt, path, aside, err)
	return s, nil
}

func open(path string) (*Store, error) {
	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: path,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// isNotDatabase reports whether SQLite rejected the file itself.
func isNotDatabase(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "not a database") || strings.Contains(msg, "malformed")
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_entries.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// Load reads every entry. The first call after a corrupt database was
// replaced returns an error wrapping domain.ErrCacheCorrupt.
func (s *Store) Load(ctx context.Context) (map[string]domain.Entry, error) {
	s.mu.Lock()
	corrupt := s.corrupt
	s.corrupt = nil
	s.mu.Unlock()
	if corrupt != nil {
		return nil, corrupt
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, text, ocr, text_status, ocr_status, text_backend, ocr_backend, ocr_passes, extracted_at
		FROM entries
	`)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]domain.Entry)
	for rows.Next() {
		var (
			e           domain.Entry
			textStatus  string
			ocrStatus   string
			ocrPasses   string
			extractedAt string
		)
		if err := rows.Scan(&e.Key, &e.Text, &e.OCR, &textStatus, &ocrStatus,
			&e.TextBackend, &e.OCRBackend, &ocrPasses, &extractedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning entry: %w", domain.ErrCacheCorrupt, err)
		}
		e.TextStatus = domain.ExtractionStatus(textStatus)
		e.OCRStatus = domain.ExtractionStatus(ocrStatus)
		if ocrPasses != "" {
			e.OCRPasses = strings.Split(ocrPasses, ",")
		}
		if extractedAt != "" {
			if t, err := time.Parse(time.RFC3339Nano, extractedAt); err == nil {
				e.ExtractedAt = t
			}
		}
		entries[e.Key] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}

// Save replaces every row with the given entries in one transaction.
func (s *Store) Save(ctx context.Context, entries map[string]domain.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM entries"); err != nil {
		return fmt.Errorf("clearing entries: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, upsertEntry)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for key, e := range entries {
		e.Key = key
		if _, err := stmt.ExecContext(ctx, entryArgs(e)...); err != nil {
			return fmt.Errorf("inserting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing entries: %w", err)
	}
	return nil
}

// Append inserts or replaces one entry.
func (s *Store) Append(ctx context.Context, e domain.Entry) error {
	if e.Key == "" {
		return errors.New("entry has no key")
	}
	if _, err := s.db.ExecContext(ctx, upsertEntry, entryArgs(e)...); err != nil {
		return fmt.Errorf("upserting %s: %w", e.Key, err)
	}
	return nil
}

const upsertEntry = `
	INSERT INTO entries (key, text, ocr, text_status, ocr_status, text_backend, ocr_backend, ocr_passes, extracted_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		text = excluded.text,
		ocr = excluded.ocr,
		text_status = excluded.text_status,
		ocr_status = excluded.ocr_status,
		text_backend = excluded.text_backend,
		ocr_backend = excluded.ocr_backend,
		ocr_passes = excluded.ocr_passes,
		extracted_at = excluded.extracted_at
`

func entryArgs(e domain.Entry) []any {
	var extractedAt string
	if !e.ExtractedAt.IsZero() {
		extractedAt = e.ExtractedAt.UTC().Format(time.RFC3339Nano)
	}
	return []any{
		e.Key, e.Text, e.OCR,
		string(e.TextStatus), string(e.OCRStatus),
		e.TextBackend, e.OCRBackend,
		strings.Join(e.OCRPasses, ","),
		extractedAt,
	}
}
