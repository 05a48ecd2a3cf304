// Package sqlite provides a SQLite-based implementation of driven.EntryRepository.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Each cache is a single database file
// holding one row per document key.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Corruption
//
// A file that is not a SQLite database is moved aside to <path>.corrupt and a
// fresh database is created in its place. The first Load reports the move with
// an error wrapping domain.ErrCacheCorrupt.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
