// Package sqlite provides a unified SQLite-based implementation of the storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. One database backs every store:
//
//   - KeyValueStore: primary thoughts and their secondary sets
//   - QuotaStore: per-user search counters
//   - ResultCache: combined search results with expiry
//   - HistoryStore: accepted searches per user
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.provena/data/provena.db
//
// # Thread Safety
//
// All operations are thread-safe. SQLite in WAL mode provides database-level
// locking; quota updates are additionally serialised within the process.
package sqlite
