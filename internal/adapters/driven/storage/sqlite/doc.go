// Package sqlite provides the SQLite-backed Repository implementation.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Document metadata and
// chunks live in separate tables; chunk embeddings are stored as little-endian
// float32 blobs.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// # Data Location
//
// By default, the database is stored at ~/.memora/data/knowledge.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
