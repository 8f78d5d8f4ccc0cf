// Package sqlite keeps the document registry in a SQLite database.
//
// One database file holds the registered documents, their extracted
// text, the chunk table with byte offsets, and a small metadata table
// recording which embedding model built the index. The driver is
// modernc.org/sqlite, pure Go, so the binary cross-compiles without
// CGO.
//
// The schema is versioned: numbered migration files embedded from the
// migrations/ directory are applied in order on open. Unless a path is
// given, the database lives as trove.db in the per-OS app data
// directory. WAL mode with a busy timeout covers concurrent access
// from the CLI and the watcher.
package sqlite
