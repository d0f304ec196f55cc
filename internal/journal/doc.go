// Package journal provides SQLite-backed storage for play sessions.
//
// A session row holds the level it was started from (as TOML) and the
// options it ran with. Each committed step is appended with the logical
// sequence number it was stamped with, its input payload, the effects it
// produced and the hash of the resulting snapshot. Reads are ordered by
// seq, so replaying a session's steps reproduces the original order.
//
// Two drivers are supported: "sqlite3" (github.com/mattn/go-sqlite3, cgo)
// and "sqlite" (modernc.org/sqlite, pure Go). Both use the same schema.
//
// Database configuration:
//
//   - WAL mode for concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package journal
