// Package content persists the metadata record of every published reel and
// serves it back for listing.
//
// Record is the listing contract: its JSON field names (id, title,
// description, videoUrl, createdAt) are what API clients consume, and
// createdAt is rendered as ISO-8601 UTC with millisecond precision.
//
// Store has two backends:
//   - SQLiteStore (default): modernc.org/sqlite with WAL, a busy timeout, and
//     bounded retry on SQLITE_BUSY.
//   - PostgresStore: a pgx connection pool for shared deployments.
//
// Recorder builds a Record for a finished run and performs exactly one Put.
// Failures wrap services.ErrPersistence. List returns records newest first
// and Latest returns the head of that list.
package content
