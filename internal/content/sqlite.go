package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"reelsmith/internal/services"
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// SQLiteStore keeps records in a local SQLite database.
type SQLiteStore struct {
	db    *sql.DB
	path  string
	table string
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path, table string) (*SQLiteStore, error) {
	table, err := validateTable(table)
	if err != nil {
		return nil, err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "open", "sqlite path required", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrPersistence, stageName, "open", "create data dir", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, stageName, "open", "open sqlite db", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, services.Wrap(services.ErrPersistence, stageName, "open", fmt.Sprintf("apply pragma %q", pragma), execErr)
		}
	}

	store := &SQLiteStore{db: db, path: path, table: table}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	video_url TEXT NOT NULL,
	created_at TEXT NOT NULL
)`, s.table),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_created_at_idx ON %s (created_at)", s.table, s.table),
	}
	for _, stmt := range stmts {
		if err := retryOnBusy(ctx, func() error {
			_, err := s.db.ExecContext(ctx, stmt)
			return err
		}); err != nil {
			return services.Wrap(services.ErrPersistence, stageName, "open", "create schema", err)
		}
	}
	return nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Put inserts record. Existing IDs are rejected.
func (s *SQLiteStore) Put(ctx context.Context, record Record) error {
	if err := validateRecord(record); err != nil {
		return err
	}
	query := fmt.Sprintf("INSERT INTO %s (id, title, description, video_url, created_at) VALUES (?, ?, ?, ?, ?)", s.table)
	err := retryOnBusy(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query,
			record.ID, record.Title, record.Description, record.VideoURL, FormatTimestamp(record.CreatedAt))
		return err
	})
	if err != nil {
		return services.Wrap(services.ErrPersistence, stageName, "put", "insert record", err)
	}
	return nil
}

// List returns every record, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Record, error) {
	query := fmt.Sprintf("SELECT id, title, description, video_url, created_at FROM %s ORDER BY created_at DESC, id DESC", s.table)
	var records []Record
	err := retryOnBusy(ctx, func() error {
		records = records[:0]
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				record  Record
				created string
			)
			if err := rows.Scan(&record.ID, &record.Title, &record.Description, &record.VideoURL, &created); err != nil {
				return err
			}
			if record.CreatedAt, err = ParseTimestamp(created); err != nil {
				return err
			}
			records = append(records, record)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, stageName, "list", "query records", err)
	}
	SortNewestFirst(records)
	return records, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
