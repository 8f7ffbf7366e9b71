package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"reelsmith/internal/services"
)

// PostgresStore keeps records in a PostgreSQL table through a pgx pool.
type PostgresStore struct {
	pool  *pgxpool.Pool
	table string
}

// OpenPostgres connects to dsn and ensures the table exists.
func OpenPostgres(ctx context.Context, dsn, table string) (*PostgresStore, error) {
	table, err := validateTable(table)
	if err != nil {
		return nil, err
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "open", "postgres dsn required", nil)
	}
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "open", "parse dsn", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, stageName, "open", "connect", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, services.Wrap(services.ErrPersistence, stageName, "open", "ping", err)
	}

	store := &PostgresStore{pool: pool, table: table}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	video_url TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`, table)
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, services.Wrap(services.ErrPersistence, stageName, "open", "create schema", err)
	}
	return store, nil
}

// Put inserts record.
func (s *PostgresStore) Put(ctx context.Context, record Record) error {
	if err := validateRecord(record); err != nil {
		return err
	}
	query := fmt.Sprintf("INSERT INTO %s (id, title, description, video_url, created_at) VALUES ($1, $2, $3, $4, $5)", s.table)
	if _, err := s.pool.Exec(ctx, query,
		record.ID, record.Title, record.Description, record.VideoURL, record.CreatedAt.UTC()); err != nil {
		return services.Wrap(services.ErrPersistence, stageName, "put", "insert record", err)
	}
	return nil
}

// List returns every record, newest first.
func (s *PostgresStore) List(ctx context.Context) ([]Record, error) {
	query := fmt.Sprintf("SELECT id, title, description, video_url, created_at FROM %s ORDER BY created_at DESC, id DESC", s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, services.Wrap(services.ErrPersistence, stageName, "list", "query records", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		if err := rows.Scan(&record.ID, &record.Title, &record.Description, &record.VideoURL, &record.CreatedAt); err != nil {
			return nil, services.Wrap(services.ErrPersistence, stageName, "list", "scan record", err)
		}
		record.CreatedAt = record.CreatedAt.UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, services.Wrap(services.ErrPersistence, stageName, "list", "iterate records", err)
	}
	SortNewestFirst(records)
	return records, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}
