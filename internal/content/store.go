package content

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"reelsmith/internal/config"
	"reelsmith/internal/services"
)

const stageName = "record"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Store persists and lists content records.
type Store interface {
	Put(ctx context.Context, record Record) error
	List(ctx context.Context) ([]Record, error)
	Close() error
}

// Open builds the configured backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "open", "config required", nil)
	}
	switch cfg.Metadata.Backend {
	case config.MetadataBackendSQLite, "":
		store, err := OpenSQLite(ctx, cfg.MetadataPath(), cfg.Metadata.Table)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.MetadataBackendPostgres:
		store, err := OpenPostgres(ctx, cfg.Metadata.DSN, cfg.Metadata.Table)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, stageName, "open",
			fmt.Sprintf("unsupported metadata backend %q", cfg.Metadata.Backend), nil)
	}
}

// Latest returns the most recent record. ok is false when the store is empty.
func Latest(ctx context.Context, store Store) (Record, bool, error) {
	records, err := store.List(ctx)
	if err != nil {
		return Record{}, false, err
	}
	if len(records) == 0 {
		return Record{}, false, nil
	}
	return records[0], true, nil
}

// SortNewestFirst orders records by CreatedAt descending, breaking ties by ID.
func SortNewestFirst(records []Record) {
	slices.SortStableFunc(records, func(a, b Record) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
}

func validateTable(table string) (string, error) {
	table = strings.TrimSpace(table)
	if !tableNamePattern.MatchString(table) {
		return "", services.Wrap(services.ErrConfiguration, stageName, "open",
			fmt.Sprintf("invalid table name %q", table), nil)
	}
	return table, nil
}

func validateRecord(record Record) error {
	switch {
	case strings.TrimSpace(record.ID) == "":
		return services.Wrap(services.ErrValidation, stageName, "put", "record id required", nil)
	case strings.TrimSpace(record.VideoURL) == "":
		return services.Wrap(services.ErrValidation, stageName, "put", "video url required", nil)
	case record.CreatedAt.IsZero():
		return services.Wrap(services.ErrValidation, stageName, "put", "createdAt required", nil)
	}
	return nil
}
