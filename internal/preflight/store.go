package preflight

import (
	"context"
	"fmt"

	"reelsmith/internal/config"
	"reelsmith/internal/content"
)

// CheckContentStore opens the configured metadata store and lists records.
func CheckContentStore(ctx context.Context, cfg *config.Config) Result {
	name := fmt.Sprintf("Content store (%s)", cfg.Metadata.Backend)
	store, err := content.Open(ctx, cfg)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	defer store.Close()

	records, err := store.List(ctx)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d records", len(records))}
}
