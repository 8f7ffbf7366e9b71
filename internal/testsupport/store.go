package testsupport

import (
	"context"
	"testing"

	"reelsmith/internal/config"
	"reelsmith/internal/content"
)

// MustOpenStore opens the SQLite content store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *content.SQLiteStore {
	t.Helper()

	store, err := content.OpenSQLite(context.Background(), cfg.MetadataPath(), cfg.Metadata.Table)
	if err != nil {
		t.Fatalf("content.OpenSQLite: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
