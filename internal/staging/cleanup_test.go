package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reelsmith/internal/logging"
)

func mkdirAged(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	stamp := time.Now().Add(-age)
	if err := os.Chtimes(path, stamp, stamp); err != nil {
		t.Fatalf("set time on %s: %v", path, err)
	}
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldRunDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	oldRun := filepath.Join(tmpDir, "1760000000000-0a1b2c3d")
	mkdirAged(t, oldRun, 2*time.Hour)
	recentRun := filepath.Join(tmpDir, "1760000000001-deadbeef")
	mkdirAged(t, recentRun, 0)
	oldForeign := filepath.Join(tmpDir, "keep-me")
	mkdirAged(t, oldForeign, 2*time.Hour)

	result := CleanStale(context.Background(), tmpDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0] != oldRun {
		t.Fatalf("expected only %s removed, got %v", oldRun, result.Removed)
	}
	if _, err := os.Stat(oldRun); !os.IsNotExist(err) {
		t.Error("old run directory should have been removed")
	}
	for _, kept := range []string{recentRun, oldForeign} {
		if _, err := os.Stat(kept); err != nil {
			t.Errorf("%s should still exist", kept)
		}
	}
}

func TestCleanStaleDisabledByZeroAge(t *testing.T) {
	tmpDir := t.TempDir()
	run := filepath.Join(tmpDir, "1760000000000-0a1b2c3d")
	mkdirAged(t, run, 48*time.Hour)

	result := CleanStale(context.Background(), tmpDir, 0, logging.NewNop())
	if len(result.Removed) != 0 {
		t.Fatalf("expected no removals, got %v", result.Removed)
	}
}

func TestListDirectoriesReportsRunSizes(t *testing.T) {
	tmpDir := t.TempDir()
	run := filepath.Join(tmpDir, "1760000000000-0a1b2c3d")
	mkdirAged(t, run, 0)
	if err := os.WriteFile(filepath.Join(run, "clip.mp4"), make([]byte, 128), 0o644); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	mkdirAged(t, filepath.Join(tmpDir, "other"), 0)

	dirs, err := ListDirectories(tmpDir)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 1 || dirs[0].Size != 128 {
		t.Fatalf("unexpected dirs %+v", dirs)
	}
}

func TestIsRunDir(t *testing.T) {
	cases := map[string]bool{
		"1760000000000-0a1b2c3d": true,
		"1760000000000-0A1B2C3D": false,
		"queue-12":               false,
		"1760000000000":          false,
	}
	for name, want := range cases {
		if got := IsRunDir(name); got != want {
			t.Errorf("IsRunDir(%q) = %v, want %v", name, got, want)
		}
	}
}
