package objectstore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"reelsmith/internal/fileutil"
	"reelsmith/internal/services"
)

// FileStore publishes objects into a local directory tree.
type FileStore struct {
	root          string
	bucket        string
	publicBaseURL string
}

// NewFileStore constructs a store rooted at dir.
func NewFileStore(dir, bucket, publicBaseURL string) *FileStore {
	return &FileStore{
		root:          strings.TrimSpace(dir),
		bucket:        strings.Trim(strings.TrimSpace(bucket), "/"),
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
}

// Root returns the directory objects are written under.
func (s *FileStore) Root() string {
	return s.root
}

// Put copies localPath to `<root>/<bucket>/<key>` with integrity checks.
func (s *FileStore) Put(ctx context.Context, key, localPath, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, stageName, "put", "", err)
	}
	if s.root == "" {
		return "", services.Wrap(services.ErrConfiguration, stageName, "put", "storage dir not configured", nil)
	}
	target := filepath.Join(s.root, s.bucket, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", services.Wrap(services.ErrTransfer, stageName, "put", "create object dir", err)
	}
	if _, err := fileutil.CopyFileVerified(localPath, target); err != nil {
		return "", services.Wrap(services.ErrTransfer, stageName, "put", "copy object", err)
	}
	return joinURL(s.publicBaseURL, s.bucket, cleaned), nil
}
