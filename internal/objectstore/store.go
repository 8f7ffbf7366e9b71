package objectstore

import (
	"context"
	"fmt"
	"path"
	"strings"

	"reelsmith/internal/config"
	"reelsmith/internal/services"
)

const (
	stageName = "publish"

	// ContentTypeMP4 is the media type of published reels.
	ContentTypeMP4 = "video/mp4"
)

// Store uploads local files and reports where they can be fetched.
type Store interface {
	Put(ctx context.Context, key, localPath, contentType string) (string, error)
}

// New builds the configured backend.
func New(cfg *config.Config) (Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "open", "config required", nil)
	}
	switch cfg.Storage.Backend {
	case config.StorageBackendFile, "":
		return NewFileStore(cfg.Storage.Dir, cfg.Storage.Bucket, cfg.Storage.PublicBaseURL), nil
	case config.StorageBackendHTTP:
		return NewHTTPStore(HTTPConfig{
			Endpoint: cfg.Storage.Endpoint,
			Bucket:   cfg.Storage.Bucket,
			Token:    cfg.Storage.Token,
		}), nil
	case config.StorageBackendS3:
		return NewS3Store(S3Config{
			Endpoint:        cfg.Storage.Endpoint,
			Region:          cfg.Storage.Region,
			Bucket:          cfg.Storage.Bucket,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			UsePathStyle:    cfg.Storage.UsePathStyle,
		}), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, stageName, "open",
			fmt.Sprintf("unsupported storage backend %q", cfg.Storage.Backend), nil)
	}
}

// ObjectKey returns `<prefix><runID>_reel.mp4`.
func ObjectKey(prefix, runID string) string {
	return prefix + runID + "_reel.mp4"
}

// cleanKey rejects keys that would escape the bucket.
func cleanKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("empty object key")
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return cleaned, nil
}

func joinURL(base string, parts ...string) string {
	segments := []string{strings.TrimRight(base, "/")}
	for _, part := range parts {
		if part = strings.Trim(part, "/"); part != "" {
			segments = append(segments, part)
		}
	}
	return strings.Join(segments, "/")
}
