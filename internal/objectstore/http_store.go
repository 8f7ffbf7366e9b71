package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"reelsmith/internal/services"
)

// HTTPConfig configures an HTTP PUT backend.
type HTTPConfig struct {
	Endpoint string
	Bucket   string
	Token    string
}

// HTTPStore uploads objects with HTTP PUT.
type HTTPStore struct {
	cfg        HTTPConfig
	httpClient *http.Client
}

// HTTPOption customizes the HTTP store.
type HTTPOption func(*HTTPStore)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(s *HTTPStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

// NewHTTPStore constructs an HTTP PUT store.
func NewHTTPStore(cfg HTTPConfig, opts ...HTTPOption) *HTTPStore {
	store := &HTTPStore{
		cfg: HTTPConfig{
			Endpoint: strings.TrimRight(strings.TrimSpace(cfg.Endpoint), "/"),
			Bucket:   strings.Trim(strings.TrimSpace(cfg.Bucket), "/"),
			Token:    strings.TrimSpace(cfg.Token),
		},
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Put streams localPath to `<endpoint>/<bucket>/<key>`.
func (s *HTTPStore) Put(ctx context.Context, key, localPath, contentType string) (string, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, stageName, "put", "", err)
	}
	if s.cfg.Endpoint == "" {
		return "", services.Wrap(services.ErrConfiguration, stageName, "put", "storage endpoint not configured", nil)
	}
	f, err := os.Open(localPath)
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, stageName, "put", "open artifact", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, stageName, "put", "stat artifact", err)
	}

	target := joinURL(s.cfg.Endpoint, s.cfg.Bucket, cleaned)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, target, f)
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, stageName, "put", "new request", err)
	}
	req.ContentLength = info.Size()
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrTransfer, stageName, "put", "http error", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", services.Wrap(services.ErrTransfer, stageName, "put",
			fmt.Sprintf("http %d: %s", resp.StatusCode, services.Snippet(body)), nil)
	}
	if location := strings.TrimSpace(resp.Header.Get("Location")); location != "" {
		return location, nil
	}
	return target, nil
}
