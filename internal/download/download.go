// Package download fetches remote artifacts (the generated clip) into
// session-owned local files.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"reelsmith/internal/fileutil"
	"reelsmith/internal/services"
)

const stageName = "download"

// Client streams remote URLs to disk.
type Client struct {
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a downloader. A zero timeout leaves transfers bounded
// only by the caller's context.
func NewClient(timeoutSeconds int, opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: time.Duration(max(timeoutSeconds, 0)) * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Fetch downloads rawURL into dest and returns the number of bytes written.
// Any failure wraps services.ErrTransfer and leaves nothing at dest.
func (c *Client) Fetch(ctx context.Context, rawURL, dest string) (int64, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return 0, services.Wrap(services.ErrValidation, stageName, "fetch", "url required", nil)
	}
	if strings.TrimSpace(dest) == "" {
		return 0, services.Wrap(services.ErrValidation, stageName, "fetch", "destination required", nil)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, services.Wrap(services.ErrTransfer, stageName, "fetch", "new request", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, services.Wrap(services.ErrTransfer, stageName, "fetch", "http error", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return 0, services.Wrap(services.ErrTransfer, stageName, "fetch", fmt.Sprintf("http %d", resp.StatusCode), nil)
	}
	written, err := fileutil.WriteAtomic(dest, resp.Body)
	if err != nil {
		return 0, services.Wrap(services.ErrTransfer, stageName, "fetch", "write body", err)
	}
	return written, nil
}
