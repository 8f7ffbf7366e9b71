package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"reelsmith/internal/fileutil"
	"reelsmith/internal/services"
)

const stageName = "speech"

// Config captures the runtime settings required to talk to the speech API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Request describes one narration.
type Request struct {
	Text   string
	Voice  string
	Format string
}

// Client wraps the speech synthesis endpoint.
type Client struct {
	cfg        Config
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

// NewClient constructs a speech client.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: time.Duration(max(cfg.TimeoutSeconds, 0)) * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type speechRequest struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format,omitempty"`
}

var errEmptyAudio = errors.New("empty audio payload")

// Synthesize narrates req.Text into dest and returns the number of bytes written.
func (c *Client) Synthesize(ctx context.Context, req Request, dest string) (int64, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return 0, services.Wrap(services.ErrValidation, stageName, "synthesize", "text required", nil)
	}
	if strings.TrimSpace(dest) == "" {
		return 0, services.Wrap(services.ErrValidation, stageName, "synthesize", "destination required", nil)
	}
	if c.cfg.APIKey == "" {
		return 0, services.Wrap(services.ErrConfiguration, stageName, "synthesize", "api key required", nil)
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "audio", "speech")
	if err != nil {
		return 0, services.Wrap(services.ErrConfiguration, stageName, "synthesize", "build url", err)
	}
	encoded, err := json.Marshal(speechRequest{
		Model:          c.cfg.Model,
		Input:          text,
		Voice:          strings.TrimSpace(req.Voice),
		ResponseFormat: strings.TrimSpace(req.Format),
	})
	if err != nil {
		return 0, services.Wrap(services.ErrUpstream, stageName, "synthesize", "encode body", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return 0, services.Wrap(services.ErrUpstream, stageName, "synthesize", "new request", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, services.Wrap(services.ErrUpstream, stageName, "synthesize", "http error", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return 0, services.Wrap(services.ErrUpstream, stageName, "synthesize",
			fmt.Sprintf("http %d: %s", resp.StatusCode, services.Snippet(body)), nil)
	}

	written, err := fileutil.WriteAtomic(dest, &nonEmptyReader{r: resp.Body})
	switch {
	case errors.Is(err, errEmptyAudio):
		return 0, services.Wrap(services.ErrUpstream, stageName, "synthesize", "response contained no audio", nil)
	case err != nil && ctx.Err() == nil && isLocalWriteError(err):
		return written, services.Wrap(services.ErrTransfer, stageName, "synthesize", "write audio", err)
	case err != nil:
		return written, services.Wrap(services.ErrUpstream, stageName, "synthesize", "read audio", err)
	}
	return written, nil
}

// nonEmptyReader reports errEmptyAudio when the stream ends before any byte.
type nonEmptyReader struct {
	r    io.Reader
	seen bool
}

func (n *nonEmptyReader) Read(p []byte) (int, error) {
	count, err := n.r.Read(p)
	if count > 0 {
		n.seen = true
	}
	if errors.Is(err, io.EOF) && !n.seen {
		return count, errEmptyAudio
	}
	return count, err
}

func isLocalWriteError(err error) bool {
	var pathErr *os.PathError
	var linkErr *os.LinkError
	return errors.As(err, &pathErr) || errors.As(err, &linkErr)
}
