package imagegen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"reelsmith/internal/services"
)

const stageName = "image"

// Config captures the runtime settings required to talk to the images API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client wraps the image generation endpoint.
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

// NewClient constructs an image client. A zero TimeoutSeconds leaves requests
// bounded only by the caller's context.
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

type generationRequest struct {
	Model          string `json:"model,omitempty"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size,omitempty"`
	ResponseFormat string `json:"response_format"`
}

type generationResponse struct {
	Data []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate requests a single image for prompt and returns its URL.
func (c *Client) Generate(ctx context.Context, prompt, size string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", services.Wrap(services.ErrValidation, stageName, "generate", "prompt required", nil)
	}
	if c.cfg.APIKey == "" {
		return "", services.Wrap(services.ErrConfiguration, stageName, "generate", "api key required", nil)
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "images", "generations")
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, stageName, "generate", "build url", err)
	}
	encoded, err := json.Marshal(generationRequest{
		Model:          c.cfg.Model,
		Prompt:         prompt,
		N:              1,
		Size:           strings.TrimSpace(size),
		ResponseFormat: "url",
	})
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, stageName, "generate", "encode body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, stageName, "generate", "new request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, stageName, "generate", "http error", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, stageName, "generate", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", services.Wrap(services.ErrUpstream, stageName, "generate",
			fmt.Sprintf("http %d: %s", resp.StatusCode, services.Snippet(body)), nil)
	}
	var parsed generationResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.Wrap(services.ErrUpstream, stageName, "generate", "decode response", err)
	}
	if parsed.Error != nil {
		return "", services.Wrap(services.ErrUpstream, stageName, "generate", "api error: "+strings.TrimSpace(parsed.Error.Message), nil)
	}
	if len(parsed.Data) > 0 {
		if u := strings.TrimSpace(parsed.Data[0].URL); u != "" {
			return u, nil
		}
	}
	return "", services.Wrap(services.ErrUpstream, stageName, "generate", "response contained no image url", nil)
}
