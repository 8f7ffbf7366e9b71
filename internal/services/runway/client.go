package runway

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

const stageName = "video"

// Config captures the runtime settings required to talk to Runway.
type Config struct {
	APIKey         string
	BaseURL        string
	APIVersion     string
	TimeoutSeconds int
}

// ImageToVideo describes a single generation job.
type ImageToVideo struct {
	Model       string `json:"model"`
	PromptImage string `json:"promptImage"`
	PromptText  string `json:"promptText,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	Ratio       string `json:"ratio,omitempty"`
}

// Client wraps the Runway task API.
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

// NewClient constructs a Runway client. A zero TimeoutSeconds leaves requests
// bounded only by the caller's context.
func NewClient(cfg Config, opts ...Option) *Client {
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			APIVersion:     strings.TrimSpace(cfg.APIVersion),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: time.Duration(max(cfg.TimeoutSeconds, 0)) * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Create submits an image-to-video job and returns its task identifier.
func (c *Client) Create(ctx context.Context, job ImageToVideo) (string, error) {
	if strings.TrimSpace(job.PromptImage) == "" {
		return "", services.Wrap(services.ErrValidation, stageName, "create", "prompt image required", nil)
	}
	encoded, err := json.Marshal(job)
	if err != nil {
		return "", services.Wrap(services.ErrUpstream, stageName, "create", "encode body", err)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "create", encoded, &created, "image_to_video"); err != nil {
		return "", err
	}
	if strings.TrimSpace(created.ID) == "" {
		return "", services.Wrap(services.ErrUpstream, stageName, "create", "response missing task id", nil)
	}
	return created.ID, nil
}

// Retrieve fetches the current state of a task.
func (c *Client) Retrieve(ctx context.Context, taskID string) (Task, error) {
	var task Task
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return task, services.Wrap(services.ErrValidation, stageName, "retrieve", "task id required", nil)
	}
	if err := c.do(ctx, http.MethodGet, "retrieve", nil, &task, "tasks", taskID); err != nil {
		return task, err
	}
	if task.ID == "" {
		task.ID = taskID
	}
	return task, nil
}

func (c *Client) do(ctx context.Context, method, op string, payload []byte, target any, segments ...string) error {
	if c.cfg.APIKey == "" {
		return services.Wrap(services.ErrConfiguration, stageName, op, "api key required", nil)
	}
	endpoint, err := url.JoinPath(c.cfg.BaseURL, segments...)
	if err != nil {
		return services.Wrap(services.ErrConfiguration, stageName, op, "build url", err)
	}
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return services.Wrap(services.ErrUpstream, stageName, op, "new request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIVersion != "" {
		req.Header.Set("X-Runway-Version", c.cfg.APIVersion)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrUpstream, stageName, op, "http error", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return services.Wrap(services.ErrUpstream, stageName, op, "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return services.Wrap(services.ErrUpstream, stageName, op,
			fmt.Sprintf("http %d: %s", resp.StatusCode, services.Snippet(data)), nil)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return services.Wrap(services.ErrUpstream, stageName, op, "decode response", err)
	}
	return nil
}
