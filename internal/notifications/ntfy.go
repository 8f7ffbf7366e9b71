package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "reelsmith/0.1.0"

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
	click    string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func newNtfyService(endpoint string, timeout time.Duration) *ntfyService {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

func (n *ntfyService) Publish(ctx context.Context, msg Message) error {
	return n.send(ctx, formatPayload(msg))
}

func (n *ntfyService) Close() error { return nil }

func formatPayload(msg Message) payload {
	switch msg.Event {
	case EventRunCompleted:
		data := payload{
			title: "Reelsmith - Reel Published",
			tags:  []string{"reelsmith", "run", "completed"},
		}
		if msg.Record != nil {
			data.message = fmt.Sprintf("🎬 %s published\n%s", msg.Record.Title, msg.Record.Description)
			data.click = msg.Record.VideoURL
		} else {
			data.message = "🎬 Reel published"
		}
		return data
	case EventRunFailed:
		message := "❌ Generation failed"
		if msg.Kind != "" {
			message += " (" + msg.Kind + ")"
		}
		if msg.Error != "" {
			message += ": " + msg.Error
		}
		if msg.RunID != "" {
			message += "\nRun: " + msg.RunID
		}
		return payload{
			title:    "Reelsmith - Run Failed",
			message:  message,
			tags:     []string{"reelsmith", "error", "alert"},
			priority: "high",
		}
	default:
		return payload{
			title:    "Reelsmith - Test",
			message:  "🧪 Notification system test",
			tags:     []string{"reelsmith", "test"},
			priority: "low",
		}
	}
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}
	if data.click != "" {
		req.Header.Set("Click", data.click)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
