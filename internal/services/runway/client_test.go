package runway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"reelsmith/internal/poll"
	"reelsmith/internal/services"
)

func noSleep(context.Context, time.Duration) error { return nil }

// taskServer answers task lookups with status(n) for the n-th check.
func taskServer(t *testing.T, checks *atomic.Int32, status func(n int) string, output string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/image_to_video":
			_ = json.NewEncoder(w).Encode(map[string]string{"id": "task-1"})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/tasks/task-1":
			n := int(checks.Add(1))
			fmt.Fprintf(w, `{"id":"task-1","status":%q,"output":%s}`, status(n), output)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func TestCreateSendsJobAndHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/image_to_video" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("X-Runway-Version"); got != "2024-11-06" {
			t.Fatalf("unexpected version header %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var job ImageToVideo
		if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
			t.Fatalf("decode job: %v", err)
		}
		if job.Model != "gen3a_turbo" || job.PromptImage != "https://img/a.png" || job.Duration != 5 || job.Ratio != "1280:768" {
			t.Fatalf("unexpected job %+v", job)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "abc"})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL + "/v1", APIVersion: "2024-11-06"})
	id, err := client.Create(context.Background(), ImageToVideo{
		Model:       "gen3a_turbo",
		PromptImage: "https://img/a.png",
		PromptText:  "pan",
		Duration:    5,
		Ratio:       "1280:768",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if id != "abc" {
		t.Fatalf("unexpected id %q", id)
	}
}

func TestCreateHTTPFailureIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad image"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL})
	_, err := client.Create(context.Background(), ImageToVideo{PromptImage: "x"})
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestAwaitSucceedsOnThirtiethPoll(t *testing.T) {
	var checks atomic.Int32
	server := taskServer(t, &checks, func(n int) string {
		switch {
		case n < 10:
			return "PENDING"
		case n < 15:
			return "THROTTLED"
		case n < 30:
			return "RUNNING"
		default:
			return "SUCCEEDED"
		}
	}, `["https://cdn/clip.mp4"]`)
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL + "/v1"})
	got, err := client.Await(context.Background(), "task-1", poll.Config{Interval: 5 * time.Second, MaxAttempts: 30}, poll.WithSleeper(noSleep))
	if err != nil {
		t.Fatalf("Await returned error: %v", err)
	}
	if got != "https://cdn/clip.mp4" {
		t.Fatalf("unexpected url %q", got)
	}
	if checks.Load() != 30 {
		t.Fatalf("expected 30 checks, got %d", checks.Load())
	}
}

func TestAwaitTimesOutAfterBudget(t *testing.T) {
	var checks atomic.Int32
	server := taskServer(t, &checks, func(n int) string {
		if n <= 31 {
			return "RUNNING"
		}
		return "SUCCEEDED"
	}, `"https://cdn/late.mp4"`)
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL + "/v1"})
	_, err := client.Await(context.Background(), "task-1", poll.Config{Interval: 5 * time.Second, MaxAttempts: 30}, poll.WithSleeper(noSleep))
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if checks.Load() != 30 {
		t.Fatalf("expected exactly 30 checks, got %d", checks.Load())
	}
}

func TestAwaitFailsImmediatelyOnTerminalFailure(t *testing.T) {
	for _, status := range []string{"FAILED", "CANCELED"} {
		t.Run(status, func(t *testing.T) {
			var checks atomic.Int32
			server := taskServer(t, &checks, func(int) string { return status }, `null`)
			defer server.Close()

			client := NewClient(Config{APIKey: "key", BaseURL: server.URL + "/v1"})
			_, err := client.Await(context.Background(), "task-1", poll.Config{Interval: time.Second, MaxAttempts: 30}, poll.WithSleeper(noSleep))
			if !errors.Is(err, services.ErrUpstream) {
				t.Fatalf("expected ErrUpstream, got %v", err)
			}
			if checks.Load() != 1 {
				t.Fatalf("expected no further checks, got %d", checks.Load())
			}
		})
	}
}

func TestAwaitSucceededWithoutOutputIsUpstream(t *testing.T) {
	var checks atomic.Int32
	server := taskServer(t, &checks, func(int) string { return "SUCCEEDED" }, `[]`)
	defer server.Close()

	client := NewClient(Config{APIKey: "key", BaseURL: server.URL + "/v1"})
	_, err := client.Await(context.Background(), "task-1", poll.Config{Interval: time.Second, MaxAttempts: 3}, poll.WithSleeper(noSleep))
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}
