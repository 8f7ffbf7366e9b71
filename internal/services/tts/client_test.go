package tts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"reelsmith/internal/services"
)

func TestSynthesizeWritesAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/speech" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var body speechRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Voice != "onyx" || body.ResponseFormat != "mp3" || body.Input != "What a goal!" || body.Model != "tts-1" {
			t.Fatalf("unexpected request %+v", body)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		_, _ = w.Write([]byte("ID3-audio-bytes"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "temp_audio.mp3")
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "tts-1"})
	n, err := client.Synthesize(context.Background(), Request{Text: "What a goal!", Voice: "onyx", Format: "mp3"}, dest)
	if err != nil {
		t.Fatalf("Synthesize returned error: %v", err)
	}
	if n != int64(len("ID3-audio-bytes")) {
		t.Fatalf("unexpected byte count %d", n)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read audio: %v", err)
	}
	if string(data) != "ID3-audio-bytes" {
		t.Fatalf("unexpected audio %q", data)
	}
}

func TestSynthesizeEmptyBodyIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	dir := t.TempDir()
	dest := filepath.Join(dir, "temp_audio.mp3")
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := client.Synthesize(context.Background(), Request{Text: "hi", Voice: "onyx"}, dest)
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if entries, _ := os.ReadDir(dir); len(entries) != 0 {
		t.Fatalf("expected no files left behind, found %d", len(entries))
	}
}

func TestSynthesizeHTTPFailureIsUpstream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "voice not found", http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := client.Synthesize(context.Background(), Request{Text: "hi", Voice: "nope"}, filepath.Join(t.TempDir(), "a.mp3"))
	if !errors.Is(err, services.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestSynthesizeUnwritableDestinationIsTransfer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("audio"))
	}))
	defer server.Close()

	dest := filepath.Join(t.TempDir(), "missing-dir", "a.mp3")
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := client.Synthesize(context.Background(), Request{Text: "hi", Voice: "onyx"}, dest)
	if !errors.Is(err, services.ErrTransfer) {
		t.Fatalf("expected ErrTransfer, got %v", err)
	}
}
