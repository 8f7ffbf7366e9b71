package muxer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"reelsmith/internal/services"
)

func writeInputs(t *testing.T) Request {
	t.Helper()
	dir := t.TempDir()
	req := Request{
		VideoPath:  filepath.Join(dir, "temp_video.mp4"),
		AudioPath:  filepath.Join(dir, "temp_audio.mp3"),
		OutputPath: filepath.Join(dir, "final_output.mp4"),
	}
	for _, path := range []string{req.VideoPath, req.AudioPath} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	return req
}

func containsPair(args []string, flag, value string) bool {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestMuxBuildsArgumentVector(t *testing.T) {
	req := writeInputs(t)
	var gotName string
	var gotArgs []string
	m := New("/opt/ffmpeg", nil, WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		gotName = name
		gotArgs = args
		return nil, nil
	}))

	if err := m.Mux(context.Background(), req); err != nil {
		t.Fatalf("Mux returned error: %v", err)
	}
	if gotName != "/opt/ffmpeg" {
		t.Fatalf("unexpected binary %q", gotName)
	}
	for _, pair := range [][2]string{
		{"-c:v", "copy"},
		{"-c:a", "aac"},
		{"-movflags", "+faststart"},
		{"-map", "0:v"},
		{"-map", "1:a"},
	} {
		if !containsPair(gotArgs, pair[0], pair[1]) {
			t.Fatalf("expected %s %s in %v", pair[0], pair[1], gotArgs)
		}
	}
	if gotArgs[len(gotArgs)-1] != req.OutputPath {
		t.Fatalf("expected output path last, got %v", gotArgs)
	}
	if slices.Index(gotArgs, req.VideoPath) > slices.Index(gotArgs, req.AudioPath) {
		t.Fatalf("expected video input before audio input: %v", gotArgs)
	}
}

func TestMuxNonZeroExitIsSubprocessError(t *testing.T) {
	req := writeInputs(t)
	m := New("ffmpeg", nil, WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return []byte("Invalid data found when processing input"), errors.New("exit status 1")
	}))

	err := m.Mux(context.Background(), req)
	if !errors.Is(err, services.ErrSubprocess) {
		t.Fatalf("expected ErrSubprocess, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid data found") {
		t.Fatalf("expected stderr tail in error, got %v", err)
	}
}

func TestMuxMissingInputIsValidation(t *testing.T) {
	req := writeInputs(t)
	if err := os.Remove(req.AudioPath); err != nil {
		t.Fatal(err)
	}
	called := false
	m := New("ffmpeg", nil, WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		called = true
		return nil, nil
	}))
	if err := m.Mux(context.Background(), req); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if called {
		t.Fatal("runner should not be invoked with missing inputs")
	}
}

func TestMuxReportsVideoBeforeAudio(t *testing.T) {
	m := New("ffmpeg", nil, WithCommandRunner(func(ctx context.Context, name string, args ...string) ([]byte, error) {
		return nil, nil
	}))
	req := Request{OutputPath: filepath.Join(t.TempDir(), "out.mp4")}
	for range 20 {
		err := m.Mux(context.Background(), req)
		if !errors.Is(err, services.ErrValidation) || !strings.Contains(err.Error(), "video path required") {
			t.Fatalf("expected video path error first, got %v", err)
		}
	}
}

func TestMuxSpawnFailureIsSubprocessError(t *testing.T) {
	req := writeInputs(t)
	m := New(filepath.Join(t.TempDir(), "no-such-ffmpeg"), nil)
	if err := m.Mux(context.Background(), req); !errors.Is(err, services.ErrSubprocess) {
		t.Fatalf("expected ErrSubprocess, got %v", err)
	}
}

func TestTailKeepsEnd(t *testing.T) {
	long := strings.Repeat("a", stderrTailSize) + "END"
	got := tail([]byte(long))
	if len(got) != stderrTailSize || !strings.HasSuffix(got, "END") {
		t.Fatalf("unexpected tail length %d", len(got))
	}
}
