package muxer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"reelsmith/internal/logging"
	"reelsmith/internal/services"
)

const (
	stageName      = "mux"
	defaultBinary  = "ffmpeg"
	stderrTailSize = 2048
)

// Request describes the inputs and output of a mux.
type Request struct {
	VideoPath  string
	AudioPath  string
	OutputPath string
}

// commandRunner executes name with args and returns the captured stderr.
type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Muxer runs ffmpeg to merge a video and an audio track.
type Muxer struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
	run     commandRunner
}

// Option customizes the muxer.
type Option func(*Muxer)

// WithTimeout bounds each ffmpeg invocation. Zero leaves it unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Muxer) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func WithCommandRunner(r commandRunner) Option {
	return func(m *Muxer) {
		if r != nil {
			m.run = r
		}
	}
}

// New constructs a muxer using the given ffmpeg binary.
func New(binary string, logger *slog.Logger, opts ...Option) *Muxer {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = defaultBinary
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	m := &Muxer{
		binary: binary,
		logger: logging.NewComponentLogger(logger, "muxer"),
		run:    defaultCommandRunner,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Args returns the ffmpeg argument vector for req.
func Args(req Request) []string {
	return []string{
		"-hide_banner",
		"-y",
		"-i", req.VideoPath,
		"-i", req.AudioPath,
		"-map", "0:v",
		"-map", "1:a",
		"-c:v", "copy",
		"-c:a", "aac",
		"-movflags", "+faststart",
		req.OutputPath,
	}
}

// Mux writes req.OutputPath from req.VideoPath and req.AudioPath.
func (m *Muxer) Mux(ctx context.Context, req Request) error {
	if strings.TrimSpace(req.OutputPath) == "" {
		return services.Wrap(services.ErrValidation, stageName, "mux", "output path required", nil)
	}
	inputs := []struct{ label, path string }{
		{"video", req.VideoPath},
		{"audio", req.AudioPath},
	}
	for _, in := range inputs {
		if strings.TrimSpace(in.path) == "" {
			return services.Wrap(services.ErrValidation, stageName, "mux", in.label+" path required", nil)
		}
		if _, err := os.Stat(in.path); err != nil {
			return services.Wrap(services.ErrValidation, stageName, "mux", in.label+" input missing", err)
		}
	}

	runCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	args := Args(req)
	m.logger.Debug("executing ffmpeg",
		logging.String("binary", m.binary),
		logging.String("args", strings.Join(args, " ")),
	)
	started := time.Now()
	stderr, err := m.run(runCtx, m.binary, args...)
	if len(stderr) > 0 {
		m.logger.Debug("ffmpeg stderr", logging.String("stderr", tail(stderr)))
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrSubprocess, stageName, "ffmpeg",
			fmt.Sprintf("%v: %s", err, tail(stderr)), err)
	}

	m.logger.Info("muxed narration into clip",
		logging.String("output", req.OutputPath),
		logging.Duration("elapsed", time.Since(started)),
		logging.String(logging.FieldEventType, "mux_complete"),
	)
	return nil
}

func tail(stderr []byte) string {
	trimmed := bytes.TrimSpace(stderr)
	if len(trimmed) > stderrTailSize {
		trimmed = trimmed[len(trimmed)-stderrTailSize:]
	}
	return string(trimmed)
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.Bytes(), err
}
