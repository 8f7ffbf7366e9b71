package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"reelsmith/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Image.APIKey = "test"
	cfgVal.Video.APIKey = "test"
	cfgVal.LLM.APIKey = "test"
	cfgVal.Speech.APIKey = "test"
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Storage.Dir = filepath.Join(base, "objects")
	cfgVal.API.Bind = "127.0.0.1:0"
	cfgVal.Video.PollIntervalSeconds = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithServiceURL points every external capability at the provided base URL.
func WithServiceURL(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Image.BaseURL = baseURL
		b.cfg.Video.BaseURL = baseURL
		b.cfg.LLM.BaseURL = baseURL
		b.cfg.Speech.BaseURL = baseURL
	}
}

// WithJWTSecret enables bearer authentication on the API.
func WithJWTSecret(secret string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.API.JWTSecret = secret
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// WithFFmpegStub installs an ffmpeg stub that writes a few bytes to its final
// argument (the output path) whenever it is called with more than one
// argument, and points cfg.FFmpeg.Binary at it.
func WithFFmpegStub() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nif [ \"$#\" -gt 1 ]; then\n  for last; do :; done\n  printf 'muxed' > \"$last\"\nfi\nexit 0\n")
		target := filepath.Join(binDir, "ffmpeg")
		if err := os.WriteFile(target, script, 0o755); err != nil {
			b.t.Fatalf("write ffmpeg stub: %v", err)
		}
		b.cfg.FFmpeg.Binary = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.WorkDir)
}
