package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelsmith/internal/config"
	"reelsmith/internal/testsupport"
)

var credentialEnv = []string{
	"OPENAI_API_KEY",
	"RUNWAY_API_KEY",
	"RUNWAYML_API_SECRET",
	"STORAGE_BUCKET",
	"STORAGE_TOKEN",
	"METADATA_TABLE",
	"DATABASE_URL",
	"NTFY_TOPIC",
	"AMQP_URL",
}

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	for _, key := range credentialEnv {
		t.Setenv(key, "")
	}

	env := &cliTestEnv{
		cfg:        cfg,
		configPath: filepath.Join(base, "reelsmith.toml"),
		baseDir:    base,
	}
	env.writeConfig(t)
	return env
}

// writeConfig persists env.cfg so CLI invocations load the same settings.
func (e *cliTestEnv) writeConfig(t *testing.T) {
	t.Helper()
	data, err := toml.Marshal(e.cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(e.configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--env-file", ""}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
