package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigInitAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, "Configuration valid")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	out, _, err = runCLI(t, []string{"config", "validate"}, target)
	if err != nil {
		t.Fatalf("validate sample: %v", err)
	}
	requireContains(t, out, "Warning: image.api_key is required")
	requireContains(t, out, "Configuration valid")
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	setupCLITestEnv(t)
	target := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(target, []byte("# existing\n"), 0o644); err != nil {
		t.Fatalf("seed config: %v", err)
	}

	_, _, err := runCLI(t, []string{"config", "init", "--path", target}, "")
	if err == nil {
		t.Fatal("expected error for existing config")
	}
	requireContains(t, err.Error(), "--overwrite")

	if _, _, err := runCLI(t, []string{"config", "init", "--path", target, "--overwrite"}, ""); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	requireContains(t, string(data), "[generation]")
}

func TestConfigValidateReportsParseErrors(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[paths\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	_, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err == nil {
		t.Fatal("expected parse error")
	}
	requireContains(t, err.Error(), "parse config")
}
