package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"reelsmith/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OPENAI_API_KEY", "RUNWAY_API_KEY", "RUNWAYML_API_SECRET",
		"STORAGE_BUCKET", "STORAGE_TOKEN", "METADATA_TABLE", "DATABASE_URL",
		"NTFY_TOPIC", "AMQP_URL", "REELSMITH_JWT_SECRET",
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_REGION",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfigUsesEnvKeysAndExpandsPaths(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENAI_API_KEY", "openai-key")
	t.Setenv("RUNWAYML_API_SECRET", "runway-secret")
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".local", "share", "reelsmith", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	if cfg.API.Bind != "127.0.0.1:5000" {
		t.Fatalf("unexpected api bind: %q", cfg.API.Bind)
	}
	for name, key := range map[string]string{
		"image":  cfg.Image.APIKey,
		"llm":    cfg.LLM.APIKey,
		"speech": cfg.Speech.APIKey,
	} {
		if key != "openai-key" {
			t.Fatalf("expected %s key from OPENAI_API_KEY, got %q", name, key)
		}
	}
	if cfg.Video.APIKey != "runway-secret" {
		t.Fatalf("expected runway key from RUNWAYML_API_SECRET, got %q", cfg.Video.APIKey)
	}
	if cfg.Video.PollIntervalSeconds != 5 || cfg.Video.PollMaxAttempts != 30 {
		t.Fatalf("unexpected poll budget: %d x %d", cfg.Video.PollMaxAttempts, cfg.Video.PollIntervalSeconds)
	}
	if cfg.Storage.KeyPrefix != "videos/" {
		t.Fatalf("unexpected key prefix: %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Generation.Title != "Football Highlight Reel" {
		t.Fatalf("unexpected title: %q", cfg.Generation.Title)
	}
	if cfg.Video.TimeoutSeconds != 0 || cfg.FFmpeg.TimeoutSeconds != 0 {
		t.Fatal("expected per-call timeouts to default to unbounded")
	}
	if got := cfg.MetadataPath(); got != filepath.Join(cfg.Paths.DataDir, "content.db") {
		t.Fatalf("unexpected metadata path: %q", got)
	}
	if err := cfg.ValidateGeneration(); err != nil {
		t.Fatalf("ValidateGeneration returned error: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "reelsmith.toml")

	type payload struct {
		Paths struct {
			WorkDir string `toml:"work_dir"`
		} `toml:"paths"`
		Video struct {
			PollIntervalSeconds int    `toml:"poll_interval_seconds"`
			PollMaxAttempts     int    `toml:"poll_max_attempts"`
			BaseURL             string `toml:"base_url"`
		} `toml:"video"`
		Metadata struct {
			Table string `toml:"table"`
		} `toml:"metadata"`
	}
	custom := payload{}
	custom.Paths.WorkDir = filepath.Join(tempDir, "work")
	custom.Video.PollIntervalSeconds = 2
	custom.Video.PollMaxAttempts = 10
	custom.Video.BaseURL = "https://runway.example/v1/"
	custom.Metadata.Table = "reels"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.WorkDir != custom.Paths.WorkDir {
		t.Fatalf("unexpected work dir: %q", cfg.Paths.WorkDir)
	}
	if cfg.Video.PollIntervalSeconds != 2 || cfg.Video.PollMaxAttempts != 10 {
		t.Fatalf("unexpected poll budget: %+v", cfg.Video)
	}
	if cfg.Video.BaseURL != "https://runway.example/v1" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Video.BaseURL)
	}
	if cfg.Video.Model != config.Default().Video.Model {
		t.Fatalf("expected default model preserved, got %q", cfg.Video.Model)
	}
	if cfg.Metadata.Table != "reels" {
		t.Fatalf("unexpected table: %q", cfg.Metadata.Table)
	}
}

func TestEnvVarOverridesConfigFileForSecrets(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "reelsmith.toml")

	contents := `
[llm]
api_key = "file-llm"

[video]
api_key = "file-runway"

[storage]
token = "file-token"
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("OPENAI_API_KEY", "env-openai")
	t.Setenv("RUNWAY_API_KEY", "env-runway")
	t.Setenv("STORAGE_TOKEN", "env-token")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.LLM.APIKey != "env-openai" {
		t.Errorf("expected LLM key from env, got %q", cfg.LLM.APIKey)
	}
	if cfg.Video.APIKey != "env-runway" {
		t.Errorf("expected runway key from env, got %q", cfg.Video.APIKey)
	}
	if cfg.Storage.Token != "env-token" {
		t.Errorf("expected storage token from env, got %q", cfg.Storage.Token)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "OPENAI_API_KEY") {
		t.Fatalf("sample config missing environment hints: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Video.PollMaxAttempts != 30 {
		t.Fatalf("expected sample poll attempts 30, got %d", cfg.Video.PollMaxAttempts)
	}
	if runtime.GOOS != "windows" {
		if !strings.Contains(cfg.Paths.WorkDir, "reelsmith") {
			t.Fatalf("expected work dir to contain reelsmith, got %q", cfg.Paths.WorkDir)
		}
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero poll interval", func(c *config.Config) { c.Video.PollIntervalSeconds = 0 }},
		{"zero poll attempts", func(c *config.Config) { c.Video.PollMaxAttempts = 0 }},
		{"zero clip duration", func(c *config.Config) { c.Generation.ClipDurationSeconds = 0 }},
		{"empty image prompt", func(c *config.Config) { c.Generation.ImagePrompt = "" }},
		{"negative timeout", func(c *config.Config) { c.LLM.TimeoutSeconds = -1 }},
		{"unknown storage backend", func(c *config.Config) { c.Storage.Backend = "ftp" }},
		{"s3 storage without bucket", func(c *config.Config) {
			c.Storage.Backend = config.StorageBackendS3
			c.Storage.Bucket = ""
		}},
		{"http storage without endpoint", func(c *config.Config) { c.Storage.Backend = config.StorageBackendHTTP }},
		{"postgres without dsn", func(c *config.Config) { c.Metadata.Backend = config.MetadataBackendPostgres }},
		{"bad table name", func(c *config.Config) { c.Metadata.Table = "records; drop table x" }},
		{"bad log format", func(c *config.Config) { c.Logging.Format = "xml" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestValidateGenerationRequiresKeys(t *testing.T) {
	cfg := config.Default()
	err := cfg.ValidateGeneration()
	if err == nil {
		t.Fatal("expected error without API keys")
	}
	if !strings.Contains(err.Error(), "image.api_key") {
		t.Fatalf("expected first missing key to be reported, got %v", err)
	}
	cfg.Image.APIKey = "a"
	cfg.Video.APIKey = "b"
	cfg.LLM.APIKey = "c"
	cfg.Speech.APIKey = "d"
	if err := cfg.ValidateGeneration(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadS3StorageUsesAWSEnvironment(t *testing.T) {
	clearEnv(t)
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("AWS_ACCESS_KEY_ID", "AKIDEXAMPLE")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	configPath := filepath.Join(tempDir, "reelsmith.toml")
	body := "[storage]\nbackend = \"s3\"\nbucket = \"reels\"\nendpoint = \"http://minio:9000\"\nuse_path_style = true\n"
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	s := cfg.Storage
	if s.AccessKeyID != "AKIDEXAMPLE" || s.SecretAccessKey != "secret" {
		t.Fatalf("expected credentials from env, got %q/%q", s.AccessKeyID, s.SecretAccessKey)
	}
	if s.Region != "us-east-1" || !s.UsePathStyle || s.Endpoint != "http://minio:9000" {
		t.Fatalf("unexpected s3 settings: %+v", s)
	}
}

func TestValidateGenerationRequiresS3Credentials(t *testing.T) {
	cfg := config.Default()
	cfg.Image.APIKey, cfg.Video.APIKey, cfg.LLM.APIKey, cfg.Speech.APIKey = "a", "b", "c", "d"
	cfg.Storage.Backend = config.StorageBackendS3
	err := cfg.ValidateGeneration()
	if err == nil || !strings.Contains(err.Error(), "storage.access_key_id") {
		t.Fatalf("expected missing access key error, got %v", err)
	}
	cfg.Storage.AccessKeyID = "id"
	cfg.Storage.SecretAccessKey = "secret"
	if err := cfg.ValidateGeneration(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestEnsureDirectoriesCreatesStorageDirForFileBackend(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkDir = filepath.Join(base, "work")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Storage.Dir = filepath.Join(base, "objects")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.WorkDir, cfg.Paths.DataDir, cfg.Paths.LogDir, cfg.Storage.Dir} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s: %v", dir, err)
		}
	}
}
