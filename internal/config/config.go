package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	WorkDir       string `toml:"work_dir"`
	DataDir       string `toml:"data_dir"`
	LogDir        string `toml:"log_dir"`
	StaleRunHours int    `toml:"stale_run_hours"`
}

// API contains configuration for the HTTP trigger and listing surface.
type API struct {
	Bind          string `toml:"bind"`
	AllowedOrigin string `toml:"allowed_origin"`
	JWTSecret     string `toml:"jwt_secret"`
}

// Generation holds the fixed content prompt and narration parameters of a run.
type Generation struct {
	ImagePrompt            string `toml:"image_prompt"`
	ImageSize              string `toml:"image_size"`
	MotionPrompt           string `toml:"motion_prompt"`
	ClipDurationSeconds    int    `toml:"clip_duration_seconds"`
	CommentarySystemPrompt string `toml:"commentary_system_prompt"`
	CommentaryUserPrompt   string `toml:"commentary_user_prompt"`
	VoiceID                string `toml:"voice_id"`
	AudioFormat            string `toml:"audio_format"`
	Title                  string `toml:"title"`
}

// Image contains configuration for the image generation API.
type Image struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Video contains configuration for the image-to-video API and its polling budget.
type Video struct {
	APIKey              string `toml:"api_key"`
	BaseURL             string `toml:"base_url"`
	APIVersion          string `toml:"api_version"`
	Model               string `toml:"model"`
	Ratio               string `toml:"ratio"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
	PollMaxAttempts     int    `toml:"poll_max_attempts"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
}

// LLM contains chat completion settings used for commentary.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Speech contains text-to-speech settings.
type Speech struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Download contains settings for fetching generated clips.
type Download struct {
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// FFmpeg contains settings for the muxing subprocess.
type FFmpeg struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Storage contains object storage settings for published videos.
type Storage struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	PublicBaseURL string `toml:"public_base_url"`
	Endpoint      string `toml:"endpoint"`
	Bucket        string `toml:"bucket"`
	Token         string `toml:"token"`
	KeyPrefix     string `toml:"key_prefix"`

	// s3 backend
	Region          string `toml:"region"`
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	UsePathStyle    bool   `toml:"use_path_style"`
}

// Metadata contains content record store settings.
type Metadata struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
	DSN     string `toml:"dsn"`
	Table   string `toml:"table"`
}

// Notifications contains configuration for run completion/failure events.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	AMQPURL        string `toml:"amqp_url"`
	AMQPExchange   string `toml:"amqp_exchange"`
	AMQPRoutingKey string `toml:"amqp_routing_key"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for reelsmith.
//
// Configuration sections by subsystem:
//   - Paths: working, data, and log directories
//   - API: HTTP trigger surface bind address, CORS origin, auth secret
//   - Generation: fixed prompts, clip duration, voice, record title
//   - Image / Video / LLM / Speech: external capability endpoints
//   - Download / FFmpeg: clip fetch and muxing subprocess settings
//   - Storage: object store backend for published videos
//   - Metadata: content record store backend
//   - Notifications: ntfy and AMQP run events
//   - Logging: log format and level
type Config struct {
	Paths         Paths         `toml:"paths"`
	API           API           `toml:"api"`
	Generation    Generation    `toml:"generation"`
	Image         Image         `toml:"image"`
	Video         Video         `toml:"video"`
	LLM           LLM           `toml:"llm"`
	Speech        Speech        `toml:"speech"`
	Download      Download      `toml:"download"`
	FFmpeg        FFmpeg        `toml:"ffmpeg"`
	Storage       Storage       `toml:"storage"`
	Metadata      Metadata      `toml:"metadata"`
	Notifications Notifications `toml:"notifications"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelsmith/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelsmith.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run needs. The file storage
// directory is only created when the file backend is selected.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.WorkDir, c.Paths.DataDir, c.Paths.LogDir}
	if c.Storage.Backend == StorageBackendFile {
		dirs = append(dirs, c.Storage.Dir)
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable used for muxing.
func (c *Config) FFmpegBinary() string {
	if binary := strings.TrimSpace(c.FFmpeg.Binary); binary != "" {
		return binary
	}
	return defaultFFmpegBinary
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// MetadataPath returns the SQLite database path for content records.
func (c *Config) MetadataPath() string {
	if path := strings.TrimSpace(c.Metadata.Path); path != "" {
		return path
	}
	return filepath.Join(c.Paths.DataDir, "content.db")
}
