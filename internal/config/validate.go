package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// Validate ensures the configuration is structurally usable. Credentials are
// checked separately by ValidateGeneration so read-only commands work without
// them.
func (c *Config) Validate() error {
	if err := c.validateGeneration(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateMetadata(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Paths.StaleRunHours < 0 {
		return errors.New("paths.stale_run_hours must not be negative")
	}
	return nil
}

// ValidateGeneration checks everything a pipeline run needs beyond Validate:
// the API keys of every external capability and, for the s3 backend, the
// storage credentials.
func (c *Config) ValidateGeneration() error {
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = "~/.config/reelsmith/config.toml"
	}
	type requiredKey struct {
		key   string
		value string
		env   string
	}
	required := []requiredKey{
		{"image.api_key", c.Image.APIKey, "OPENAI_API_KEY"},
		{"video.api_key", c.Video.APIKey, "RUNWAY_API_KEY"},
		{"llm.api_key", c.LLM.APIKey, "OPENAI_API_KEY"},
		{"speech.api_key", c.Speech.APIKey, "OPENAI_API_KEY"},
	}
	if c.Storage.Backend == StorageBackendS3 {
		required = append(required,
			requiredKey{"storage.access_key_id", c.Storage.AccessKeyID, "AWS_ACCESS_KEY_ID"},
			requiredKey{"storage.secret_access_key", c.Storage.SecretAccessKey, "AWS_SECRET_ACCESS_KEY"},
		)
	}
	for _, req := range required {
		if strings.TrimSpace(req.value) == "" {
			return fmt.Errorf("%s is required. Set %s env var or edit %s (create with 'reelsmith config init')", req.key, req.env, defaultPath)
		}
	}
	return nil
}

func (c *Config) validateGeneration() error {
	g := c.Generation
	fields := map[string]string{
		"generation.image_prompt":             g.ImagePrompt,
		"generation.motion_prompt":            g.MotionPrompt,
		"generation.commentary_system_prompt": g.CommentarySystemPrompt,
		"generation.commentary_user_prompt":   g.CommentaryUserPrompt,
		"generation.voice_id":                 g.VoiceID,
	}
	for _, key := range sortedKeys(fields) {
		if fields[key] == "" {
			return fmt.Errorf("%s must be set", key)
		}
	}
	if g.ClipDurationSeconds <= 0 {
		return errors.New("generation.clip_duration_seconds must be positive")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.PollIntervalSeconds <= 0 {
		return errors.New("video.poll_interval_seconds must be positive")
	}
	if c.Video.PollMaxAttempts <= 0 {
		return errors.New("video.poll_max_attempts must be positive")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	return ensureNonNegativeMap(map[string]int{
		"image.timeout_seconds":    c.Image.TimeoutSeconds,
		"video.timeout_seconds":    c.Video.TimeoutSeconds,
		"llm.timeout_seconds":      c.LLM.TimeoutSeconds,
		"speech.timeout_seconds":   c.Speech.TimeoutSeconds,
		"download.timeout_seconds": c.Download.TimeoutSeconds,
		"ffmpeg.timeout_seconds":   c.FFmpeg.TimeoutSeconds,
	})
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case StorageBackendFile:
		if c.Storage.PublicBaseURL == "" {
			return errors.New("storage.public_base_url must be set when storage.backend is \"file\"")
		}
	case StorageBackendHTTP:
		if c.Storage.Endpoint == "" {
			return errors.New("storage.endpoint must be set when storage.backend is \"http\"")
		}
	case StorageBackendS3:
		if strings.TrimSpace(c.Storage.Bucket) == "" {
			return errors.New("storage.bucket must be set when storage.backend is \"s3\"")
		}
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (want file, http, or s3)", c.Storage.Backend)
	}
	if strings.ContainsAny(c.Storage.Bucket, "/\\") {
		return errors.New("storage.bucket must not contain path separators")
	}
	return nil
}

func (c *Config) validateMetadata() error {
	switch c.Metadata.Backend {
	case MetadataBackendSQLite:
	case MetadataBackendPostgres:
		if c.Metadata.DSN == "" {
			return errors.New("metadata.dsn must be set when metadata.backend is \"postgres\" (or export DATABASE_URL)")
		}
	default:
		return fmt.Errorf("metadata.backend: unsupported value %q (want sqlite or postgres)", c.Metadata.Backend)
	}
	if !identifierPattern.MatchString(c.Metadata.Table) {
		return fmt.Errorf("metadata.table: %q is not a valid table name", c.Metadata.Table)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensureNonNegativeMap(values map[string]int) error {
	for _, key := range sortedKeys(values) {
		if values[key] < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
	}
	return nil
}
