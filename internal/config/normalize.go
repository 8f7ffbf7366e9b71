package config

import (
	"fmt"
	"os"
	"strings"
)

// normalize trims values, expands paths, and applies environment overrides.
// Environment variables win over file values so secrets can stay out of the
// config file.
func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeGeneration()
	c.normalizeServices()
	if err := c.normalizeStorage(); err != nil {
		return err
	}
	if err := c.normalizeMetadata(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	c.API.AllowedOrigin = strings.TrimSpace(c.API.AllowedOrigin)
	c.API.JWTSecret = firstNonEmpty(envValue("REELSMITH_JWT_SECRET"), c.API.JWTSecret)
	return nil
}

func (c *Config) normalizeGeneration() {
	g := &c.Generation
	g.ImagePrompt = strings.TrimSpace(g.ImagePrompt)
	g.ImageSize = strings.TrimSpace(g.ImageSize)
	if g.ImageSize == "" {
		g.ImageSize = defaultImageSize
	}
	g.MotionPrompt = strings.TrimSpace(g.MotionPrompt)
	g.CommentarySystemPrompt = strings.TrimSpace(g.CommentarySystemPrompt)
	g.CommentaryUserPrompt = strings.TrimSpace(g.CommentaryUserPrompt)
	g.VoiceID = strings.TrimSpace(g.VoiceID)
	g.AudioFormat = strings.ToLower(strings.TrimSpace(g.AudioFormat))
	if g.AudioFormat == "" {
		g.AudioFormat = defaultAudioFormat
	}
	g.Title = strings.TrimSpace(g.Title)
	if g.Title == "" {
		g.Title = defaultTitle
	}
}

func (c *Config) normalizeServices() {
	openAIKey := envValue("OPENAI_API_KEY")

	c.Image.APIKey = firstNonEmpty(openAIKey, c.Image.APIKey)
	c.Image.BaseURL = trimBaseURL(c.Image.BaseURL, defaultOpenAIBaseURL)
	c.Image.Model = firstNonEmpty(c.Image.Model, defaultImageModel)

	c.LLM.APIKey = firstNonEmpty(openAIKey, c.LLM.APIKey)
	c.LLM.BaseURL = trimBaseURL(c.LLM.BaseURL, defaultOpenAIBaseURL)
	c.LLM.Model = firstNonEmpty(c.LLM.Model, defaultLLMModel)

	c.Speech.APIKey = firstNonEmpty(openAIKey, c.Speech.APIKey)
	c.Speech.BaseURL = trimBaseURL(c.Speech.BaseURL, defaultOpenAIBaseURL)
	c.Speech.Model = firstNonEmpty(c.Speech.Model, defaultSpeechModel)

	c.Video.APIKey = firstNonEmpty(envValue("RUNWAY_API_KEY"), envValue("RUNWAYML_API_SECRET"), c.Video.APIKey)
	c.Video.BaseURL = trimBaseURL(c.Video.BaseURL, defaultRunwayBaseURL)
	c.Video.APIVersion = firstNonEmpty(c.Video.APIVersion, defaultRunwayAPIVersion)
	c.Video.Model = firstNonEmpty(c.Video.Model, defaultRunwayModel)
	c.Video.Ratio = firstNonEmpty(c.Video.Ratio, defaultRunwayRatio)

	c.FFmpeg.Binary = firstNonEmpty(c.FFmpeg.Binary, defaultFFmpegBinary)
}

func (c *Config) normalizeStorage() error {
	s := &c.Storage
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	if s.Backend == "" {
		s.Backend = StorageBackendFile
	}
	s.Bucket = firstNonEmpty(envValue("STORAGE_BUCKET"), s.Bucket, defaultStorageBucket)
	s.Token = firstNonEmpty(envValue("STORAGE_TOKEN"), s.Token)
	if s.Backend == StorageBackendS3 {
		s.Region = firstNonEmpty(envValue("AWS_REGION"), s.Region, defaultStorageRegion)
		s.AccessKeyID = firstNonEmpty(envValue("AWS_ACCESS_KEY_ID"), s.AccessKeyID)
		s.SecretAccessKey = firstNonEmpty(envValue("AWS_SECRET_ACCESS_KEY"), s.SecretAccessKey)
	}
	s.Endpoint = strings.TrimRight(strings.TrimSpace(s.Endpoint), "/")
	s.PublicBaseURL = strings.TrimRight(strings.TrimSpace(s.PublicBaseURL), "/")
	s.KeyPrefix = strings.TrimLeft(strings.TrimSpace(s.KeyPrefix), "/")
	if s.Backend == StorageBackendFile {
		if strings.TrimSpace(s.Dir) == "" {
			s.Dir = defaultStorageDir
		}
		var err error
		if s.Dir, err = expandPath(s.Dir); err != nil {
			return fmt.Errorf("storage.dir: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeMetadata() error {
	m := &c.Metadata
	m.Backend = strings.ToLower(strings.TrimSpace(m.Backend))
	if m.Backend == "" {
		m.Backend = MetadataBackendSQLite
	}
	m.Table = firstNonEmpty(envValue("METADATA_TABLE"), m.Table, defaultMetadataTable)
	m.DSN = firstNonEmpty(envValue("DATABASE_URL"), m.DSN)
	if path := strings.TrimSpace(m.Path); path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return fmt.Errorf("metadata.path: %w", err)
		}
		m.Path = expanded
	}
	return nil
}

func (c *Config) normalizeNotifications() {
	n := &c.Notifications
	n.NtfyTopic = firstNonEmpty(envValue("NTFY_TOPIC"), n.NtfyTopic)
	n.AMQPURL = firstNonEmpty(envValue("AMQP_URL"), n.AMQPURL)
	n.AMQPExchange = strings.TrimSpace(n.AMQPExchange)
	n.AMQPRoutingKey = firstNonEmpty(n.AMQPRoutingKey, defaultAMQPRoutingKey)
	if n.RequestTimeout <= 0 {
		n.RequestTimeout = defaultNotifyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func envValue(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func trimBaseURL(value, fallback string) string {
	value = strings.TrimRight(strings.TrimSpace(value), "/")
	if value == "" {
		return fallback
	}
	return value
}
