package config

const (
	defaultWorkDir       = "~/.local/share/reelsmith/work"
	defaultDataDir       = "~/.local/share/reelsmith"
	defaultLogDir        = "~/.local/share/reelsmith/logs"
	defaultStaleRunHours = 24
	defaultAPIBind       = "127.0.0.1:5000"
	defaultAllowedOrigin = "*"

	defaultImagePrompt            = "A professional footballer celebrating a goal, cinematic lighting"
	defaultImageSize              = "1024x1024"
	defaultMotionPrompt           = "Camera pans and slows down: a soccer player scores a goal in a packed stadium as fans cheer loudly."
	defaultClipDurationSeconds    = 5
	defaultCommentarySystemPrompt = "You are an enthusiastic sports commentator, describing highlights with excitement and clarity."
	defaultCommentaryUserPrompt   = "We have a 10-second soccer highlight video showing a player scoring a spectacular goal and the crowd cheering. Provide an exciting, two-sentence commentary for this moment."
	defaultVoiceID                = "onyx"
	defaultAudioFormat            = "mp3"
	defaultTitle                  = "Football Highlight Reel"

	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultImageModel    = "dall-e-3"
	defaultLLMModel      = "gpt-4"
	defaultSpeechModel   = "tts-1"

	defaultRunwayBaseURL       = "https://api.dev.runwayml.com/v1"
	defaultRunwayAPIVersion    = "2024-11-06"
	defaultRunwayModel         = "gen3a_turbo"
	defaultRunwayRatio         = "1280:768"
	defaultPollIntervalSeconds = 5
	defaultPollMaxAttempts     = 30

	defaultFFmpegBinary = "ffmpeg"

	defaultStorageDir       = "~/.local/share/reelsmith/objects"
	defaultStorageBucket    = "reels"
	defaultStorageKeyPrefix = "videos/"
	defaultStorageRegion    = "us-east-1"
	defaultPublicBaseURL    = "http://127.0.0.1:5000/objects"

	defaultMetadataTable = "content_records"

	defaultNotifyRequestTimeout = 10
	defaultAMQPExchange         = "reelsmith.events"
	defaultAMQPRoutingKey       = "content.run"

	defaultLogFormat = "auto"
	defaultLogLevel  = "info"
)

// Storage backends.
const (
	StorageBackendFile = "file"
	StorageBackendHTTP = "http"
	StorageBackendS3   = "s3"
)

// Metadata backends.
const (
	MetadataBackendSQLite   = "sqlite"
	MetadataBackendPostgres = "postgres"
)

// Default returns a Config populated with repository defaults.
//
// Per-call network timeouts and the ffmpeg timeout default to zero
// (unbounded); the video poll budget is the only bound applied by default.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir:       defaultWorkDir,
			DataDir:       defaultDataDir,
			LogDir:        defaultLogDir,
			StaleRunHours: defaultStaleRunHours,
		},
		API: API{
			Bind:          defaultAPIBind,
			AllowedOrigin: defaultAllowedOrigin,
		},
		Generation: Generation{
			ImagePrompt:            defaultImagePrompt,
			ImageSize:              defaultImageSize,
			MotionPrompt:           defaultMotionPrompt,
			ClipDurationSeconds:    defaultClipDurationSeconds,
			CommentarySystemPrompt: defaultCommentarySystemPrompt,
			CommentaryUserPrompt:   defaultCommentaryUserPrompt,
			VoiceID:                defaultVoiceID,
			AudioFormat:            defaultAudioFormat,
			Title:                  defaultTitle,
		},
		Image: Image{
			BaseURL: defaultOpenAIBaseURL,
			Model:   defaultImageModel,
		},
		Video: Video{
			BaseURL:             defaultRunwayBaseURL,
			APIVersion:          defaultRunwayAPIVersion,
			Model:               defaultRunwayModel,
			Ratio:               defaultRunwayRatio,
			PollIntervalSeconds: defaultPollIntervalSeconds,
			PollMaxAttempts:     defaultPollMaxAttempts,
		},
		LLM: LLM{
			BaseURL: defaultOpenAIBaseURL,
			Model:   defaultLLMModel,
		},
		Speech: Speech{
			BaseURL: defaultOpenAIBaseURL,
			Model:   defaultSpeechModel,
		},
		FFmpeg: FFmpeg{
			Binary: defaultFFmpegBinary,
		},
		Storage: Storage{
			Backend:       StorageBackendFile,
			Dir:           defaultStorageDir,
			PublicBaseURL: defaultPublicBaseURL,
			Bucket:        defaultStorageBucket,
			KeyPrefix:     defaultStorageKeyPrefix,
		},
		Metadata: Metadata{
			Backend: MetadataBackendSQLite,
			Table:   defaultMetadataTable,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			AMQPExchange:   defaultAMQPExchange,
			AMQPRoutingKey: defaultAMQPRoutingKey,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
