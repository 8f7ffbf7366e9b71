package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"reelsmith/internal/config"
	"reelsmith/internal/content"
	"reelsmith/internal/download"
	"reelsmith/internal/logging"
	"reelsmith/internal/media/muxer"
	"reelsmith/internal/metrics"
	"reelsmith/internal/notifications"
	"reelsmith/internal/objectstore"
	"reelsmith/internal/poll"
	"reelsmith/internal/services/imagegen"
	"reelsmith/internal/services/llm"
	"reelsmith/internal/services/runway"
	"reelsmith/internal/services/tts"
)

// Runtime bundles a configured pipeline with the stores it opened.
type Runtime struct {
	Pipeline *Pipeline
	Content  content.Store
	Notifier notifications.Service
}

// Close releases the content store and notifier connections.
func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.Notifier != nil {
		errs = append(errs, r.Notifier.Close())
	}
	if r.Content != nil {
		errs = append(errs, r.Content.Close())
	}
	return errors.Join(errs...)
}

// BuildFromConfig wires the production collaborators described by cfg.
// The caller owns the returned Runtime and must Close it.
func BuildFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*Runtime, error) {
	if err := cfg.ValidateGeneration(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	publisher, err := objectstore.New(cfg)
	if err != nil {
		return nil, err
	}
	store, err := content.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	notifier := notifications.NewService(cfg, logger)

	deps := Dependencies{
		Images: imagegen.NewClient(imagegen.Config{
			APIKey:         cfg.Image.APIKey,
			BaseURL:        cfg.Image.BaseURL,
			Model:          cfg.Image.Model,
			TimeoutSeconds: cfg.Image.TimeoutSeconds,
		}),
		Video: runway.NewClient(runway.Config{
			APIKey:         cfg.Video.APIKey,
			BaseURL:        cfg.Video.BaseURL,
			APIVersion:     cfg.Video.APIVersion,
			TimeoutSeconds: cfg.Video.TimeoutSeconds,
		}),
		Downloader: download.NewClient(cfg.Download.TimeoutSeconds),
		Commentary: llm.NewClient(llm.Config{
			APIKey:         cfg.LLM.APIKey,
			BaseURL:        cfg.LLM.BaseURL,
			Model:          cfg.LLM.Model,
			TimeoutSeconds: cfg.LLM.TimeoutSeconds,
		}),
		Speech: tts.NewClient(tts.Config{
			APIKey:         cfg.Speech.APIKey,
			BaseURL:        cfg.Speech.BaseURL,
			Model:          cfg.Speech.Model,
			TimeoutSeconds: cfg.Speech.TimeoutSeconds,
		}),
		Muxer: muxer.New(cfg.FFmpegBinary(), logger,
			muxer.WithTimeout(time.Duration(max(cfg.FFmpeg.TimeoutSeconds, 0))*time.Second)),
		Publisher: publisher,
		Recorder:  content.NewRecorder(store, cfg.Generation.Title),
	}

	p, err := New(RequestFromConfig(cfg), deps, Settings{
		WorkDir:   cfg.Paths.WorkDir,
		KeyPrefix: cfg.Storage.KeyPrefix,
		Poll: poll.Config{
			Interval:    time.Duration(cfg.Video.PollIntervalSeconds) * time.Second,
			MaxAttempts: cfg.Video.PollMaxAttempts,
		},
	}, WithLogger(logger), WithMetrics(m), WithNotifier(notifier))
	if err != nil {
		_ = notifier.Close()
		_ = store.Close()
		return nil, err
	}
	return &Runtime{Pipeline: p, Content: store, Notifier: notifier}, nil
}
