package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"reelsmith/internal/content"
	"reelsmith/internal/logging"
	"reelsmith/internal/media/muxer"
	"reelsmith/internal/metrics"
	"reelsmith/internal/notifications"
	"reelsmith/internal/objectstore"
	"reelsmith/internal/poll"
	"reelsmith/internal/services"
	"reelsmith/internal/services/runway"
	"reelsmith/internal/services/tts"
	"reelsmith/internal/session"
	"reelsmith/internal/stageexec"
)

// Stage names, in execution order.
const (
	StageImage      = "image"
	StageVideo      = "video"
	StageDownload   = "download"
	StageCommentary = "commentary"
	StageSpeech     = "speech"
	StageMuxing     = "muxing"
	StagePublish    = "publish"
	StageRecord     = "metadata_record"
	StageCleanup    = "cleanup"
)

const (
	clipFileName  = "clip.mp4"
	reelFileName  = "reel.mp4"
	notifyTimeout = 30 * time.Second
)

// Settings holds run parameters that are not part of the content request.
type Settings struct {
	WorkDir   string
	KeyPrefix string
	Poll      poll.Config
}

// Pipeline executes generation runs. It is safe for concurrent use; runs
// share only their collaborators.
type Pipeline struct {
	req      Request
	deps     Dependencies
	settings Settings

	logger      *slog.Logger
	metrics     *metrics.Metrics
	notifier    notifications.Service
	sessionOpts []session.Option
	pollOpts    []poll.Option
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics attaches run and stage collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithNotifier attaches a run event publisher.
func WithNotifier(n notifications.Service) Option {
	return func(p *Pipeline) {
		if n != nil {
			p.notifier = n
		}
	}
}

// WithSessionOptions forwards options to session.Open for every run.
func WithSessionOptions(opts ...session.Option) Option {
	return func(p *Pipeline) { p.sessionOpts = append(p.sessionOpts, opts...) }
}

// WithPollOptions forwards options to the video polling loop.
func WithPollOptions(opts ...poll.Option) Option {
	return func(p *Pipeline) { p.pollOpts = append(p.pollOpts, opts...) }
}

// New validates req and deps and returns a ready pipeline. req is copied, so
// later changes by the caller do not affect runs.
func New(req Request, deps Dependencies, settings Settings, opts ...Option) (*Pipeline, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := deps.validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "", err)
	}
	if settings.WorkDir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "work directory is required", nil)
	}
	if settings.Poll.MaxAttempts <= 0 || settings.Poll.Interval < 0 {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new",
			fmt.Sprintf("invalid poll budget %d x %s", settings.Poll.MaxAttempts, settings.Poll.Interval), nil)
	}
	p := &Pipeline{
		req:      req,
		deps:     deps,
		settings: settings,
		logger:   logging.NewNop(),
		notifier: notifications.NewNoop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "pipeline")
	return p, nil
}

// Request returns a copy of the run request.
func (p *Pipeline) Request() Request {
	return p.req
}

type stage struct {
	name    string
	execute func(context.Context, *session.Session, *Run) error
	attrs   func(*Run) []logging.Attr
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{name: StageImage, execute: p.generateImage, attrs: func(r *Run) []logging.Attr {
			return []logging.Attr{logging.String("image_url", r.ImageURL)}
		}},
		{name: StageVideo, execute: p.synthesizeVideo, attrs: func(r *Run) []logging.Attr {
			return []logging.Attr{logging.String("task_id", r.TaskID), logging.String("video_url", r.VideoURL)}
		}},
		{name: StageDownload, execute: p.downloadClip},
		{name: StageCommentary, execute: p.writeCommentary, attrs: func(r *Run) []logging.Attr {
			return []logging.Attr{logging.Int("commentary_chars", len(r.Commentary))}
		}},
		{name: StageSpeech, execute: p.synthesizeSpeech},
		{name: StageMuxing, execute: p.mux},
		{name: StagePublish, execute: p.publish, attrs: func(r *Run) []logging.Attr {
			return []logging.Attr{logging.String("public_url", r.PublicURL)}
		}},
		{name: StageRecord, execute: p.recordMetadata, attrs: func(r *Run) []logging.Attr {
			return []logging.Attr{logging.String("record_id", r.Record.ID)}
		}},
	}
}

// Run executes one generation run and returns the persisted content record.
// The run session is released before Run returns, on success, failure, or
// panic.
func (p *Pipeline) Run(ctx context.Context) (content.Record, error) {
	started := time.Now()
	p.metrics.RunStarted()

	sess, err := session.Open(p.settings.WorkDir, p.logger, p.sessionOpts...)
	if err != nil {
		err = services.Wrap(services.ErrTransfer, "pipeline", "open session", "", err)
		p.finish(ctx, "", started, content.Record{}, err)
		return content.Record{}, err
	}
	defer sess.Release()

	ctx = services.WithRunID(ctx, sess.ID)
	logger := logging.WithContext(ctx, p.logger)
	logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("run_dir", sess.Dir),
	)

	run := &Run{ID: sess.ID}
	for _, st := range p.stages() {
		if err = ctx.Err(); err != nil {
			break
		}
		var attrs func() []logging.Attr
		if st.attrs != nil {
			attrs = func() []logging.Attr { return st.attrs(run) }
		}
		err = stageexec.Run(ctx, stageexec.Options{
			Name:    st.name,
			Execute: func(stageCtx context.Context) error { return st.execute(stageCtx, sess, run) },
			Logger:  logger,
			Metrics: p.metrics,
			Attrs:   attrs,
		})
		if err != nil {
			break
		}
	}

	p.cleanup(ctx, logger, sess)

	if err != nil {
		p.finish(ctx, sess.ID, started, content.Record{}, err)
		return content.Record{}, err
	}
	p.finish(ctx, sess.ID, started, run.Record, nil)
	return run.Record, nil
}

func (p *Pipeline) cleanup(ctx context.Context, logger *slog.Logger, sess *session.Session) {
	_ = stageexec.Run(ctx, stageexec.Options{
		Name: StageCleanup,
		Execute: func(context.Context) error {
			sess.Release()
			return nil
		},
		Logger:  logger,
		Metrics: p.metrics,
	})
}

func (p *Pipeline) finish(ctx context.Context, runID string, started time.Time, record content.Record, runErr error) {
	elapsed := time.Since(started)
	logger := logging.WithContext(ctx, p.logger)
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	var msg notifications.Message
	if runErr != nil {
		p.metrics.RunFinished(metrics.OutcomeFailure, elapsed)
		logging.ErrorWithContext(logger, "run failed", "run_failure",
			logging.String("error_kind", services.Kind(runErr)),
			logging.Duration("elapsed", elapsed),
			logging.Error(runErr),
		)
		msg = notifications.RunFailed(runID, runErr)
	} else {
		p.metrics.RunFinished(metrics.OutcomeSuccess, elapsed)
		logger.Info("run completed",
			logging.String(logging.FieldEventType, "run_complete"),
			logging.String("record_id", record.ID),
			logging.String("video_url", record.VideoURL),
			logging.Duration("elapsed", elapsed),
		)
		msg = notifications.RunCompleted(runID, record)
	}
	if err := p.notifier.Publish(notifyCtx, msg); err != nil {
		logger.Warn("run notification failed",
			logging.String(logging.FieldEventType, "notification_failure"),
			logging.String(logging.FieldImpact, "operators were not notified of this run"),
			logging.Error(err),
		)
	}
}

func (p *Pipeline) generateImage(ctx context.Context, _ *session.Session, run *Run) error {
	url, err := p.deps.Images.Generate(ctx, p.req.ImagePrompt, p.req.ImageSize)
	if err != nil {
		return err
	}
	run.ImageURL = url
	return nil
}

func (p *Pipeline) synthesizeVideo(ctx context.Context, _ *session.Session, run *Run) error {
	taskID, err := p.deps.Video.Create(ctx, runway.ImageToVideo{
		Model:       p.req.VideoModel,
		PromptImage: run.ImageURL,
		PromptText:  p.req.MotionPrompt,
		Duration:    p.req.ClipDuration,
		Ratio:       p.req.VideoRatio,
	})
	if err != nil {
		return err
	}
	run.TaskID = taskID

	logger := logging.WithContext(ctx, p.logger)
	attempts := 0
	observe := poll.WithObserver(func(attempt int, done bool, err error) {
		attempts = attempt
		logger.Debug("video task polled",
			logging.String(logging.FieldEventType, "poll_attempt"),
			logging.String("task_id", taskID),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", p.settings.Poll.MaxAttempts),
			logging.Bool("done", done),
		)
	})
	opts := append([]poll.Option{observe}, p.pollOpts...)
	videoURL, err := p.deps.Video.Await(ctx, taskID, p.settings.Poll, opts...)
	p.metrics.ObservePollAttempts(attempts)
	if err != nil {
		return err
	}
	run.VideoURL = videoURL
	return nil
}

func (p *Pipeline) downloadClip(ctx context.Context, sess *session.Session, run *Run) error {
	dest, err := sess.Path(clipFileName)
	if err != nil {
		return services.Wrap(services.ErrTransfer, StageDownload, "session path", "", err)
	}
	if _, err := p.deps.Downloader.Fetch(ctx, run.VideoURL, dest); err != nil {
		return err
	}
	run.VideoPath = dest
	return nil
}

func (p *Pipeline) writeCommentary(ctx context.Context, _ *session.Session, run *Run) error {
	text, err := p.deps.Commentary.Complete(ctx, p.req.CommentarySystemPrompt, p.req.CommentaryUserPrompt)
	if err != nil {
		return err
	}
	run.Commentary = text
	return nil
}

func (p *Pipeline) synthesizeSpeech(ctx context.Context, sess *session.Session, run *Run) error {
	dest, err := sess.Path("narration." + p.req.AudioFormat)
	if err != nil {
		return services.Wrap(services.ErrTransfer, StageSpeech, "session path", "", err)
	}
	if _, err := p.deps.Speech.Synthesize(ctx, tts.Request{
		Text:   run.Commentary,
		Voice:  p.req.VoiceID,
		Format: p.req.AudioFormat,
	}, dest); err != nil {
		return err
	}
	run.AudioPath = dest
	return nil
}

func (p *Pipeline) mux(ctx context.Context, sess *session.Session, run *Run) error {
	dest, err := sess.Path(reelFileName)
	if err != nil {
		return services.Wrap(services.ErrTransfer, StageMuxing, "session path", "", err)
	}
	if err := p.deps.Muxer.Mux(ctx, muxer.Request{
		VideoPath:  run.VideoPath,
		AudioPath:  run.AudioPath,
		OutputPath: dest,
	}); err != nil {
		return err
	}
	run.MuxedPath = dest
	return nil
}

func (p *Pipeline) publish(ctx context.Context, _ *session.Session, run *Run) error {
	key := objectstore.ObjectKey(p.settings.KeyPrefix, run.ID)
	location, err := p.deps.Publisher.Put(ctx, key, run.MuxedPath, objectstore.ContentTypeMP4)
	if err != nil {
		return err
	}
	run.PublicURL = location
	return nil
}

func (p *Pipeline) recordMetadata(ctx context.Context, _ *session.Session, run *Run) error {
	record, err := p.deps.Recorder.Record(ctx, run.Commentary, run.PublicURL)
	if err != nil {
		return err
	}
	run.Record = record
	return nil
}
