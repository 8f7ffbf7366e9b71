package pipeline

import (
	"context"
	"fmt"
	"strings"

	"reelsmith/internal/content"
	"reelsmith/internal/media/muxer"
	"reelsmith/internal/poll"
	"reelsmith/internal/services/runway"
	"reelsmith/internal/services/tts"
)

// Run is the state threaded through the stages of one generation run.
// Remote artifacts are URLs; local artifacts are paths owned by the run
// session.
type Run struct {
	ID         string
	ImageURL   string
	TaskID     string
	VideoURL   string
	VideoPath  string
	Commentary string
	AudioPath  string
	MuxedPath  string
	PublicURL  string
	Record     content.Record
}

// ImageGenerator produces a still image and returns its URL.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt, size string) (string, error)
}

// VideoSynthesizer submits an image-to-video job and waits for its clip.
type VideoSynthesizer interface {
	Create(ctx context.Context, job runway.ImageToVideo) (string, error)
	Await(ctx context.Context, taskID string, cfg poll.Config, opts ...poll.Option) (string, error)
}

// Downloader copies a remote artifact to a local path.
type Downloader interface {
	Fetch(ctx context.Context, url, dest string) (int64, error)
}

// CommentaryWriter produces narration text.
type CommentaryWriter interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// SpeechSynthesizer renders narration to an audio file.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, req tts.Request, dest string) (int64, error)
}

// Muxer combines the clip and narration into one file.
type Muxer interface {
	Mux(ctx context.Context, req muxer.Request) error
}

// Publisher uploads the final video and returns its public location.
type Publisher interface {
	Put(ctx context.Context, key, localPath, contentType string) (string, error)
}

// Recorder persists the content record of a finished run.
type Recorder interface {
	Record(ctx context.Context, description, videoURL string) (content.Record, error)
}

// Dependencies groups the per-stage collaborators.
type Dependencies struct {
	Images     ImageGenerator
	Video      VideoSynthesizer
	Downloader Downloader
	Commentary CommentaryWriter
	Speech     SpeechSynthesizer
	Muxer      Muxer
	Publisher  Publisher
	Recorder   Recorder
}

func (d Dependencies) validate() error {
	missing := make([]string, 0)
	if d.Images == nil {
		missing = append(missing, "image generator")
	}
	if d.Video == nil {
		missing = append(missing, "video synthesizer")
	}
	if d.Downloader == nil {
		missing = append(missing, "downloader")
	}
	if d.Commentary == nil {
		missing = append(missing, "commentary writer")
	}
	if d.Speech == nil {
		missing = append(missing, "speech synthesizer")
	}
	if d.Muxer == nil {
		missing = append(missing, "muxer")
	}
	if d.Publisher == nil {
		missing = append(missing, "publisher")
	}
	if d.Recorder == nil {
		missing = append(missing, "recorder")
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("pipeline dependencies missing: %s", strings.Join(missing, ", "))
}
