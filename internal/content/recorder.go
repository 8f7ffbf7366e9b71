package content

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"reelsmith/internal/services"
)

// Recorder turns a finished run into exactly one stored Record.
type Recorder struct {
	store Store
	title string
	now   func() time.Time
	newID func() string
}

// RecorderOption customizes a Recorder.
type RecorderOption func(*Recorder)

// WithClock overrides the createdAt source.
func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides record ID generation.
func WithIDGenerator(newID func() string) RecorderOption {
	return func(r *Recorder) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// NewRecorder constructs a Recorder writing records titled title.
func NewRecorder(store Store, title string, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store: store,
		title: strings.TrimSpace(title),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record stores the narration and public URL of a published reel.
func (r *Recorder) Record(ctx context.Context, description, videoURL string) (Record, error) {
	description = strings.TrimSpace(description)
	videoURL = strings.TrimSpace(videoURL)
	if description == "" {
		return Record{}, services.Wrap(services.ErrValidation, stageName, "record", "description required", nil)
	}
	if videoURL == "" {
		return Record{}, services.Wrap(services.ErrValidation, stageName, "record", "video url required", nil)
	}
	record := Record{
		ID:          r.newID(),
		Title:       r.title,
		Description: description,
		VideoURL:    videoURL,
		CreatedAt:   r.now().UTC().Truncate(time.Millisecond),
	}
	if err := r.store.Put(ctx, record); err != nil {
		return Record{}, err
	}
	return record, nil
}
