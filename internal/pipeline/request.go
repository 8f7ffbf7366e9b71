package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"reelsmith/internal/config"
	"reelsmith/internal/services"
)

// Request carries the fixed parameters of a generation run.
type Request struct {
	ImagePrompt            string `validate:"required"`
	ImageSize              string `validate:"required"`
	MotionPrompt           string `validate:"required"`
	VideoModel             string `validate:"required"`
	VideoRatio             string `validate:"required"`
	ClipDuration           int    `validate:"gt=0"`
	CommentarySystemPrompt string `validate:"required"`
	CommentaryUserPrompt   string `validate:"required"`
	VoiceID                string `validate:"required"`
	AudioFormat            string `validate:"required,oneof=mp3 opus aac flac wav pcm"`
	Title                  string `validate:"required"`
}

// RequestFromConfig builds the run request from the generation and video
// sections of cfg.
func RequestFromConfig(cfg *config.Config) Request {
	g := cfg.Generation
	return Request{
		ImagePrompt:            strings.TrimSpace(g.ImagePrompt),
		ImageSize:              strings.TrimSpace(g.ImageSize),
		MotionPrompt:           strings.TrimSpace(g.MotionPrompt),
		VideoModel:             strings.TrimSpace(cfg.Video.Model),
		VideoRatio:             strings.TrimSpace(cfg.Video.Ratio),
		ClipDuration:           g.ClipDurationSeconds,
		CommentarySystemPrompt: strings.TrimSpace(g.CommentarySystemPrompt),
		CommentaryUserPrompt:   strings.TrimSpace(g.CommentaryUserPrompt),
		VoiceID:                strings.TrimSpace(g.VoiceID),
		AudioFormat:            strings.ToLower(strings.TrimSpace(g.AudioFormat)),
		Title:                  strings.TrimSpace(g.Title),
	}
}

// Validate reports the first invalid field as a validation error.
func (r Request) Validate() error {
	err := validator.New().Struct(r)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		detail := fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			detail = fmt.Sprintf("%s failed %q (%s)", fe.Field(), fe.Tag(), fe.Param())
		}
		return services.Wrap(services.ErrValidation, "pipeline", "request", detail, nil)
	}
	return services.Wrap(services.ErrValidation, "pipeline", "request", "invalid request", err)
}
