package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUpstream      = errors.New("upstream service error")
	ErrTimeout       = errors.New("timeout")
	ErrSubprocess    = errors.New("subprocess error")
	ErrTransfer      = errors.New("transfer error")
	ErrPersistence   = errors.New("persistence error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
)

// Error kinds reported to API callers and metrics labels.
const (
	KindUpstream      = "upstream"
	KindTimeout       = "timeout"
	KindSubprocess    = "subprocess"
	KindTransfer      = "transfer"
	KindPersistence   = "persistence"
	KindValidation    = "validation"
	KindConfiguration = "configuration"
	KindCanceled      = "canceled"
	KindUnknown       = "unknown"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrUpstream
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps an error to its short classification string. Context
// cancellation wins over any marker wrapped around it.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	case errors.Is(err, ErrTimeout):
		return KindTimeout
	case errors.Is(err, ErrUpstream):
		return KindUpstream
	case errors.Is(err, ErrSubprocess):
		return KindSubprocess
	case errors.Is(err, ErrTransfer):
		return KindTransfer
	case errors.Is(err, ErrPersistence):
		return KindPersistence
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	default:
		return KindUnknown
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
