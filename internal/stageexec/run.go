// Package stageexec runs a single pipeline stage with uniform logging,
// timing, and metrics.
package stageexec

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reelsmith/internal/logging"
	"reelsmith/internal/metrics"
	"reelsmith/internal/services"
)

// Options describes one stage invocation.
type Options struct {
	// Name is the machine stage name, e.g. "image" or "metadata_record".
	Name    string
	Execute func(context.Context) error
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Attrs are appended to the stage_complete log line.
	Attrs func() []logging.Attr
}

// Run executes a stage. The returned error is the stage error unchanged.
func Run(ctx context.Context, opts Options) error {
	if opts.Execute == nil {
		return fmt.Errorf("stage handler unavailable: %s", opts.Name)
	}

	stageCtx := services.WithStage(ctx, opts.Name)
	stageLogger := logging.WithContext(stageCtx, opts.Logger)
	label := Label(opts.Name)

	stageLogger.Info(
		"stage started",
		logging.String(logging.FieldEventType, "stage_start"),
		logging.String("stage_label", label),
	)

	start := time.Now()
	err := opts.Execute(stageCtx)
	elapsed := time.Since(start)
	opts.Metrics.ObserveStage(opts.Name, elapsed, services.Kind(err))

	if err != nil {
		stageLogger.Error(
			"stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String("stage_label", label),
			logging.String("error_kind", services.Kind(err)),
			logging.Duration("elapsed", elapsed),
			logging.Error(err),
		)
		return err
	}

	attrs := []logging.Attr{
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.String("stage_label", label),
		logging.Duration("elapsed", elapsed),
	}
	if opts.Attrs != nil {
		attrs = append(attrs, opts.Attrs()...)
	}
	stageLogger.Info("stage completed", logging.Args(attrs...)...)
	return nil
}

// Label turns a stage name such as "metadata_record" into "Metadata Record".
func Label(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	if name == "" {
		return ""
	}
	return cases.Title(language.Und).String(strings.ToLower(name))
}
