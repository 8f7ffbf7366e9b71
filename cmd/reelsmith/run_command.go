package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reelsmith/internal/config"
	"reelsmith/internal/content"
	"reelsmith/internal/logging"
	"reelsmith/internal/pipeline"
	"reelsmith/internal/staging"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Generate, narrate, and publish one reel",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateGeneration(); err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sweepStaleRuns(runCtx, cfg, logger)

			runtime, err := pipeline.BuildFromConfig(runCtx, cfg, logger, nil)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := runtime.Close(); cerr != nil {
					logger.Warn("runtime close failed", logging.Error(cerr))
				}
			}()

			record, err := runtime.Pipeline.Run(runCtx)
			if err != nil {
				return fmt.Errorf("run failed: %w", err)
			}
			if asJSON {
				return writeJSON(cmd, record)
			}
			printRecord(cmd, record)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the content record as JSON")
	return cmd
}

func printRecord(cmd *cobra.Command, record content.Record) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Published %s\n", record.Title)
	fmt.Fprintf(out, "  ID:          %s\n", record.ID)
	fmt.Fprintf(out, "  Video URL:   %s\n", record.VideoURL)
	fmt.Fprintf(out, "  Created:     %s\n", content.FormatTimestamp(record.CreatedAt))
	fmt.Fprintf(out, "  Description: %s\n", record.Description)
}

// sweepStaleRuns removes run directories abandoned by killed processes.
// Per-directory failures are logged by staging.
func sweepStaleRuns(ctx context.Context, cfg *config.Config, logger *slog.Logger) {
	maxAge := time.Duration(cfg.Paths.StaleRunHours) * time.Hour
	result := staging.CleanStale(ctx, cfg.Paths.WorkDir, maxAge, logger)
	if len(result.Removed) > 0 {
		logger.Info("removed stale run directories",
			logging.Int("count", len(result.Removed)),
			logging.Int("errors", len(result.Errors)),
			logging.String(logging.FieldEventType, "stale_runs_removed"),
		)
	}
}
