package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"reelsmith/internal/api"
	"reelsmith/internal/config"
	"reelsmith/internal/logging"
	"reelsmith/internal/metrics"
	"reelsmith/internal/pipeline"
	"reelsmith/internal/preflight"
)

const staleSweepInterval = time.Hour

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation trigger and video listing API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if bind != "" {
				cfg.API.Bind = bind
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			for _, result := range preflight.RunLocal(cfg) {
				if !result.Passed {
					logging.WarnWithContext(logger, "preflight check failed", "preflight_failed",
						logging.String("check", result.Name),
						logging.String("detail", result.Detail),
						logging.String(logging.FieldImpact, "generation runs may fail"),
					)
				}
			}

			sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sweepStaleRuns(sigCtx, cfg, logger)

			m := metrics.New()
			runtime, err := pipeline.BuildFromConfig(sigCtx, cfg, logger, m)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := runtime.Close(); cerr != nil {
					logger.Warn("runtime close failed", logging.Error(cerr))
				}
			}()

			deps := api.Dependencies{
				Runner:  runtime.Pipeline,
				Records: runtime.Content,
				Metrics: m,
			}
			if cfg.Storage.Backend == config.StorageBackendFile {
				deps.ObjectsDir = cfg.Storage.Dir
			}
			server, err := api.NewServer(cfg, deps, logger)
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(sigCtx)
			g.Go(func() error {
				return server.Serve(gctx)
			})
			g.Go(func() error {
				ticker := time.NewTicker(staleSweepInterval)
				defer ticker.Stop()
				for {
					select {
					case <-gctx.Done():
						return nil
					case <-ticker.C:
						sweepStaleRuns(gctx, cfg, logger)
					}
				}
			})
			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Override api.bind (host:port)")
	return cmd
}
