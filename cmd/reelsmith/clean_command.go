package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reelsmith/internal/logging"
	"reelsmith/internal/staging"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove run directories left behind by interrupted runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			maxAge := olderThan
			if !cmd.Flags().Changed("older-than") {
				maxAge = time.Duration(cfg.Paths.StaleRunHours) * time.Hour
			}
			out := cmd.OutOrStdout()

			if dryRun {
				dirs, err := staging.ListDirectories(cfg.Paths.WorkDir)
				if err != nil {
					return fmt.Errorf("list run directories: %w", err)
				}
				cutoff := time.Now().Add(-maxAge)
				rows := make([][]string, 0, len(dirs))
				for _, dir := range dirs {
					stale := maxAge > 0 && dir.ModTime.Before(cutoff)
					rows = append(rows, []string{
						dir.Name,
						dir.ModTime.Local().Format(time.DateTime),
						humanize.IBytes(uint64(max(dir.Size, 0))),
						yesNo(stale),
					})
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "No run directories found")
					return nil
				}
				fmt.Fprintln(out, renderTable([]string{"Run", "Modified", "Size", "Stale"}, rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
				return nil
			}

			result := staging.CleanStale(cmd.Context(), cfg.Paths.WorkDir, maxAge, logging.NewNop())
			fmt.Fprintf(out, "Removed %d run directories\n", len(result.Removed))
			for _, cerr := range result.Errors {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to remove %s: %v\n", cerr.Path, cerr.Error)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d run directories could not be removed", len(result.Errors))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Remove runs older than this (defaults to paths.stale_run_hours)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List run directories without removing them")
	return cmd
}
