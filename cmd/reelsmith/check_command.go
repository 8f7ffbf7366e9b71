package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"reelsmith/internal/preflight"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	var localOnly bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify directories, ffmpeg, upstream services, and the content store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			var results []preflight.Result
			if localOnly {
				results = preflight.RunLocal(cfg)
			} else {
				results = preflight.RunAll(cmd.Context(), cfg)
			}

			rows := make([][]string, 0, len(results))
			for _, result := range results {
				rows = append(rows, []string{result.Name, statusLabel(result.Passed), result.Detail})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows, nil))

			if preflight.Failed(results) {
				return errors.New("one or more checks failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&localOnly, "local", false, "Skip network and store checks")
	return cmd
}

func statusLabel(passed bool) string {
	if passed {
		return "ok"
	}
	return "FAIL"
}
