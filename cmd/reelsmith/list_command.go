package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reelsmith/internal/content"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var limit int

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"videos"},
		Short:   "List published reels, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := content.Open(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			if limit > 0 && len(records) > limit {
				records = records[:limit]
			}

			if asJSON {
				if records == nil {
					records = []content.Record{}
				}
				return writeJSON(cmd, records)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No videos published yet")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					content.FormatTimestamp(record.CreatedAt),
					record.ID,
					record.Title,
					record.VideoURL,
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Created", "ID", "Title", "Video URL"}, rows, nil))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show at most this many records (0 for all)")
	return cmd
}
