package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent package builds",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := ctx.historyStore()
			if err != nil {
				return err
			}
			records, err := h.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No builds recorded")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.CreatedAt.Local().Format("2006-01-02 15:04"),
					rec.Title,
					rec.Version,
					strconv.Itoa(rec.PageCount),
					strconv.Itoa(rec.ResourceCount),
					humanBytes(rec.SizeBytes),
					rec.OutputPath,
				})
			}
			fmt.Fprintln(out, renderTable("", []string{"Built", "Title", "Version", "Pages", "Media", "Size", "Output"}, rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum builds to list (0 for all)")
	return cmd
}
