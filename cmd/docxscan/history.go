package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"docx_forensics/internal/db"
	"docx_forensics/internal/render"

	"github.com/spf13/cobra"
)

func (a *app) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Archive.Path == "" {
				return errors.New("no archive configured: pass --archive or set archive.path")
			}
			runs, err := db.ListRuns(a.cfg.Archive.Path, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No archived runs.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tCREATED\tDOCS\tTOP DOCUMENT\tTOP SCORE")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					r.ID,
					r.CreatedAt.Local().Format(time.DateTime),
					r.Documents,
					r.TopDocument,
					render.ScoreStyle(r.TopScore).Render(fmt.Sprintf("%.2f", r.TopScore)),
				)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list")
	return cmd
}
