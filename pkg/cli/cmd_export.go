package cli

import (
	"bytes"
	"fmt"

	"github.com/harrisonrobin/baronboard/pkg/export"
	"github.com/harrisonrobin/baronboard/pkg/model"
	"github.com/harrisonrobin/baronboard/pkg/report"
	"github.com/spf13/cobra"
)

func newExportCmd(o *rootOptions) *cobra.Command {
	var (
		output     string
		statuses   []string
		requesters []string
		query      string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the classified tasks as CSV",
		Long: `Export the tasks with their derived status as a UTF-8 CSV (with BOM, so
spreadsheet apps detect the encoding). Without -o the file is named
tasks_YYYYMMDD_HHMMSS.csv; "-o -" writes to stdout.`,
		Example: `  baronboard export -i tasks.xlsx
  baronboard export -i tasks.xlsx --status Delay --requester Lan -o late.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config(cmd)
			if err != nil {
				return err
			}
			f := report.Filter{Requesters: requesters, Query: query}
			for _, label := range statuses {
				s, err := model.ParseStatus(label)
				if err != nil {
					return err
				}
				f.Statuses = append(f.Statuses, s)
			}

			now := o.now()
			rep, err := o.loadReport(cmd.Context(), cfg, now)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := export.WriteCSV(&buf, rep.Filter(f).Records); err != nil {
				return err
			}
			if output == "" {
				output = export.Filename(now)
			}
			if err := writeOutput(cmd.OutOrStdout(), output, buf.Bytes()); err != nil {
				return err
			}
			if output != "-" {
				fmt.Fprintln(cmd.OutOrStdout(), output)
			}
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, - for stdout")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "keep only these statuses (repeatable)")
	cmd.Flags().StringSliceVar(&requesters, "requester", nil, "keep only these requesters (repeatable)")
	cmd.Flags().StringVarP(&query, "query", "q", "", "keep tasks whose text contains this")
	return cmd
}
