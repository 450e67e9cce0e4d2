package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/harrisonrobin/baronboard/pkg/aggregate"
	"github.com/harrisonrobin/baronboard/pkg/colors"
	"github.com/harrisonrobin/baronboard/pkg/i18n"
	"github.com/harrisonrobin/baronboard/pkg/model"
	"github.com/harrisonrobin/baronboard/pkg/report"
	"github.com/harrisonrobin/baronboard/pkg/util"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// summaryOutput is the machine-readable form of the summary command.
type summaryOutput struct {
	Source    string                    `json:"source" yaml:"source"`
	Reference string                    `json:"reference" yaml:"reference"`
	Summary   model.Summary             `json:"summary" yaml:"summary"`
	Counts    []model.StatusCount       `json:"counts" yaml:"counts"`
	Months    []model.MonthStatusBucket `json:"months" yaml:"months"`
}

func newSummaryCmd(o *rootOptions) *cobra.Command {
	var (
		format  string
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the task counters and the per-month grid",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config(cmd)
			if err != nil {
				return err
			}
			rep, err := o.loadReport(cmd.Context(), cfg, o.now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			color := !noColor && os.Getenv("NO_COLOR") == "" && isTerminal(out)
			return writeSummary(out, rep, format, color, o.p())
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table, json or yaml")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func writeSummary(w io.Writer, rep *report.Report, format string, color bool, p *i18n.Printer) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(newSummaryOutput(rep))
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newSummaryOutput(rep)); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		_, err := io.WriteString(w, summaryTable(rep, color, p))
		return err
	}
	return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
}

func newSummaryOutput(rep *report.Report) summaryOutput {
	return summaryOutput{
		Source:    rep.Source,
		Reference: rep.Reference.String(),
		Summary:   rep.Summary,
		Counts:    rep.Counts,
		Months:    rep.Months,
	}
}

func summaryTable(rep *report.Report, color bool, p *i18n.Printer) string {
	bold := lipgloss.NewStyle()
	if color {
		bold = bold.Bold(true)
	}
	statusStyle := func(s model.Status) lipgloss.Style {
		st := lipgloss.NewStyle()
		if color {
			st = st.Foreground(lipgloss.Color(colors.Hex(s)))
		}
		return st
	}

	header := fmt.Sprintf("%s\n%s\n\n",
		bold.Render(p.T("Source: %s", rep.Source)),
		p.T("Reference date: %s", util.FormatDate(rep.Reference)))

	counters := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(p.T("Total tasks"), p.T("Tasks with images"), p.T("Completed"), p.T("Delayed")).
		Row(
			p.Number(rep.Summary.Total),
			p.Number(rep.Summary.WithImages),
			p.Number(rep.Summary.Completed),
			p.Number(rep.Summary.Delayed),
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return st.Inherit(bold)
			}
			return st.Align(lipgloss.Right)
		})

	if len(rep.Months) == 0 {
		return header + counters.String() + "\n" + p.T("Nothing to chart") + "\n"
	}

	headers := []string{p.T("Month")}
	for _, s := range model.Statuses {
		headers = append(headers, s.Label())
	}
	months := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			st := lipgloss.NewStyle().Padding(0, 1)
			if col > 0 {
				st = st.Align(lipgloss.Right)
				if row == table.HeaderRow {
					return st.Inherit(statusStyle(model.Statuses[col-1])).Inherit(bold)
				}
			}
			if row == table.HeaderRow {
				return st.Inherit(bold)
			}
			return st
		})
	series := make([][]int, len(model.Statuses))
	for i, s := range model.Statuses {
		series[i] = aggregate.Series(rep.Months, s)
	}
	for mi, m := range aggregate.Months(rep.Months) {
		row := []string{m}
		for si := range model.Statuses {
			row = append(row, strconv.Itoa(series[si][mi]))
		}
		months.Row(row...)
	}

	return header + counters.String() + "\n" + months.String() + "\n"
}
