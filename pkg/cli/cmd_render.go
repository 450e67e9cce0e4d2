package cli

import (
	"bytes"
	"errors"

	"github.com/harrisonrobin/baronboard/pkg/render"
	"github.com/harrisonrobin/baronboard/pkg/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRenderCmd(o *rootOptions) *cobra.Command {
	var (
		output     string
		fragment   bool
		watchInput bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the dashboard as HTML",
		Long: `Render the task table, the status filter and both charts as HTML.

By default a standalone page is written; --fragment writes only the
embeddable part. With --watch the page is rendered again every time the
input workbook is saved.`,
		Example: `  baronboard render -i tasks.xlsx -o dashboard.html
  baronboard render -i tasks.xlsx --fragment > fragment.html
  baronboard render -i tasks.xlsx -o dashboard.html --watch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config(cmd)
			if err != nil {
				return err
			}
			if watchInput && cfg.Input == "" {
				return errors.New("--watch needs a local --input workbook")
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			run := func() error {
				rep, err := o.loadReport(ctx, cfg, o.now())
				if err != nil {
					return err
				}
				var buf bytes.Buffer
				if fragment {
					err = render.Fragment(&buf, rep, o.p())
				} else {
					err = render.Page(&buf, rep, o.p())
				}
				if err != nil {
					return err
				}
				return writeOutput(cmd.OutOrStdout(), output, buf.Bytes())
			}

			if err := run(); err != nil {
				return err
			}
			if !watchInput {
				return nil
			}
			zap.S().Infof("watching %s, press Ctrl+C to stop", cfg.Input)
			return watch.File(ctx, cfg.Input, watch.DefaultDebounce, run)
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&fragment, "fragment", false, "write an embeddable fragment instead of a full page")
	cmd.Flags().BoolVarP(&watchInput, "watch", "w", false, "render again when the input changes")
	return cmd
}
