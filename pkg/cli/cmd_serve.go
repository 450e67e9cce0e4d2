package cli

import (
	"github.com/harrisonrobin/baronboard/pkg/server"
	"github.com/spf13/cobra"
)

func newServeCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the interactive dashboard",
		Long: `Start a web server with the interactive dashboard. Each browser session
uploads a workbook and then filters it by status, requester or text; the
table can be downloaded as CSV.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config(cmd)
			if err != nil {
				return err
			}
			srv, err := server.New(server.Options{
				Addr:           cfg.Listen,
				Extract:        cfg.ExtractOptions(),
				MaxUploadBytes: cfg.MaxUploadBytes(),
				CacheSize:      cfg.CacheSize,
				Printer:        o.p(),
				Now:            o.now,
			})
			if err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return srv.StartContext(ctx)
		},
	}

	f := cmd.Flags()
	f.String("listen", ":8501", "address to listen on")
	f.Int("max-upload-mb", 32, "largest accepted upload in MiB")
	f.Int("cache-size", 16, "number of built reports kept in memory")
	f.String("sheet", "", "sheet name (default: the active sheet)")
	f.Int("header-row", 3, "1-indexed row holding the column names")
	f.String("locale", "en", "language of the dashboard: en or vi")
	return cmd
}
