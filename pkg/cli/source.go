package cli

import (
	"context"
	"errors"
	"time"

	"github.com/harrisonrobin/baronboard/pkg/config"
	"github.com/harrisonrobin/baronboard/pkg/extract"
	"github.com/harrisonrobin/baronboard/pkg/google"
	"github.com/harrisonrobin/baronboard/pkg/report"
	"github.com/harrisonrobin/baronboard/pkg/util"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var errNoInput = errors.New("no input: pass --input, --spreadsheet or --drive-file (or set one with 'baronboard config set')")

// addSourceFlags registers the flags that pick and shape the task sheet.
func addSourceFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("input", "i", "", "task workbook (.xlsx)")
	f.String("sheet", "", "sheet name (default: the active sheet)")
	f.Int("header-row", extract.DefaultHeaderRow, "1-indexed row holding the column names")
	f.String("drive-file", "", "Google Drive file ID of the workbook")
	f.String("spreadsheet", "", "Google Sheets spreadsheet ID (values only, no pictures)")
	f.String("sheet-range", "", "A1 range to read from --spreadsheet")
	f.String("locale", "en", "language of the output: en or vi")
}

// source picks the task sheet. A local --input wins over Google sources.
func (o *rootOptions) source(ctx context.Context, cfg *config.Config) (report.Source, error) {
	switch {
	case cfg.Input != "":
		return report.FileSource{Path: cfg.Input}, nil
	case cfg.Spreadsheet != "":
		s, err := o.googleServices(ctx)
		if err != nil {
			return nil, err
		}
		return google.SheetsSource{
			Client:        google.NewSheetsClient(s.Sheets),
			SpreadsheetID: cfg.Spreadsheet,
			Range:         cfg.SheetRange,
		}, nil
	case cfg.DriveFile != "":
		s, err := o.googleServices(ctx)
		if err != nil {
			return nil, err
		}
		return google.DriveSource{Client: google.NewDriveClient(s.Drive), FileID: cfg.DriveFile}, nil
	}
	return nil, errNoInput
}

// loadReport reads the configured source as of the day of now.
func (o *rootOptions) loadReport(ctx context.Context, cfg *config.Config, now time.Time) (*report.Report, error) {
	src, err := o.source(ctx, cfg)
	if err != nil {
		return nil, err
	}
	rep, err := report.Load(ctx, src, cfg.ExtractOptions(), util.Today(now))
	if err != nil {
		return nil, err
	}
	zap.S().Infof("loaded %d tasks from %s", len(rep.Records), rep.Source)
	return rep, nil
}
