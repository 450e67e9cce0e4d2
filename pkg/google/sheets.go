package google

import (
	"context"
	"fmt"
	"strconv"

	"github.com/harrisonrobin/baronboard/pkg/extract"
	"github.com/harrisonrobin/baronboard/pkg/model"
	"go.uber.org/zap"
	"google.golang.org/api/sheets/v4"
)

// SheetsClient reads cell values from Google Sheets. Images are not
// available through the values API, so grids it returns carry no pictures.
type SheetsClient struct {
	srv *sheets.Service
}

func NewSheetsClient(srv *sheets.Service) *SheetsClient {
	return &SheetsClient{srv: srv}
}

// Grid fetches readRange (A1 notation; a bare sheet title reads the whole
// sheet, an empty range reads the first sheet) with unformatted values and
// dates as serial numbers, matching what ReadXLSX yields.
func (c *SheetsClient) Grid(ctx context.Context, spreadsheetID, readRange string) (extract.Grid, error) {
	if readRange == "" {
		ss, err := c.srv.Spreadsheets.Get(spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
		if err != nil {
			return extract.Grid{}, fmt.Errorf("unable to look up spreadsheet %s: %w", spreadsheetID, err)
		}
		if len(ss.Sheets) == 0 || ss.Sheets[0].Properties == nil {
			return extract.Grid{}, fmt.Errorf("%w: spreadsheet %s has no sheets", extract.ErrUnreadable, spreadsheetID)
		}
		readRange = ss.Sheets[0].Properties.Title
	}

	resp, err := c.srv.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).
		Do()
	if err != nil {
		return extract.Grid{}, fmt.Errorf("unable to read %s!%s: %w", spreadsheetID, readRange, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellString(v)
		}
		rows[i] = cells
	}
	zap.S().Debugf("read %d rows from spreadsheet %s", len(rows), spreadsheetID)
	return extract.Grid{Rows: rows}, nil
}

// cellString renders a decoded JSON cell value the way excelize renders raw
// cell values.
func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	default:
		return fmt.Sprint(x)
	}
}

// SheetsSource reads task records straight from a Google Sheet.
type SheetsSource struct {
	Client        *SheetsClient
	SpreadsheetID string
	Range         string
}

func (s SheetsSource) Name() string { return "sheets:" + s.SpreadsheetID }

func (s SheetsSource) Records(ctx context.Context, opts extract.Options) ([]model.TaskRecord, error) {
	readRange := s.Range
	if readRange == "" {
		readRange = opts.Sheet
	}
	grid, err := s.Client.Grid(ctx, s.SpreadsheetID, readRange)
	if err != nil {
		return nil, err
	}
	return grid.Records(opts)
}
