// Package export writes the task table as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/harrisonrobin/baronboard/pkg/extract"
	"github.com/harrisonrobin/baronboard/pkg/model"
	"github.com/harrisonrobin/baronboard/pkg/util"
)

// ContentType of the exported file.
const ContentType = "text/csv; charset=utf-8"

// bom marks the file as UTF-8 for spreadsheet apps.
var bom = []byte{0xEF, 0xBB, 0xBF}

// Header is the first CSV row.
var Header = []string{
	extract.ColTask,
	extract.ColRequester,
	extract.ColStart,
	extract.ColDue,
	extract.ColConfirm,
	"STATUS",
}

// WriteCSV writes records with a UTF-8 byte order mark and a header row.
func WriteCSV(w io.Writer, records []model.TaskRecord) error {
	if _, err := w.Write(bom); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range records {
		row := []string{
			r.Task,
			r.Requester,
			util.DisplayDate(r.StartDate, r.StartRaw),
			util.DisplayDate(r.DueDate, r.DueRaw),
			r.ConfirmFromBaron,
			r.Status.Label(),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row %d: %w", r.Row, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename is the timestamped name of an export made at now.
func Filename(now time.Time) string {
	return "tasks_" + now.Format("20060102_150405") + ".csv"
}
