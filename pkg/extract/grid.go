// Package extract reads task rows out of spreadsheets.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/harrisonrobin/baronboard/pkg/model"
	"github.com/harrisonrobin/baronboard/pkg/util"
)

// Column headers the task sheet is expected to carry.
const (
	ColTask      = "TASK"
	ColRequester = "Requester"
	ColStart     = "START DATE"
	ColDue       = "DUE DATE"
	ColConfirm   = "CONFIRM FROM BARON"
	ColPicture   = "PICTURE"
)

// DefaultHeaderRow is the 1-indexed row holding the column headers.
const DefaultHeaderRow = 3

var requiredColumns = []string{ColTask, ColRequester, ColStart, ColDue, ColConfirm, ColPicture}

var (
	// ErrUnreadable means the input is not a workbook we can open.
	ErrUnreadable = errors.New("unreadable spreadsheet")
	// ErrHeaderNotFound means no expected column appears in the header row.
	ErrHeaderNotFound = errors.New("task header row not found")
)

// Options controls how a sheet is turned into records.
type Options struct {
	// Sheet to read; empty means the active sheet.
	Sheet string
	// HeaderRow is 1-indexed; zero means DefaultHeaderRow.
	HeaderRow int
}

func (o Options) headerRow() int {
	if o.HeaderRow <= 0 {
		return DefaultHeaderRow
	}
	return o.HeaderRow
}

// Grid is a sheet as rows of cell text. Rows[0] is sheet row 1.
// Pictures are keyed by cell reference, e.g. "G4".
type Grid struct {
	Rows     [][]string
	Pictures map[string]model.Picture
}

// Cell returns the text at 0-indexed row and column, or "" when the row is
// short.
func (g Grid) Cell(row, col int) string {
	if row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Rows[row]) {
		return ""
	}
	return g.Rows[row][col]
}

// Columns maps each expected header to its 0-indexed column. Headers missing
// from the row are absent from the map.
func (g Grid) Columns(headerRow int) map[string]int {
	cols := make(map[string]int)
	if headerRow < 1 || headerRow > len(g.Rows) {
		return cols
	}
	for i, name := range g.Rows[headerRow-1] {
		name = strings.TrimSpace(name)
		for _, want := range requiredColumns {
			if name == want {
				if _, dup := cols[want]; !dup {
					cols[want] = i
				}
			}
		}
	}
	return cols
}

// Records converts the rows below the header into task records.
// A missing column leaves its field blank on every row; a header with none
// of the expected columns is ErrHeaderNotFound. Blank rows without a
// picture are skipped.
func (g Grid) Records(opts Options) ([]model.TaskRecord, error) {
	headerRow := opts.headerRow()
	cols := g.Columns(headerRow)
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: no %s/%s/... columns in row %d", ErrHeaderNotFound, ColTask, ColDue, headerRow)
	}

	lastRow := len(g.Rows)
	for ref := range g.Pictures {
		if _, row, err := splitCellRef(ref); err == nil && row > lastRow {
			lastRow = row
		}
	}

	field := func(row int, name string) string {
		col, ok := cols[name]
		if !ok {
			return ""
		}
		return util.SafeValue(g.Cell(row-1, col))
	}

	var records []model.TaskRecord
	for row := headerRow + 1; row <= lastRow; row++ {
		rec := model.TaskRecord{
			Row:              row,
			Task:             field(row, ColTask),
			Requester:        field(row, ColRequester),
			ConfirmFromBaron: field(row, ColConfirm),
			StartRaw:         field(row, ColStart),
			DueRaw:           field(row, ColDue),
		}
		rec.StartDate, _ = util.ParseDate(rec.StartRaw)
		rec.DueDate, _ = util.ParseDate(rec.DueRaw)

		if col, ok := cols[ColPicture]; ok {
			if pic, ok := g.Pictures[cellRef(col, row)]; ok {
				p := pic
				rec.Picture = &p
			}
		}

		if isBlank(rec) {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func isBlank(r model.TaskRecord) bool {
	return r.Task == "" && r.Requester == "" && r.ConfirmFromBaron == "" &&
		r.StartRaw == "" && r.DueRaw == "" && !r.HasPicture()
}
