package extract

import (
	"fmt"
	"io"
	"mime"
	"strings"

	"github.com/harrisonrobin/baronboard/pkg/model"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReadXLSX loads one sheet of an xlsx workbook, with raw cell values (dates
// stay Excel serials) and the images anchored on it.
func ReadXLSX(r io.Reader, opts Options) (Grid, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Grid{}, fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(f.GetActiveSheetIndex())
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return Grid{}, fmt.Errorf("%w: sheet %q not found", ErrUnreadable, sheet)
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Grid{}, fmt.Errorf("%w: reading sheet %q: %w", ErrUnreadable, sheet, err)
	}

	grid := Grid{Rows: rows, Pictures: make(map[string]model.Picture)}

	cells, err := f.GetPictureCells(sheet)
	if err != nil {
		// Images are a side channel; a broken drawing part should not hide the rows.
		zap.S().Warnf("could not list pictures on sheet %q: %v", sheet, err)
		return grid, nil
	}
	for _, cell := range cells {
		pics, err := f.GetPictures(sheet, cell)
		if err != nil {
			zap.S().Warnf("could not read picture at %s: %v", cell, err)
			continue
		}
		if len(pics) == 0 || len(pics[0].File) == 0 {
			continue
		}
		grid.Pictures[cell] = model.Picture{
			Cell:        cell,
			ContentType: contentType(pics[0].Extension),
			Data:        pics[0].File,
		}
	}
	zap.S().Debugf("read sheet %q: %d rows, %d pictures", sheet, len(rows), len(grid.Pictures))
	return grid, nil
}

// Read extracts task records from an xlsx workbook.
func Read(r io.Reader, opts Options) ([]model.TaskRecord, error) {
	grid, err := ReadXLSX(r, opts)
	if err != nil {
		return nil, err
	}
	return grid.Records(opts)
}

func contentType(ext string) string {
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	if t := mime.TypeByExtension(strings.ToLower(ext)); strings.HasPrefix(t, "image/") {
		return t
	}
	return "image/png"
}
