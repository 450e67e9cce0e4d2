package report

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/harrisonrobin/baronboard/pkg/extract"
	"github.com/harrisonrobin/baronboard/pkg/model"
)

// Source produces the task records of one spreadsheet.
type Source interface {
	Name() string
	Records(ctx context.Context, opts extract.Options) ([]model.TaskRecord, error)
}

// FileSource is an xlsx workbook on local disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return filepath.Base(s.Path) }

func (s FileSource) Records(_ context.Context, opts extract.Options) ([]model.TaskRecord, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", extract.ErrUnreadable, err)
	}
	defer f.Close()
	return extract.Read(f, opts)
}

// BytesSource is an xlsx workbook already in memory, e.g. an upload.
type BytesSource struct {
	Filename string
	Data     []byte
}

func (s BytesSource) Name() string { return s.Filename }

func (s BytesSource) Records(_ context.Context, opts extract.Options) ([]model.TaskRecord, error) {
	return extract.Read(bytes.NewReader(s.Data), opts)
}
