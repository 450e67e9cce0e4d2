package google

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/harrisonrobin/baronboard/pkg/extract"
	"github.com/harrisonrobin/baronboard/pkg/model"
	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
)

const (
	googleSheetMime = "application/vnd.google-apps.spreadsheet"
	xlsxMime        = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// upper bound on bytes read from one download
	maxDownloadBytes = 64 << 20
)

// DriveClient downloads task workbooks from Google Drive.
type DriveClient struct {
	srv *drive.Service
}

func NewDriveClient(srv *drive.Service) *DriveClient {
	return &DriveClient{srv: srv}
}

// Download returns the file name and xlsx bytes of a Drive file. Native
// Google Sheets are exported as xlsx, which keeps embedded images.
func (c *DriveClient) Download(ctx context.Context, fileID string) (string, []byte, error) {
	meta, err := c.srv.Files.Get(fileID).Fields("id", "name", "mimeType").SupportsAllDrives(true).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("unable to look up Drive file %s: %w", fileID, err)
	}

	var body io.ReadCloser
	if meta.MimeType == googleSheetMime {
		resp, err := c.srv.Files.Export(fileID, xlsxMime).Context(ctx).Download()
		if err != nil {
			return "", nil, fmt.Errorf("unable to export %s as xlsx: %w", meta.Name, err)
		}
		body = resp.Body
	} else {
		resp, err := c.srv.Files.Get(fileID).SupportsAllDrives(true).Context(ctx).Download()
		if err != nil {
			return "", nil, fmt.Errorf("unable to download %s: %w", meta.Name, err)
		}
		body = resp.Body
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxDownloadBytes))
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", meta.Name, err)
	}
	name := meta.Name
	if meta.MimeType == googleSheetMime && !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
		name += ".xlsx"
	}
	zap.S().Infof("downloaded %s from Drive (%d bytes)", name, len(data))
	return name, data, nil
}

// DriveSource reads task records from a workbook stored on Drive.
type DriveSource struct {
	Client *DriveClient
	FileID string
}

func (s DriveSource) Name() string { return "drive:" + s.FileID }

func (s DriveSource) Records(ctx context.Context, opts extract.Options) ([]model.TaskRecord, error) {
	_, data, err := s.Client.Download(ctx, s.FileID)
	if err != nil {
		return nil, err
	}
	return extract.Read(bytes.NewReader(data), opts)
}
