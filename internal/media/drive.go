package media

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Drive downloads recordings from Google Drive by file ID. This matches the
// Meet-recording flow where the webhook reports Drive file IDs.
type Drive struct {
	service *drive.Service
	tempDir string
}

// NewDrive builds a Drive downloader using application default credentials
// unless extra client options are supplied.
func NewDrive(ctx context.Context, tempDir string, opts ...option.ClientOption) (*Drive, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &Drive{service: svc, tempDir: tempDir}, nil
}

// IsRecording reports whether the Drive file looks like a meeting recording,
// judged by its mime type or file extension.
func (d *Drive) IsRecording(ctx context.Context, sourceFileID string) (bool, error) {
	meta, err := d.service.Files.Get(sourceFileID).Fields("id", "name", "mimeType").Context(ctx).Do()
	if err != nil {
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == http.StatusNotFound {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("get drive file metadata %s: %w", sourceFileID, err)
	}

	if strings.HasPrefix(meta.MimeType, "video/") {
		return true, nil
	}
	switch strings.ToLower(filepath.Ext(meta.Name)) {
	case ".mp4", ".mov", ".avi":
		return true, nil
	}
	return false, nil
}

func (d *Drive) Download(ctx context.Context, sourceFileID string) (string, func(), error) {
	resp, err := d.service.Files.Get(sourceFileID).Context(ctx).Download()
	if err != nil {
		if gerr, ok := err.(*googleapi.Error); ok && gerr.Code == http.StatusNotFound {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("download drive file %s: %w", sourceFileID, err)
	}
	defer resp.Body.Close()

	return writeTemp(d.tempDir, "recording-*.media", resp.Body)
}
