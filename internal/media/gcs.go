package media

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
)

// GCS downloads recordings from a Cloud Storage bucket; the source file ID is
// the object name.
type GCS struct {
	bucket  *storage.BucketHandle
	tempDir string
}

func NewGCS(ctx context.Context, bucketName, tempDir string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return &GCS{bucket: client.Bucket(bucketName), tempDir: tempDir}, nil
}

func (g *GCS) Download(ctx context.Context, sourceFileID string) (string, func(), error) {
	r, err := g.bucket.Object(sourceFileID).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("open object %s: %w", sourceFileID, err)
	}
	defer r.Close()

	return writeTemp(g.tempDir, "recording-*.media", r)
}
