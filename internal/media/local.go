package media

import (
	"context"
	"fmt"
	"os"
)

// Local serves recordings straight from the filesystem; the source file ID is
// a path. Used by the inbox watcher and by tests.
type Local struct {
	tempDir string
}

func NewLocal(tempDir string) *Local {
	return &Local{tempDir: tempDir}
}

func (l *Local) Download(ctx context.Context, sourceFileID string) (string, func(), error) {
	f, err := os.Open(sourceFileID)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("open local recording %s: %w", sourceFileID, err)
	}
	defer f.Close()

	// Copy even local sources so the run owns a file it is free to delete.
	return writeTemp(l.tempDir, "recording-*.media", f)
}
