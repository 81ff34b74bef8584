// Package media fetches recording bytes from an external store into a scoped
// temporary file owned by one pipeline run.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrNotFound is returned when the source file does not exist in the store.
var ErrNotFound = errors.New("source file not found")

// Downloader acquires a recording into a local temp file. The returned cleanup
// func deletes it and is safe to call more than once; callers must defer it on
// every exit path so failed runs do not leak storage.
type Downloader interface {
	Download(ctx context.Context, sourceFileID string) (path string, cleanup func(), err error)
}

// RecordingChecker is implemented by sources that can inspect a file's
// metadata before download, letting the trigger layer skip non-video files.
type RecordingChecker interface {
	IsRecording(ctx context.Context, sourceFileID string) (bool, error)
}

// writeTemp copies r into a fresh temp file under dir and returns the path
// with its cleanup func. The file is removed if the copy fails.
func writeTemp(dir, pattern string, r io.Reader) (string, func(), error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", nil, fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("write media: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("close media file: %w", err)
	}

	var once sync.Once
	path := f.Name()
	cleanup := func() {
		once.Do(func() { os.Remove(path) })
	}
	return path, cleanup, nil
}
