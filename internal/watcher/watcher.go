// Package watcher monitors an inbox directory and triggers processing for
// recording files dropped into it. It is the local-filesystem ingestion path
// next to the Drive webhook.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"meeting-minutes-go/internal/logger"
)

// TriggerFunc starts processing for one recording path. The pipeline's own
// idempotency check absorbs duplicate events for the same file.
type TriggerFunc func(ctx context.Context, sourceFileID string) error

type Watcher struct {
	inboxDir string
	trigger  TriggerFunc
	watcher  *fsnotify.Watcher
	log      *logger.Logger

	// settle is how long a file must stay untouched before it is considered
	// fully written.
	settle time.Duration
}

func New(inboxDir string, trigger TriggerFunc, log *logger.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(inboxDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch inbox %s: %w", inboxDir, err)
	}

	return &Watcher{
		inboxDir: inboxDir,
		trigger:  trigger,
		watcher:  fsw,
		log:      log,
		settle:   2 * time.Second,
	}, nil
}

// Start blocks, dispatching triggers until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	log := w.log.WithComponent("watcher").WithField("inbox_dir", w.inboxDir)
	log.Info("inbox watcher started")

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("inbox watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !isRecording(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for path, last := range pending {
				if now.Sub(last) < w.settle {
					continue
				}
				delete(pending, path)
				log.WithField("path", path).Info("new recording detected")
				if err := w.trigger(ctx, path); err != nil {
					log.WithField("path", path).WithField("error", err.Error()).Error("failed to trigger processing")
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			log.WithField("error", err.Error()).Error("watcher error")
		}
	}
}

// Stop closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func isRecording(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp4", ".mov", ".avi", ".mkv", ".webm", ".wav", ".m4a", ".mp3":
		return true
	}
	return false
}
