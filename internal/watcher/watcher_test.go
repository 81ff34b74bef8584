package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"meeting-minutes-go/internal/logger"
)

func TestIsRecording(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"/inbox/standup.mp4", true},
		{"/inbox/standup.MP4", true},
		{"/inbox/call.m4a", true},
		{"/inbox/call.wav", true},
		{"/inbox/notes.txt", false},
		{"/inbox/slides.pdf", false},
		{"/inbox/noext", false},
	}
	for _, tc := range cases {
		if got := isRecording(tc.path); got != tc.want {
			t.Errorf("isRecording(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestWatcherTriggersOnNewRecording(t *testing.T) {
	dir := t.TempDir()

	triggered := make(chan string, 1)
	w, err := New(dir, func(ctx context.Context, sourceFileID string) error {
		triggered <- sourceFileID
		return nil
	}, logger.New())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Stop()
	w.settle = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	path := filepath.Join(dir, "standup.mp4")
	if err := os.WriteFile(path, []byte("fake media"), 0o644); err != nil {
		t.Fatalf("write recording: %v", err)
	}

	select {
	case got := <-triggered:
		if got != path {
			t.Errorf("triggered with %q, want %q", got, path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("trigger was not called for new recording")
	}
}

func TestWatcherIgnoresNonRecordings(t *testing.T) {
	dir := t.TempDir()

	triggered := make(chan string, 1)
	w, err := New(dir, func(ctx context.Context, sourceFileID string) error {
		triggered <- sourceFileID
		return nil
	}, logger.New())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Stop()
	w.settle = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("agenda"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case got := <-triggered:
		t.Fatalf("unexpected trigger for %q", got)
	case <-time.After(500 * time.Millisecond):
	}
}
