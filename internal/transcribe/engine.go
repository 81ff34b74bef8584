// Package transcribe converts an audio file into timestamped text segments.
package transcribe

import (
	"context"

	"meeting-minutes-go/internal/types"
)

// Result is the transcription output before any speaker attribution.
type Result struct {
	Text     string          `json:"text"`
	Language string          `json:"language"`
	Segments []types.Segment `json:"segments"`
}

// Engine is a pluggable speech-to-text backend. A transport failure here is
// fatal to the pipeline run.
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) (Result, error)
}
