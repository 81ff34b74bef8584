// Package diarize partitions audio into speaker turns. Diarization is an
// optional capability: every implementation degrades to an empty turn list
// rather than failing the pipeline run.
package diarize

import (
	"context"

	"meeting-minutes-go/internal/types"
)

// Diarizer produces speaker turns for an audio file. An empty result means
// diarization is unavailable; callers fall back to a single speaker label.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string) ([]types.SpeakerSegment, error)
}

// Noop reports no speaker turns. Used when no diarization service is configured.
type Noop struct{}

func (Noop) Diarize(ctx context.Context, audioPath string) ([]types.SpeakerSegment, error) {
	return nil, nil
}
