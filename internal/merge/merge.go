// Package merge aligns transcript segments with diarization output and renders
// the speaker-attributed transcript fed to insight extraction.
package merge

import (
	"fmt"
	"strings"

	"meeting-minutes-go/internal/types"
)

const (
	// FallbackSpeaker labels every segment when diarization produced nothing.
	FallbackSpeaker = "Speaker_1"
	// UnknownSpeaker labels a segment that overlaps no speaker turn at all.
	UnknownSpeaker = "Unknown"
)

// Merge assigns a speaker label to each transcript segment by maximum temporal
// overlap against the speaker turns. Ties keep the first speaker turn in input
// order; a segment is never dropped. The input slices are not mutated.
func Merge(transcript []types.Segment, speakers []types.SpeakerSegment) []types.Segment {
	if len(transcript) == 0 {
		return nil
	}

	merged := make([]types.Segment, 0, len(transcript))

	if len(speakers) == 0 {
		for _, seg := range transcript {
			seg.Speaker = FallbackSpeaker
			merged = append(merged, seg)
		}
		return merged
	}

	for _, seg := range transcript {
		best := UnknownSpeaker
		maxOverlap := 0.0

		for _, turn := range speakers {
			ov := overlap(seg.Start, seg.End, turn.Start, turn.End)
			// Strictly greater keeps the first turn on an exact tie.
			if ov > maxOverlap {
				maxOverlap = ov
				best = turn.Speaker
			}
		}

		seg.Speaker = best
		merged = append(merged, seg)
	}
	return merged
}

func overlap(aStart, aEnd, bStart, bEnd float64) float64 {
	start := aStart
	if bStart > start {
		start = bStart
	}
	end := aEnd
	if bEnd < end {
		end = bEnd
	}
	if end <= start {
		return 0
	}
	return end - start
}

// FormatTranscript collapses consecutive same-speaker segments into one
// paragraph, prefixed with the MM:SS timestamp of the paragraph's first
// segment. A speaker change always starts a new paragraph.
func FormatTranscript(segments []types.Segment) string {
	var paragraphs []string
	var current []string
	currentSpeaker := ""
	currentStamp := ""

	flush := func() {
		if currentSpeaker != "" && len(current) > 0 {
			paragraphs = append(paragraphs, fmt.Sprintf("%s %s: %s", currentStamp, currentSpeaker, strings.Join(current, " ")))
		}
	}

	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if seg.Speaker != currentSpeaker {
			flush()
			currentSpeaker = seg.Speaker
			currentStamp = FormatTimestamp(seg.Start)
			current = current[:0]
		}
		if text != "" {
			current = append(current, text)
		}
	}
	flush()

	return strings.Join(paragraphs, "\n\n")
}

// FormatTimestamp renders seconds as zero-padded MM:SS.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// SpeakerCount returns the number of distinct speaker labels.
func SpeakerCount(segments []types.Segment) int {
	seen := make(map[string]struct{})
	for _, seg := range segments {
		if seg.Speaker != "" {
			seen[seg.Speaker] = struct{}{}
		}
	}
	return len(seen)
}

// TotalDuration returns the latest segment end in seconds, 0 when empty.
func TotalDuration(segments []types.Segment) float64 {
	max := 0.0
	for _, seg := range segments {
		if seg.End > max {
			max = seg.End
		}
	}
	return max
}
