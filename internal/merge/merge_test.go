package merge

import (
	"reflect"
	"testing"

	"meeting-minutes-go/internal/types"
)

func TestMergeAssignsByMaxOverlap(t *testing.T) {
	transcript := []types.Segment{
		{Start: 0, End: 4, Text: "good morning everyone"},
		{Start: 4, End: 9, Text: "let's get started"},
	}
	speakers := []types.SpeakerSegment{
		{Start: 0, End: 5, Speaker: "SPEAKER_00"},
		{Start: 5, End: 10, Speaker: "SPEAKER_01"},
	}

	got := Merge(transcript, speakers)
	if len(got) != 2 {
		t.Fatalf("merged %d segments, want 2", len(got))
	}
	if got[0].Speaker != "SPEAKER_00" {
		t.Errorf("segment 0 speaker = %s, want SPEAKER_00", got[0].Speaker)
	}
	// [4,9) overlaps SPEAKER_00 by 1s and SPEAKER_01 by 4s.
	if got[1].Speaker != "SPEAKER_01" {
		t.Errorf("segment 1 speaker = %s, want SPEAKER_01", got[1].Speaker)
	}
}

func TestMergeTieBreakKeepsFirstTurn(t *testing.T) {
	transcript := []types.Segment{{Start: 10, End: 20, Text: "contested"}}
	speakers := []types.SpeakerSegment{
		{Start: 5, End: 15, Speaker: "A"},
		{Start: 15, End: 25, Speaker: "B"},
	}

	got := Merge(transcript, speakers)
	if got[0].Speaker != "A" {
		t.Errorf("tie-break speaker = %s, want A (first in input order)", got[0].Speaker)
	}
}

func TestMergeIsDeterministic(t *testing.T) {
	transcript := []types.Segment{
		{Start: 0, End: 3, Text: "one"},
		{Start: 3, End: 7, Text: "two"},
		{Start: 7, End: 12, Text: "three"},
	}
	speakers := []types.SpeakerSegment{
		{Start: 0, End: 2, Speaker: "X"},
		{Start: 2, End: 8, Speaker: "Y"},
		{Start: 8, End: 12, Speaker: "Z"},
	}

	first := Merge(transcript, speakers)
	for i := 0; i < 50; i++ {
		if again := Merge(transcript, speakers); !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differed: %+v vs %+v", i, again, first)
		}
	}
}

func TestMergeNeverDropsSegments(t *testing.T) {
	transcript := []types.Segment{
		{Start: 0, End: 2, Text: "covered"},
		{Start: 100, End: 105, Text: "orphaned"},
	}
	speakers := []types.SpeakerSegment{{Start: 0, End: 3, Speaker: "A"}}

	got := Merge(transcript, speakers)
	if len(got) != len(transcript) {
		t.Fatalf("merged %d segments, want %d", len(got), len(transcript))
	}
	if got[0].Speaker != "A" {
		t.Errorf("covered segment speaker = %s, want A", got[0].Speaker)
	}
	if got[1].Speaker != UnknownSpeaker {
		t.Errorf("orphaned segment speaker = %s, want %s", got[1].Speaker, UnknownSpeaker)
	}
	if got[1].Text != "orphaned" {
		t.Errorf("orphaned segment text = %q, want preserved", got[1].Text)
	}
}

func TestMergeWithoutDiarization(t *testing.T) {
	transcript := []types.Segment{
		{Start: 0, End: 2, Text: "a"},
		{Start: 2, End: 4, Text: "b"},
	}

	got := Merge(transcript, nil)
	for i, seg := range got {
		if seg.Speaker != FallbackSpeaker {
			t.Errorf("segment %d speaker = %s, want %s", i, seg.Speaker, FallbackSpeaker)
		}
	}
}

func TestMergeEmptyTranscript(t *testing.T) {
	if got := Merge(nil, []types.SpeakerSegment{{Start: 0, End: 1, Speaker: "A"}}); len(got) != 0 {
		t.Errorf("Merge(nil, ...) = %+v, want empty", got)
	}
}

func TestFormatTranscriptCollapsesSpeakerRuns(t *testing.T) {
	segments := []types.Segment{
		{Start: 0, End: 5, Text: "hi I am John", Speaker: "SPK1"},
		{Start: 5, End: 9, Text: "and this is my update", Speaker: "SPK1"},
		{Start: 9, End: 70, Text: "thanks John", Speaker: "SPK2"},
		{Start: 70, End: 75, Text: "one more thing", Speaker: "SPK1"},
	}

	got := FormatTranscript(segments)
	want := "00:00 SPK1: hi I am John and this is my update\n\n" +
		"00:09 SPK2: thanks John\n\n" +
		"01:10 SPK1: one more thing"
	if got != want {
		t.Errorf("formatted transcript:\n%q\nwant:\n%q", got, want)
	}
}

func TestFormatTranscriptSingleSegment(t *testing.T) {
	got := FormatTranscript([]types.Segment{{Start: 0, End: 5, Text: "hi I am John", Speaker: "SPK1"}})
	if got != "00:00 SPK1: hi I am John" {
		t.Errorf("formatted = %q", got)
	}
}

func TestFormatTimestamp(t *testing.T) {
	cases := map[float64]string{
		0:      "00:00",
		9.9:    "00:09",
		65:     "01:05",
		3599.5: "59:59",
		3600:   "60:00",
	}
	for in, want := range cases {
		if got := FormatTimestamp(in); got != want {
			t.Errorf("FormatTimestamp(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestSpeakerCountAndTotalDuration(t *testing.T) {
	segments := []types.Segment{
		{Start: 0, End: 5, Speaker: "A"},
		{Start: 5, End: 8, Speaker: "B"},
		{Start: 8, End: 12, Speaker: "A"},
	}
	if got := SpeakerCount(segments); got != 2 {
		t.Errorf("SpeakerCount = %d, want 2", got)
	}
	if got := TotalDuration(segments); got != 12 {
		t.Errorf("TotalDuration = %v, want 12", got)
	}
	if got := TotalDuration(nil); got != 0 {
		t.Errorf("TotalDuration(nil) = %v, want 0", got)
	}
}
