package types

import "time"

// Status tracks where a meeting sits in its processing lifecycle.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusDraftReady Status = "draft_ready"
	StatusSent       Status = "sent"
	StatusError      Status = "error"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusProcessing, StatusDraftReady, StatusSent, StatusError:
		return true
	}
	return false
}

// ValidTransition enforces the allowed lifecycle edges. Error and Sent are both
// re-enterable: Error via explicit reprocess, Sent via regenerate.
func ValidTransition(from, to Status) bool {
	switch from {
	case StatusProcessing:
		return to == StatusDraftReady || to == StatusError
	case StatusDraftReady:
		return to == StatusSent || to == StatusProcessing
	case StatusError:
		return to == StatusProcessing
	case StatusSent:
		return to == StatusDraftReady || to == StatusProcessing
	default:
		return false
	}
}

// Segment is one timestamped unit of transcribed speech. Speaker is empty until
// diarization merge assigns it.
type Segment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// SpeakerSegment is one speaker turn produced by diarization.
type SpeakerSegment struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Meeting is the persistent record for one recording's processing lifecycle.
type Meeting struct {
	ID           string `json:"id" firestore:"id"`
	SourceFileID string `json:"source_file_id" firestore:"source_file_id"`

	Title           string `json:"title,omitempty" firestore:"title"`
	DurationMinutes int    `json:"duration_minutes,omitempty" firestore:"duration_minutes"`

	Status       Status `json:"status" firestore:"status"`
	ErrorMessage string `json:"error_message,omitempty" firestore:"error_message"`

	RawTranscript    string    `json:"raw_transcript,omitempty" firestore:"raw_transcript"`
	Language         string    `json:"language,omitempty" firestore:"language"`
	Segments         []Segment `json:"segments,omitempty" firestore:"segments"`
	SpeakerCount     int       `json:"speaker_count,omitempty" firestore:"speaker_count"`
	TotalDurationSec float64   `json:"total_duration,omitempty" firestore:"total_duration"`

	Insights Insights `json:"insights" firestore:"insights"`

	EmailSentAt     *time.Time `json:"email_sent_at,omitempty" firestore:"email_sent_at"`
	EmailRecipients []string   `json:"email_recipients,omitempty" firestore:"email_recipients"`

	CreatedAt time.Time `json:"created_at" firestore:"created_at"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updated_at"`
}
