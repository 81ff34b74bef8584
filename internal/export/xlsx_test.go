package export

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"meeting-minutes-go/internal/types"
)

func TestXLSXRoundTrip(t *testing.T) {
	role := "PM"
	m := &types.Meeting{
		ID:              "m1",
		Title:           "Q3 Planning Sync",
		Status:          types.StatusDraftReady,
		DurationMinutes: 42,
		SpeakerCount:    3,
		Insights: types.Insights{
			MeetingTitle:      "Q3 Planning Sync",
			DiscussionSummary: "Scope agreed.",
			Attendees:         []types.Attendee{{Name: "John", Role: &role}},
			DecisionsMade:     []types.Decision{{Decision: "Ship in September", DecisionMaker: "Team consensus"}},
			ActionItems: []types.ActionItem{
				{Task: "Draft budget", Owner: "John", Deadline: "2026-09-15", Priority: "High", Status: "Assigned"},
				{Task: "Book venue", Owner: "TBD", Deadline: "TBD", Priority: "Medium", Status: "Assigned"},
			},
		},
	}

	data, err := XLSX(m)
	if err != nil {
		t.Fatalf("XLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Overview", "Attendees", "Decisions", "Action Items"} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Errorf("missing sheet %q", sheet)
		}
	}

	title, _ := f.GetCellValue("Overview", "B1")
	if title != "Q3 Planning Sync" {
		t.Errorf("overview title = %q", title)
	}

	name, _ := f.GetCellValue("Attendees", "A2")
	if name != "John" {
		t.Errorf("attendee name = %q", name)
	}

	rows, err := f.GetRows("Action Items")
	if err != nil {
		t.Fatalf("read action items: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("action item rows = %d, want header + 2", len(rows))
	}
	if rows[2][0] != "Book venue" || rows[2][3] != "Medium" {
		t.Errorf("action item row = %v", rows[2])
	}
}

func TestXLSXEmptyMeeting(t *testing.T) {
	data, err := XLSX(&types.Meeting{ID: "m1", Status: types.StatusError})
	if err != nil {
		t.Fatalf("XLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	title, _ := f.GetCellValue("Overview", "B1")
	if title != "Meeting Minutes" {
		t.Errorf("default title = %q", title)
	}
}
