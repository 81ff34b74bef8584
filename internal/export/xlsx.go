// Package export renders finished meeting minutes as an XLSX workbook.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"meeting-minutes-go/internal/types"
)

const (
	sheetOverview  = "Overview"
	sheetAttendees = "Attendees"
	sheetDecisions = "Decisions"
	sheetActions   = "Action Items"
)

// XLSX builds a workbook with one sheet per minutes section and returns the
// serialized file.
func XLSX(m *types.Meeting) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// The default sheet becomes Overview so the workbook opens on it.
	if err := f.SetSheetName("Sheet1", sheetOverview); err != nil {
		return nil, fmt.Errorf("rename default sheet: %w", err)
	}

	writeOverview(f, m)

	if err := writeAttendees(f, m.Insights.Attendees); err != nil {
		return nil, err
	}
	if err := writeDecisions(f, m.Insights.DecisionsMade); err != nil {
		return nil, err
	}
	if err := writeActionItems(f, m.Insights.ActionItems); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeOverview(f *excelize.File, m *types.Meeting) {
	title := m.Title
	if title == "" {
		title = "Meeting Minutes"
	}
	rows := [][]interface{}{
		{"Title", title},
		{"Status", string(m.Status)},
		{"Duration (minutes)", m.DurationMinutes},
		{"Speakers", m.SpeakerCount},
		{"Summary", m.Insights.DiscussionSummary},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = f.SetSheetRow(sheetOverview, cell, &row)
	}
}

func writeAttendees(f *excelize.File, attendees []types.Attendee) error {
	if _, err := f.NewSheet(sheetAttendees); err != nil {
		return fmt.Errorf("create attendees sheet: %w", err)
	}
	header := []interface{}{"Name", "Role", "Email", "Key Contributions"}
	_ = f.SetSheetRow(sheetAttendees, "A1", &header)

	for i, a := range attendees {
		row := []interface{}{a.Name, deref(a.Role), deref(a.Email), a.KeyContributions}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetAttendees, cell, &row); err != nil {
			return fmt.Errorf("write attendee row: %w", err)
		}
	}
	return nil
}

func writeDecisions(f *excelize.File, decisions []types.Decision) error {
	if _, err := f.NewSheet(sheetDecisions); err != nil {
		return fmt.Errorf("create decisions sheet: %w", err)
	}
	header := []interface{}{"Decision", "Rationale", "Impact", "Decision Maker", "Timestamp"}
	_ = f.SetSheetRow(sheetDecisions, "A1", &header)

	for i, d := range decisions {
		row := []interface{}{d.Decision, d.Rationale, d.Impact, d.DecisionMaker, d.Timestamp}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetDecisions, cell, &row); err != nil {
			return fmt.Errorf("write decision row: %w", err)
		}
	}
	return nil
}

func writeActionItems(f *excelize.File, items []types.ActionItem) error {
	if _, err := f.NewSheet(sheetActions); err != nil {
		return fmt.Errorf("create action items sheet: %w", err)
	}
	header := []interface{}{"Task", "Owner", "Deadline", "Priority", "Status"}
	_ = f.SetSheetRow(sheetActions, "A1", &header)

	for i, item := range items {
		row := []interface{}{item.Task, item.Owner, item.Deadline, item.Priority, item.Status}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetActions, cell, &row); err != nil {
			return fmt.Errorf("write action item row: %w", err)
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
