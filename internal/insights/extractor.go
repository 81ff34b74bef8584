// Package insights turns a formatted transcript into a validated structured
// record via a language model, treating the model's output as untrusted input.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"meeting-minutes-go/internal/logger"
	"meeting-minutes-go/internal/types"
)

const (
	defaultTitle    = "Meeting Minutes"
	fallbackSummary = "Failed to process meeting content automatically."
)

type Extractor struct {
	client Client
	log    *logger.Logger
}

func NewExtractor(client Client, log *logger.Logger) *Extractor {
	return &Extractor{client: client, log: log}
}

// Extract asks the model for structured minutes and normalizes whatever comes
// back. It returns an error only when the model call itself fails; malformed
// model output is absorbed into the fallback record.
func (e *Extractor) Extract(ctx context.Context, formattedTranscript string, segments []types.Segment) (types.Insights, error) {
	log := e.log.WithComponent("insights")
	log.Info("extracting meeting insights")

	raw, err := e.client.Complete(ctx, systemPrompt, buildPrompt(formattedTranscript, segments))
	if err != nil {
		return types.Insights{}, fmt.Errorf("extract insights: %w", err)
	}

	out, parsed := parseResponse(raw)
	if !parsed {
		log.Warn("model response was not valid JSON, using fallback record")
	}
	return out, nil
}

// Fallback is the terminal, always-valid record substituted when the model's
// output cannot be parsed.
func Fallback() types.Insights {
	return types.Insights{
		MeetingTitle:      defaultTitle,
		Attendees:         []types.Attendee{},
		AgendaItems:       []types.AgendaItem{},
		DiscussionSummary: fallbackSummary,
		DecisionsMade:     []types.Decision{},
		ActionItems:       []types.ActionItem{},
		NextSteps:         []string{},
	}
}

// rawInsights mirrors the requested schema with pointer fields so missing
// keys are distinguishable from empty values during backfill.
type rawInsights struct {
	MeetingTitle      *string         `json:"meeting_title"`
	Attendees         []rawAttendee   `json:"attendees"`
	AgendaItems       []rawAgendaItem `json:"agenda_items"`
	DiscussionSummary *string         `json:"discussion_summary"`
	DecisionsMade     []rawDecision   `json:"decisions_made"`
	ActionItems       []rawActionItem `json:"action_items"`
	NextSteps         []string        `json:"next_steps"`
}

type rawAttendee struct {
	Name             *string `json:"name"`
	Role             *string `json:"role"`
	Email            *string `json:"email"`
	KeyContributions *string `json:"key_contributions"`
}

type rawAgendaItem struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Timestamp   *string `json:"timestamp"`
	Outcome     *string `json:"outcome"`
}

type rawDecision struct {
	Decision      *string `json:"decision"`
	Rationale     *string `json:"rationale"`
	Impact        *string `json:"impact"`
	DecisionMaker *string `json:"decision_maker"`
	Timestamp     *string `json:"timestamp"`
}

type rawActionItem struct {
	Task     *string `json:"task"`
	Owner    *string `json:"owner"`
	Deadline *string `json:"deadline"`
	Priority *string `json:"priority"`
	Status   *string `json:"status"`
}

// parseResponse strips code fences, parses the model output, and backfills
// every recognized field. The second return reports whether the payload
// parsed; when false the result is the fallback record.
func parseResponse(content string) (types.Insights, bool) {
	content = stripFences(content)

	var raw rawInsights
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return Fallback(), false
	}

	out := types.Insights{
		MeetingTitle:      valueOr(raw.MeetingTitle, defaultTitle),
		DiscussionSummary: valueOr(raw.DiscussionSummary, ""),
		Attendees:         []types.Attendee{},
		AgendaItems:       []types.AgendaItem{},
		DecisionsMade:     []types.Decision{},
		ActionItems:       []types.ActionItem{},
		NextSteps:         []string{},
	}
	if out.MeetingTitle == "" {
		out.MeetingTitle = defaultTitle
	}

	for _, a := range raw.Attendees {
		out.Attendees = append(out.Attendees, types.Attendee{
			Name:             valueOr(a.Name, "Unknown"),
			Role:             a.Role,
			Email:            a.Email,
			KeyContributions: valueOr(a.KeyContributions, ""),
		})
	}

	for _, item := range raw.AgendaItems {
		out.AgendaItems = append(out.AgendaItems, types.AgendaItem{
			Title:       valueOr(item.Title, ""),
			Description: valueOr(item.Description, ""),
			Timestamp:   valueOr(item.Timestamp, ""),
			Outcome:     valueOr(item.Outcome, ""),
		})
	}

	for _, d := range raw.DecisionsMade {
		out.DecisionsMade = append(out.DecisionsMade, types.Decision{
			Decision:      valueOr(d.Decision, ""),
			Rationale:     valueOr(d.Rationale, ""),
			Impact:        valueOr(d.Impact, ""),
			DecisionMaker: valueOr(d.DecisionMaker, ""),
			Timestamp:     valueOr(d.Timestamp, ""),
		})
	}

	for _, item := range raw.ActionItems {
		out.ActionItems = append(out.ActionItems, types.ActionItem{
			Task:     valueOr(item.Task, "Task description missing"),
			Owner:    valueOr(item.Owner, "TBD"),
			Deadline: valueOr(item.Deadline, "TBD"),
			Priority: valueOr(item.Priority, "Medium"),
			Status:   valueOr(item.Status, "Assigned"),
		})
	}

	if raw.NextSteps != nil {
		out.NextSteps = raw.NextSteps
	}

	return out, true
}

// stripFences removes surrounding markdown code-fence markers when the model
// wraps its JSON despite being told not to.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```json") {
		content = content[len("```json"):]
	} else if strings.HasPrefix(content, "```") {
		content = content[len("```"):]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

func valueOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
