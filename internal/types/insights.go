package types

// Insights holds the structured meeting data extracted from a formatted
// transcript. Field names mirror the JSON schema requested from the model.
type Insights struct {
	MeetingTitle      string       `json:"meeting_title" firestore:"meeting_title"`
	Attendees         []Attendee   `json:"attendees" firestore:"attendees"`
	AgendaItems       []AgendaItem `json:"agenda_items" firestore:"agenda_items"`
	DiscussionSummary string       `json:"discussion_summary" firestore:"discussion_summary"`
	DecisionsMade     []Decision   `json:"decisions_made" firestore:"decisions_made"`
	ActionItems       []ActionItem `json:"action_items" firestore:"action_items"`
	NextSteps         []string     `json:"next_steps" firestore:"next_steps"`
}

// Attendee is one meeting participant. Role and Email stay nil unless the
// transcript states them explicitly.
type Attendee struct {
	Name             string  `json:"name" firestore:"name"`
	Role             *string `json:"role" firestore:"role"`
	Email            *string `json:"email" firestore:"email"`
	KeyContributions string  `json:"key_contributions,omitempty" firestore:"key_contributions"`
}

type AgendaItem struct {
	Title       string `json:"title" firestore:"title"`
	Description string `json:"description,omitempty" firestore:"description"`
	Timestamp   string `json:"timestamp,omitempty" firestore:"timestamp"`
	Outcome     string `json:"outcome,omitempty" firestore:"outcome"`
}

type Decision struct {
	Decision      string `json:"decision" firestore:"decision"`
	Rationale     string `json:"rationale,omitempty" firestore:"rationale"`
	Impact        string `json:"impact,omitempty" firestore:"impact"`
	DecisionMaker string `json:"decision_maker,omitempty" firestore:"decision_maker"`
	Timestamp     string `json:"timestamp,omitempty" firestore:"timestamp"`
}

type ActionItem struct {
	Task     string `json:"task" firestore:"task"`
	Owner    string `json:"owner" firestore:"owner"`
	Deadline string `json:"deadline" firestore:"deadline"`
	Priority string `json:"priority" firestore:"priority"`
	Status   string `json:"status" firestore:"status"`
}
