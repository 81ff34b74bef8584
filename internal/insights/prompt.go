package insights

import (
	"fmt"

	"meeting-minutes-go/internal/merge"
	"meeting-minutes-go/internal/types"
)

const systemPrompt = "You are an expert meeting analyst. Extract structured information from meeting transcripts and provide detailed, actionable meeting minutes."

const analysisTemplate = `Please analyze the following meeting transcript and extract comprehensive, detailed information. The meeting lasted %s and had %d participants.

TRANSCRIPT:
%s

Please provide a detailed JSON response with the following structure:

{
    "meeting_title": "Generate a descriptive, professional title based on the main topics discussed",
    "attendees": [
        {
            "name": "If a person introduced themselves clearly, use their actual name. Otherwise use 'Speaker_1', 'Speaker_2', etc.",
            "role": "Infer role/title from context if mentioned, otherwise null",
            "email": "Only if explicitly mentioned in the transcript, otherwise null",
            "key_contributions": "Summarize what this person contributed to the meeting"
        }
    ],
    "agenda_items": [
        {
            "title": "Clear, descriptive title for this discussion topic",
            "description": "What was discussed, including key points and context",
            "timestamp": "MM:SS when this topic started being discussed",
            "outcome": "What was concluded, decided, or resolved for this topic"
        }
    ],
    "discussion_summary": "A comprehensive multi-paragraph summary covering how the meeting opened, the main topics and viewpoints, key debates or concerns, and how it concluded.",
    "decisions_made": [
        {
            "decision": "Clear, specific statement of what was decided",
            "rationale": "Why this decision was made",
            "impact": "What this decision affects, changes, or enables",
            "decision_maker": "Who made or approved this decision (speaker name or 'Team consensus')",
            "timestamp": "MM:SS when this decision was made"
        }
    ],
    "action_items": [
        {
            "task": "Specific, actionable task description with clear deliverables",
            "owner": "Person responsible (actual name if mentioned, otherwise 'Speaker_X')",
            "deadline": "Specific date if mentioned (YYYY-MM-DD format), otherwise 'TBD'",
            "priority": "High, Medium, Low based on urgency and importance discussed",
            "status": "Assigned"
        }
    ],
    "next_steps": [
        "List of immediate next steps or follow-up actions needed"
    ]
}

IMPORTANT GUIDELINES:
1. Be specific and actionable in all extracted information
2. Use actual timestamps from the transcript when available
3. Infer speaker names from context when possible (e.g., if someone says "Hi, I'm John")
4. If information is not available, use appropriate defaults (null, "TBD", etc.)
5. Ensure all JSON is properly formatted and valid

Respond ONLY with the JSON object, no additional text.`

// buildPrompt assembles the analysis request, feeding the model the meeting
// duration and participant count as context.
func buildPrompt(formattedTranscript string, segments []types.Segment) string {
	total := merge.TotalDuration(segments)
	duration := fmt.Sprintf("%d:%02d", int(total)/60, int(total)%60)
	return fmt.Sprintf(analysisTemplate, duration, merge.SpeakerCount(segments), formattedTranscript)
}
