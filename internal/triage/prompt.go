package triage

import "strings"

// stageTasks tell the generator what the current turn must accomplish. The
// wording is instruction to the model, not patient-facing copy.
var stageTasks = map[Stage]string{
	StageWelcome:            "Greet the patient warmly and ask what brings them in today.",
	StageConfirmIdentity:    "Confirm the patient's name and email on file are theirs. Ask for a simple yes or no.",
	StageCollectSymptoms:    "Ask the patient to describe their main symptom or concern in their own words.",
	StageCollectHistory:     "Ask when the symptoms started and how they have changed since.",
	StageCollectName:        "Ask for the patient's full name.",
	StageCollectEmail:       "Ask for an email address where the visit confirmation can be sent.",
	StageCollectTiming:      "Ask what day and time would work for a video visit.",
	StageConfirmSummary:     "Read back the collected details and ask the patient to confirm them or say what to change.",
	StageConfirmAppointment: "Ask for a final yes or no before booking the appointment.",
	StageScheduled:          "Let the patient know the appointment is booked and a confirmation email is on its way.",
	StageFollowUp:           "The patient declined booking for now. Be supportive and let them know they can come back anytime.",
	StageCompleted:          "The intake is complete. Thank the patient and close the conversation.",
	StageEmergencyEscalated: "The patient may be experiencing a medical emergency. Urge them to call emergency services or go to the nearest emergency room now. Do not collect any further information.",
}

// PromptBuilder renders the system prompt for the AI response strategy.
type PromptBuilder struct {
	// ServiceName appears in the persona line.
	ServiceName string
}

func (b PromptBuilder) serviceName() string {
	if b.ServiceName == "" {
		return "Medikah"
	}
	return b.ServiceName
}

// SystemPrompt embeds the persona, the current stage task, a snapshot of
// collected details, and the session language policy.
func (b PromptBuilder) SystemPrompt(st *ConversationState) string {
	var sb strings.Builder

	sb.WriteString("You are the virtual intake assistant for ")
	sb.WriteString(b.serviceName())
	sb.WriteString(", a telehealth service. You help patients prepare for a video visit with a doctor. ")
	sb.WriteString("You never diagnose, never prescribe, and never promise outcomes. ")
	sb.WriteString("Keep replies to two or three short sentences.\n\n")

	if task, ok := stageTasks[st.Stage]; ok {
		sb.WriteString("Current task: ")
		sb.WriteString(task)
		sb.WriteString("\n\n")
	}

	if lines := st.Intake.SummaryLines(); len(lines) > 0 {
		sb.WriteString("Details collected so far:\n")
		for _, line := range lines {
			sb.WriteString("- ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if st.Intake.LocalePreference == "es" {
		sb.WriteString("Respond in Spanish.")
	} else {
		sb.WriteString("Respond in English unless the patient writes in Spanish.")
	}

	return sb.String()
}
