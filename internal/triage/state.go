package triage

import (
	"fmt"
	"time"
)

// DefaultMessageHistoryLimit bounds the rolling window of role-tagged turns
// kept as LLM context.
const DefaultMessageHistoryLimit = 20

// ChatMessage is a single role-tagged turn in the conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// IntakeHistory is the structured data assembled from free-text patient input
// over the life of one session.
type IntakeHistory struct {
	PatientName      string     `json:"patient_name,omitempty"`
	PatientEmail     string     `json:"patient_email,omitempty"`
	SymptomOverview  string     `json:"symptom_overview,omitempty"`
	SymptomHistory   string     `json:"symptom_history,omitempty"`
	PreferredTimeUTC *time.Time `json:"preferred_time_utc,omitempty"`
	LocalePreference string     `json:"locale_preference,omitempty"`
	Timezone         string     `json:"timezone,omitempty"`
	EmergencyFlag    bool       `json:"emergency_flag,omitempty"`
	AppointmentID    string     `json:"appointment_id,omitempty"`
	ConfirmedAt      *time.Time `json:"appointment_confirmed_at,omitempty"`

	// Notes is an append-only audit log of raw patient inputs.
	Notes []string `json:"notes,omitempty"`

	// MessageHistory is the bounded rolling window of prior turns.
	MessageHistory []ChatMessage `json:"message_history,omitempty"`
}

// AddNote appends a raw-input audit entry. Notes are never rewritten, so the
// trail reflects exactly what the patient typed regardless of parse success.
func (h *IntakeHistory) AddNote(kind, raw string) {
	h.Notes = append(h.Notes, fmt.Sprintf("%s: %s", kind, raw))
}

// AddMessage appends a turn to the history window, evicting the oldest
// entries once the cap is exceeded.
func (h *IntakeHistory) AddMessage(role, content string, limit int) {
	if limit <= 0 {
		limit = DefaultMessageHistoryLimit
	}
	h.MessageHistory = append(h.MessageHistory, ChatMessage{Role: role, Content: content})
	if len(h.MessageHistory) > limit {
		h.MessageHistory = h.MessageHistory[len(h.MessageHistory)-limit:]
	}
}

// SummaryLines renders the captured details for confirmation prompts and emails.
func (h *IntakeHistory) SummaryLines() []string {
	var lines []string
	if h.PatientName != "" {
		lines = append(lines, "Patient name: "+h.PatientName)
	}
	if h.PatientEmail != "" {
		lines = append(lines, "Contact email: "+h.PatientEmail)
	}
	if h.SymptomOverview != "" {
		lines = append(lines, "Primary concern: "+h.SymptomOverview)
	}
	if h.SymptomHistory != "" {
		lines = append(lines, "Symptom history: "+h.SymptomHistory)
	}
	if h.PreferredTimeUTC != nil {
		lines = append(lines, "Preferred time (UTC): "+h.PreferredTimeUTC.Format(time.RFC3339))
	}
	if h.LocalePreference != "" {
		lines = append(lines, "Language preference: "+h.LocalePreference)
	}
	if h.EmergencyFlag {
		lines = append(lines, "Emergency escalation: patient advised to seek urgent care")
	}
	return lines
}

// Location resolves the patient's stored timezone, defaulting to UTC.
func (h *IntakeHistory) Location() *time.Location {
	if h.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(h.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ConversationState is the mutable per-session state for an intake conversation.
type ConversationState struct {
	SessionID string        `json:"session_id"`
	Stage     Stage         `json:"stage"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Intake    IntakeHistory `json:"intake"`
}

// Touch refreshes the activity timestamp used for TTL expiry.
func (s *ConversationState) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy so callers can mutate without sharing slices.
func (s *ConversationState) Clone() *ConversationState {
	out := *s
	out.Intake.Notes = append([]string(nil), s.Intake.Notes...)
	out.Intake.MessageHistory = append([]ChatMessage(nil), s.Intake.MessageHistory...)
	if s.Intake.PreferredTimeUTC != nil {
		t := *s.Intake.PreferredTimeUTC
		out.Intake.PreferredTimeUTC = &t
	}
	if s.Intake.ConfirmedAt != nil {
		t := *s.Intake.ConfirmedAt
		out.Intake.ConfirmedAt = &t
	}
	return &out
}
