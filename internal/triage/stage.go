package triage

// Stage identifies a position in the intake conversation flow.
type Stage string

const (
	StageWelcome            Stage = "welcome"
	StageConfirmIdentity    Stage = "confirm_identity"
	StageCollectSymptoms    Stage = "collect_symptoms"
	StageCollectHistory     Stage = "collect_history"
	StageCollectName        Stage = "collect_name"
	StageCollectEmail       Stage = "collect_email"
	StageCollectTiming      Stage = "collect_timing"
	StageConfirmSummary     Stage = "confirm_summary"
	StageConfirmAppointment Stage = "confirm_appointment"
	StageScheduled          Stage = "scheduled"
	StageFollowUp           Stage = "follow_up"
	StageCompleted          Stage = "completed"
	StageEmergencyEscalated Stage = "emergency_escalated"
)

// Valid reports whether s is one of the defined stages.
func (s Stage) Valid() bool {
	switch s {
	case StageWelcome, StageConfirmIdentity, StageCollectSymptoms, StageCollectHistory,
		StageCollectName, StageCollectEmail, StageCollectTiming, StageConfirmSummary,
		StageConfirmAppointment, StageScheduled, StageFollowUp, StageCompleted,
		StageEmergencyEscalated:
		return true
	}
	return false
}

// Terminal reports whether the stage accepts no further intake collection.
func (s Stage) Terminal() bool {
	switch s {
	case StageScheduled, StageFollowUp, StageCompleted, StageEmergencyEscalated:
		return true
	}
	return false
}

// DefaultFlow returns the ordered collection stages of the intake dialogue.
// The order has churned historically (name-first vs symptoms-first), so the
// engine treats it as data rather than hard-coding transitions.
func DefaultFlow() []Stage {
	return []Stage{
		StageCollectSymptoms,
		StageCollectHistory,
		StageCollectName,
		StageCollectEmail,
		StageCollectTiming,
	}
}

// collected reports whether the intake already holds the field a collection
// stage gathers. Used to skip stages whose data arrived another way, e.g.
// pre-authenticated identity or a summary correction.
func collected(stage Stage, intake *IntakeHistory) bool {
	switch stage {
	case StageCollectSymptoms:
		return intake.SymptomOverview != ""
	case StageCollectHistory:
		return intake.SymptomHistory != ""
	case StageCollectName:
		return intake.PatientName != ""
	case StageCollectEmail:
		return intake.PatientEmail != ""
	case StageCollectTiming:
		return intake.PreferredTimeUTC != nil
	}
	return false
}
