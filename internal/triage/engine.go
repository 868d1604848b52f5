package triage

import (
	"strings"
	"time"
)

// ReplyKey names the canonical response for the situation the engine left the
// conversation in. The responder renders it through the LLM or the fallback
// template table.
type ReplyKey string

const (
	ReplyWelcome            ReplyKey = "welcome"
	ReplyConfirmIdentity    ReplyKey = "confirm_identity"
	ReplyAskSymptoms        ReplyKey = "ask_symptoms"
	ReplyAskHistory         ReplyKey = "ask_history"
	ReplyAskName            ReplyKey = "ask_name"
	ReplyAskEmail           ReplyKey = "ask_email"
	ReplyInvalidEmail       ReplyKey = "invalid_email"
	ReplyAskTiming          ReplyKey = "ask_timing"
	ReplyUnparseableTime    ReplyKey = "unparseable_time"
	ReplyConfirmSummary     ReplyKey = "confirm_summary"
	ReplyAskWhatToChange    ReplyKey = "ask_what_to_change"
	ReplyConfirmAppointment ReplyKey = "confirm_appointment"
	ReplyUnclearConfirm     ReplyKey = "unclear_confirmation"
	ReplyScheduled          ReplyKey = "scheduled"
	ReplyFollowUp           ReplyKey = "follow_up"
	ReplyCompleted          ReplyKey = "completed"
	ReplyEmergency          ReplyKey = "emergency"
)

// Identity is a pre-authenticated name and email supplied by an upstream auth
// collaborator.
type Identity struct {
	Name  string
	Email string
}

// TurnInput is the inbound per-message contract.
type TurnInput struct {
	Message      string
	LocaleHint   string
	TimezoneHint string
	Identity     *Identity
	Now          time.Time
}

// Outcome is what one engine transition reports back to the caller.
type Outcome struct {
	Stage Stage
	Reply ReplyKey

	// ShouldSchedule tells the caller to begin actual booking. Emitted at
	// most once per session, guarded by the stored appointment id.
	ShouldSchedule bool

	Emergency            bool
	AppointmentConfirmed bool
}

// Engine is the stage transition state machine. It is pure with respect to
// collaborators: it mutates the given state and reports an Outcome, never
// touching stores, generators, or the network.
type Engine struct {
	flow                     []Stage
	requireFinalConfirmation bool
}

// EngineConfig tunes the flow. Zero value gives the symptoms-first order with
// a final booking confirmation step.
type EngineConfig struct {
	Flow []Stage
	// SkipFinalConfirmation books directly on summary confirmation instead
	// of inserting the confirm_appointment stage.
	SkipFinalConfirmation bool
}

func NewEngine(cfg EngineConfig) *Engine {
	flow := cfg.Flow
	if len(flow) == 0 {
		flow = DefaultFlow()
	}
	return &Engine{
		flow:                     flow,
		requireFinalConfirmation: !cfg.SkipFinalConfirmation,
	}
}

// Advance processes one inbound message: exactly one transition per call.
// Emergency detection runs before all stage logic and is never suppressed.
// The raw input is appended to the audit notes before any derived field is
// mutated.
func (e *Engine) Advance(st *ConversationState, in TurnInput) Outcome {
	msg := strings.TrimSpace(in.Message)
	now := in.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	e.applyHints(st, in, msg)
	defer st.Touch()

	if msg != "" && DetectEmergency(msg) {
		st.Intake.AddNote("emergency", msg)
		st.Intake.EmergencyFlag = true
		st.Stage = StageEmergencyEscalated
		return e.outcome(st, ReplyEmergency)
	}
	if st.Stage == StageEmergencyEscalated {
		if msg != "" {
			st.Intake.AddNote("emergency", msg)
		}
		return e.outcome(st, ReplyEmergency)
	}

	if msg == "" {
		// Re-prompt for the current stage without transitioning.
		return e.outcome(st, askKey(st.Stage))
	}

	switch st.Stage {
	case StageWelcome:
		return e.handleWelcome(st, msg, now)
	case StageConfirmIdentity:
		return e.handleConfirmIdentity(st, msg)
	case StageCollectSymptoms, StageCollectHistory, StageCollectName,
		StageCollectEmail, StageCollectTiming:
		return e.handleCollect(st, msg, now)
	case StageConfirmSummary:
		return e.handleConfirmSummary(st, msg)
	case StageConfirmAppointment:
		return e.handleConfirmAppointment(st, msg)
	case StageScheduled:
		st.Intake.AddNote(string(st.Stage), msg)
		return e.outcome(st, ReplyScheduled)
	case StageCompleted:
		st.Intake.AddNote(string(st.Stage), msg)
		return e.outcome(st, ReplyCompleted)
	default: // follow_up and anything unrecognized
		st.Intake.AddNote(string(StageFollowUp), msg)
		return e.outcome(st, ReplyFollowUp)
	}
}

// applyHints fixes timezone and locale for the session. Locale is sticky:
// detected once from the first substantive message and never re-detected.
func (e *Engine) applyHints(st *ConversationState, in TurnInput, msg string) {
	if st.Intake.Timezone == "" && in.TimezoneHint != "" {
		if _, err := time.LoadLocation(in.TimezoneHint); err == nil {
			st.Intake.Timezone = in.TimezoneHint
		}
	}
	if in.Identity != nil && st.Stage == StageWelcome {
		if st.Intake.PatientName == "" && in.Identity.Name != "" {
			st.Intake.PatientName = NormalizeName(in.Identity.Name)
		}
		if st.Intake.PatientEmail == "" && in.Identity.Email != "" {
			if email, ok := ValidateEmail(in.Identity.Email); ok {
				st.Intake.PatientEmail = email
			}
		}
	}
	if st.Intake.LocalePreference == "" {
		switch {
		case in.LocaleHint != "":
			st.Intake.LocalePreference = in.LocaleHint
		case msg != "":
			st.Intake.LocalePreference = DetectLocale(msg)
		}
	}
}

// handleWelcome always advances. With a pre-authenticated identity the
// conversation detours through confirm_identity; otherwise the first message
// is already intake input and is processed by the first collection stage.
func (e *Engine) handleWelcome(st *ConversationState, msg string, now time.Time) Outcome {
	if st.Intake.PatientName != "" && st.Intake.PatientEmail != "" {
		st.Intake.AddNote(string(StageWelcome), msg)
		st.Stage = StageConfirmIdentity
		return e.outcome(st, ReplyConfirmIdentity)
	}
	st.Stage = e.nextCollectStage(st)
	return e.handleCollect(st, msg, now)
}

func (e *Engine) handleConfirmIdentity(st *ConversationState, msg string) Outcome {
	st.Intake.AddNote(string(StageConfirmIdentity), msg)
	switch ClassifyIntent(msg) {
	case IntentAffirmative:
	case IntentNegative:
		st.Intake.PatientName = ""
		st.Intake.PatientEmail = ""
	default:
		return e.outcome(st, ReplyConfirmIdentity)
	}
	st.Stage = e.nextCollectStage(st)
	return e.outcome(st, askKey(st.Stage))
}

// handleCollect stores the extracted field for the current collection stage
// and advances to the next uncollected one. Validation failure re-prompts
// without transitioning.
func (e *Engine) handleCollect(st *ConversationState, msg string, now time.Time) Outcome {
	st.Intake.AddNote(string(st.Stage), msg)

	switch st.Stage {
	case StageCollectSymptoms:
		st.Intake.SymptomOverview = msg
	case StageCollectHistory:
		if st.Intake.SymptomHistory == "" {
			st.Intake.SymptomHistory = msg
		} else {
			st.Intake.SymptomHistory += "\n" + msg
		}
	case StageCollectName:
		st.Intake.PatientName = NormalizeName(msg)
	case StageCollectEmail:
		email, ok := ValidateEmail(msg)
		if !ok {
			return e.outcome(st, ReplyInvalidEmail)
		}
		st.Intake.PatientEmail = email
	case StageCollectTiming:
		preferred, ok := ParsePreferredTime(msg, now, st.Intake.Location())
		if !ok {
			return e.outcome(st, ReplyUnparseableTime)
		}
		st.Intake.PreferredTimeUTC = &preferred
	}

	st.Stage = e.nextCollectStage(st)
	return e.outcome(st, askKey(st.Stage))
}

func (e *Engine) handleConfirmSummary(st *ConversationState, msg string) Outcome {
	st.Intake.AddNote(string(StageConfirmSummary), msg)

	// Affirmative wins even when the message mentions a field, so "yes,
	// that time works for me" confirms instead of reopening timing.
	// Corrections still route ahead of a plain decline: "no, my email is
	// wrong" edits the field.
	intent := ClassifyIntent(msg)
	if intent == IntentAffirmative {
		if e.requireFinalConfirmation {
			st.Stage = StageConfirmAppointment
			return e.outcome(st, ReplyConfirmAppointment)
		}
		return e.book(st)
	}

	switch DetectCorrection(msg) {
	case CorrectionName:
		st.Intake.PatientName = ""
		st.Stage = StageCollectName
		return e.outcome(st, ReplyAskName)
	case CorrectionEmail:
		st.Intake.PatientEmail = ""
		st.Stage = StageCollectEmail
		return e.outcome(st, ReplyAskEmail)
	case CorrectionTiming:
		st.Intake.PreferredTimeUTC = nil
		st.Stage = StageCollectTiming
		return e.outcome(st, ReplyAskTiming)
	}

	if intent == IntentNegative {
		st.Stage = StageFollowUp
		return e.outcome(st, ReplyFollowUp)
	}
	return e.outcome(st, ReplyAskWhatToChange)
}

func (e *Engine) handleConfirmAppointment(st *ConversationState, msg string) Outcome {
	st.Intake.AddNote(string(StageConfirmAppointment), msg)
	switch ClassifyIntent(msg) {
	case IntentAffirmative:
		return e.book(st)
	case IntentNegative:
		st.Stage = StageFollowUp
		return e.outcome(st, ReplyFollowUp)
	}
	return e.outcome(st, ReplyUnclearConfirm)
}

// book moves to scheduled and raises should-schedule at most once per
// session: a session that already carries an appointment id never re-signals,
// even if the confirming message is replayed.
func (e *Engine) book(st *ConversationState) Outcome {
	st.Stage = StageScheduled
	out := e.outcome(st, ReplyScheduled)
	out.ShouldSchedule = st.Intake.AppointmentID == ""
	return out
}

// nextCollectStage returns the next flow stage after the current one whose
// field is still missing, or confirm_summary when the rest is collected.
// Stages behind the current position are never revisited; a summary
// correction re-enters the flow at the corrected stage and rejoins here.
func (e *Engine) nextCollectStage(st *ConversationState) Stage {
	start := 0
	for i, stage := range e.flow {
		if stage == st.Stage {
			start = i + 1
			break
		}
	}
	for _, stage := range e.flow[start:] {
		if !collected(stage, &st.Intake) {
			return stage
		}
	}
	return StageConfirmSummary
}

func (e *Engine) outcome(st *ConversationState, reply ReplyKey) Outcome {
	return Outcome{
		Stage:                st.Stage,
		Reply:                reply,
		Emergency:            st.Intake.EmergencyFlag,
		AppointmentConfirmed: st.Intake.ConfirmedAt != nil,
	}
}

// askKey maps a stage to the reply that prompts the patient for it.
func askKey(stage Stage) ReplyKey {
	switch stage {
	case StageWelcome:
		return ReplyWelcome
	case StageConfirmIdentity:
		return ReplyConfirmIdentity
	case StageCollectSymptoms:
		return ReplyAskSymptoms
	case StageCollectHistory:
		return ReplyAskHistory
	case StageCollectName:
		return ReplyAskName
	case StageCollectEmail:
		return ReplyAskEmail
	case StageCollectTiming:
		return ReplyAskTiming
	case StageConfirmSummary:
		return ReplyConfirmSummary
	case StageConfirmAppointment:
		return ReplyConfirmAppointment
	case StageScheduled:
		return ReplyScheduled
	case StageCompleted:
		return ReplyCompleted
	case StageEmergencyEscalated:
		return ReplyEmergency
	}
	return ReplyFollowUp
}
