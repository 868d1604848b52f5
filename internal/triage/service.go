package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medikah/telehealth-intake/internal/observability/metrics"
	"github.com/medikah/telehealth-intake/pkg/logging"
)

// TurnResult is the outbound contract for one processed turn.
type TurnResult struct {
	SessionID            string
	Reply                string
	Stage                Stage
	Emergency            bool
	AppointmentConfirmed bool

	// ShouldSchedule tells the caller to invoke the scheduling handoff.
	ShouldSchedule bool

	// State is a snapshot of the session after the transition, for the
	// scheduling handoff to read intake details from.
	State *ConversationState
}

// Service drives one intake turn end to end: engine transition inside the
// session lock, reply generation outside it, then a second locked pass to
// append the turn to the message history.
type Service struct {
	store        SessionStore
	engine       *Engine
	responder    *Responder
	locker       sessionLocker
	metrics      *metrics.TriageMetrics
	logger       *logging.Logger
	historyLimit int
}

func NewService(store SessionStore, engine *Engine, responder *Responder, m *metrics.TriageMetrics, logger *logging.Logger, historyLimit int) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if historyLimit <= 0 {
		historyLimit = DefaultMessageHistoryLimit
	}
	return &Service{
		store:        store,
		engine:       engine,
		responder:    responder,
		metrics:      m,
		logger:       logger,
		historyLimit: historyLimit,
	}
}

// Start opens a session and returns the greeting. Locale, timezone, and
// pre-authenticated identity hints are applied to the fresh state.
func (s *Service) Start(ctx context.Context, sessionID string, in TurnInput) (*TurnResult, error) {
	state, err := s.store.Create(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("triage: start session: %w", err)
	}

	unlock := s.locker.lock(state.SessionID)
	s.engine.applyHints(state, in, "")
	state.Touch()
	if err := s.store.Update(ctx, state); err != nil {
		unlock()
		return nil, fmt.Errorf("triage: persist session: %w", err)
	}
	snapshot := state.Clone()
	unlock()

	reply := s.generate(ctx, snapshot, "", ReplyWelcome)
	s.appendHistory(ctx, snapshot, "", reply)

	s.logger.Info("triage: session started",
		"session_id", snapshot.SessionID, "locale", snapshot.Intake.LocalePreference)

	return &TurnResult{
		SessionID: snapshot.SessionID,
		Reply:     reply,
		Stage:     snapshot.Stage,
		State:     snapshot,
	}, nil
}

// Message processes one inbound patient message.
func (s *Service) Message(ctx context.Context, sessionID string, in TurnInput) (*TurnResult, error) {
	if sessionID == "" {
		// Unknown caller; open a fresh session and process the message in it.
		created, err := s.store.Create(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("triage: create session: %w", err)
		}
		sessionID = created.SessionID
	}

	unlock := s.locker.lock(sessionID)
	state, err := s.store.GetOrCreate(ctx, sessionID)
	if err != nil {
		unlock()
		return nil, fmt.Errorf("triage: load session: %w", err)
	}

	prevStage := state.Stage
	out := s.engine.Advance(state, in)
	if err := s.store.Update(ctx, state); err != nil {
		unlock()
		return nil, fmt.Errorf("triage: persist session: %w", err)
	}
	snapshot := state.Clone()
	unlock()

	s.metrics.RecordTurn(string(out.Stage))
	if out.Stage == StageEmergencyEscalated && prevStage != StageEmergencyEscalated {
		s.metrics.RecordEmergency()
		s.logger.Warn("triage: emergency escalation", "session_id", sessionID)
	}

	reply := s.generate(ctx, snapshot, in.Message, out.Reply)
	s.appendHistory(ctx, snapshot, in.Message, reply)

	return &TurnResult{
		SessionID:            sessionID,
		Reply:                reply,
		Stage:                out.Stage,
		Emergency:            out.Emergency,
		AppointmentConfirmed: out.AppointmentConfirmed,
		ShouldSchedule:       out.ShouldSchedule,
		State:                snapshot,
	}, nil
}

// ConfirmAppointment records a completed booking on the session. Called by
// the scheduling handoff after the appointment record is persisted.
func (s *Service) ConfirmAppointment(ctx context.Context, sessionID, appointmentID string) error {
	unlock := s.locker.lock(sessionID)
	defer unlock()

	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("triage: confirm appointment: %w", err)
	}
	now := time.Now().UTC()
	state.Intake.AppointmentID = appointmentID
	state.Intake.ConfirmedAt = &now
	state.Stage = StageScheduled
	state.Touch()
	if err := s.store.Update(ctx, state); err != nil {
		return fmt.Errorf("triage: confirm appointment: %w", err)
	}

	s.metrics.RecordBooking()
	s.logger.Info("triage: appointment confirmed",
		"session_id", sessionID, "appointment_id", appointmentID)
	return nil
}

// MarkCompleted closes out a session once follow-up is done.
func (s *Service) MarkCompleted(ctx context.Context, sessionID string) error {
	unlock := s.locker.lock(sessionID)
	defer unlock()

	state, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("triage: mark completed: %w", err)
	}
	state.Stage = StageCompleted
	state.Touch()
	if err := s.store.Update(ctx, state); err != nil {
		return fmt.Errorf("triage: mark completed: %w", err)
	}
	return nil
}

// generate runs reply generation without holding the session lock.
func (s *Service) generate(ctx context.Context, snapshot *ConversationState, userMessage string, key ReplyKey) string {
	start := time.Now()
	reply, fromAI := s.responder.Reply(ctx, snapshot, userMessage, key)
	if s.responder.llm != nil {
		s.metrics.ObserveLLMLatency(time.Since(start).Seconds())
		if !fromAI {
			s.metrics.RecordLLMFallback()
		}
	}
	return reply
}

// appendHistory re-acquires the lock and appends the turn to the bounded
// message window. Failures are logged, not surfaced: the reply already
// exists and losing one history entry is recoverable.
func (s *Service) appendHistory(ctx context.Context, snapshot *ConversationState, userMessage, reply string) {
	unlock := s.locker.lock(snapshot.SessionID)
	defer unlock()

	state, err := s.store.Get(ctx, snapshot.SessionID)
	if err != nil {
		// Session expired between the two critical sections; keep the
		// snapshot's view so the reply still reaches the patient.
		state = snapshot
	}
	if msg := strings.TrimSpace(userMessage); msg != "" {
		state.Intake.AddMessage(RoleUser, msg, s.historyLimit)
	}
	state.Intake.AddMessage(RoleAssistant, reply, s.historyLimit)
	state.Touch()
	if err := s.store.Update(ctx, state); err != nil {
		s.logger.Error("triage: append history failed",
			"session_id", snapshot.SessionID, "error", err)
	}
	snapshot.Intake.MessageHistory = append([]ChatMessage(nil), state.Intake.MessageHistory...)
}
