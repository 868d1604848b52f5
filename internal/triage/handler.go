package triage

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/medikah/telehealth-intake/pkg/logging"
)

// NotifyStatus reports how confirmation email dispatch went for a booking.
// Partial failure is distinct from total failure; neither rolls the booking
// back.
type NotifyStatus string

const (
	NotifySent    NotifyStatus = "sent"
	NotifyPartial NotifyStatus = "partial"
	NotifyFailed  NotifyStatus = "failed"
)

// BookingRequest is what the scheduling handoff needs from a confirmed
// intake.
type BookingRequest struct {
	SessionID       string
	PatientName     string
	PatientEmail    string
	StartUTC        time.Time
	Timezone        string
	Locale          string
	SymptomOverview string
}

// BookingResult is the handoff's answer. A non-nil error from Book means the
// appointment was not created; notification problems are reported through
// Notify instead.
type BookingResult struct {
	AppointmentID string
	DoctorName    string
	JoinURL       string
	CalendarURL   string
	Notify        NotifyStatus
}

// Scheduler books an appointment for a confirmed intake.
type Scheduler interface {
	Book(ctx context.Context, req BookingRequest) (*BookingResult, error)
}

// ActionLink is a labeled URL the client can render as a button.
type ActionLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

type startRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Locale    string `json:"locale,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
	Identity  *struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"identity,omitempty"`
}

type messageRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Locale    string `json:"locale,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

type turnResponse struct {
	SessionID            string       `json:"session_id"`
	Reply                string       `json:"reply"`
	Stage                Stage        `json:"stage"`
	Emergency            bool         `json:"emergency"`
	AppointmentConfirmed bool         `json:"appointment_confirmed"`
	AppointmentID        string       `json:"appointment_id,omitempty"`
	NotifyStatus         NotifyStatus `json:"notify_status,omitempty"`
	ActionLinks          []ActionLink `json:"action_links,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler exposes the intake conversation over HTTP.
type Handler struct {
	svc       *Service
	scheduler Scheduler
	logger    *logging.Logger
}

// NewHandler builds the handler. scheduler may be nil, in which case
// should-schedule turns report a failed booking.
func NewHandler(svc *Service, scheduler Scheduler, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, scheduler: scheduler, logger: logger}
}

// StartSession handles POST /triage/start.
func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if r.Body != nil {
		// An empty body is a valid "start fresh" request.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	in := TurnInput{LocaleHint: req.Locale, TimezoneHint: req.Timezone}
	if req.Identity != nil {
		in.Identity = &Identity{Name: req.Identity.Name, Email: req.Identity.Email}
	}

	res, err := h.svc.Start(r.Context(), req.SessionID, in)
	if err != nil {
		h.logger.Error("triage: start failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "could not start session"})
		return
	}
	writeJSON(w, http.StatusOK, turnResponse{
		SessionID: res.SessionID,
		Reply:     res.Reply,
		Stage:     res.Stage,
	})
}

// HandleMessage handles POST /triage/message: one conversation turn, plus the
// scheduling handoff when the engine signals should-schedule.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.Message == "" && req.SessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "message is required"})
		return
	}

	res, err := h.svc.Message(r.Context(), req.SessionID, TurnInput{
		Message:      req.Message,
		LocaleHint:   req.Locale,
		TimezoneHint: req.Timezone,
	})
	if err != nil {
		h.logger.Error("triage: turn failed", "session_id", req.SessionID, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "could not process message"})
		return
	}

	resp := turnResponse{
		SessionID:            res.SessionID,
		Reply:                res.Reply,
		Stage:                res.Stage,
		Emergency:            res.Emergency,
		AppointmentConfirmed: res.AppointmentConfirmed,
		AppointmentID:        res.State.Intake.AppointmentID,
	}

	if res.ShouldSchedule {
		h.schedule(r.Context(), res, &resp)
	}
	writeJSON(w, http.StatusOK, resp)
}

// schedule runs the booking handoff and folds its outcome into the response.
// A booking failure leaves the conversation usable: the stage stays
// scheduled-pending and the patient is told to expect follow-up.
func (h *Handler) schedule(ctx context.Context, res *TurnResult, resp *turnResponse) {
	intake := &res.State.Intake
	if h.scheduler == nil || intake.PreferredTimeUTC == nil {
		h.logger.Error("triage: booking unavailable",
			"session_id", res.SessionID, "scheduler_configured", h.scheduler != nil)
		resp.NotifyStatus = NotifyFailed
		return
	}

	booked, err := h.scheduler.Book(ctx, BookingRequest{
		SessionID:       res.SessionID,
		PatientName:     intake.PatientName,
		PatientEmail:    intake.PatientEmail,
		StartUTC:        *intake.PreferredTimeUTC,
		Timezone:        intake.Timezone,
		Locale:          intake.LocalePreference,
		SymptomOverview: intake.SymptomOverview,
	})
	if err != nil {
		// Appointment not created; nothing to confirm.
		h.logger.Error("triage: booking failed", "session_id", res.SessionID, "error", err)
		resp.NotifyStatus = NotifyFailed
		return
	}

	if err := h.svc.ConfirmAppointment(ctx, res.SessionID, booked.AppointmentID); err != nil {
		h.logger.Error("triage: recording booking on session failed",
			"session_id", res.SessionID, "appointment_id", booked.AppointmentID, "error", err)
	}

	resp.AppointmentConfirmed = true
	resp.AppointmentID = booked.AppointmentID
	resp.NotifyStatus = booked.Notify
	if booked.JoinURL != "" {
		resp.ActionLinks = append(resp.ActionLinks, ActionLink{Label: "Join visit", URL: booked.JoinURL})
	}
	if booked.CalendarURL != "" {
		resp.ActionLinks = append(resp.ActionLinks, ActionLink{Label: "Add to calendar", URL: booked.CalendarURL})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
