package scheduling

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/medikah/telehealth-intake/internal/triage"
	"github.com/medikah/telehealth-intake/pkg/logging"
)

type scheduleRequest struct {
	PatientName  string `json:"patient_name"`
	PatientEmail string `json:"patient_email"`
	StartTime    string `json:"start_time"`
	Timezone     string `json:"timezone,omitempty"`
	Locale       string `json:"locale,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

type scheduleResponse struct {
	AppointmentID string `json:"appointment_id"`
	DoctorName    string `json:"doctor_name"`
	JoinURL       string `json:"join_url"`
	CalendarURL   string `json:"calendar_url"`
	NotifyStatus  string `json:"notify_status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler exposes direct appointment creation, bypassing the conversation.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Schedule handles POST /schedule.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if len(req.PatientName) < 2 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "patient_name is required"})
		return
	}
	email, ok := triage.ValidateEmail(req.PatientEmail)
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "patient_email is invalid"})
		return
	}
	// RFC3339 carries the offset, so the instant is unambiguous.
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "start_time must be RFC3339 with timezone"})
		return
	}

	booking, err := h.svc.Schedule(r.Context(), Request{
		PatientName:  triage.NormalizeName(req.PatientName),
		PatientEmail: email,
		StartUTC:     start.UTC(),
		Timezone:     req.Timezone,
		Locale:       req.Locale,
		Reason:       req.Reason,
	})

	notifyStatus := "sent"
	switch {
	case errors.Is(err, ErrNotifyFailed):
		notifyStatus = "failed"
	case errors.Is(err, ErrNotifyPartial):
		notifyStatus = "partial"
	case err != nil:
		h.logger.Error("scheduling: direct booking failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "could not book appointment"})
		return
	}

	writeJSON(w, http.StatusOK, scheduleResponse{
		AppointmentID: booking.Record.ID,
		DoctorName:    booking.DoctorName,
		JoinURL:       booking.JoinURL,
		CalendarURL:   booking.CalendarURL,
		NotifyStatus:  notifyStatus,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
