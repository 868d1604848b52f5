package scheduling

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/medikah/telehealth-intake/internal/appointments"
	"github.com/medikah/telehealth-intake/internal/notify"
	"github.com/medikah/telehealth-intake/internal/triage"
	"github.com/medikah/telehealth-intake/pkg/logging"
)

// Booking exists whenever these are returned; the appointment is not rolled
// back on notification failure.
var (
	ErrNotifyPartial = errors.New("scheduling: some notifications failed")
	ErrNotifyFailed  = errors.New("scheduling: all notifications failed")
)

// Config tunes the handoff.
type Config struct {
	DoxyBaseURL         string
	DoctorPool          []string
	OnCallDoctorName    string
	DoctorEmail         string
	AppointmentDuration time.Duration
	NotifyTimeout       time.Duration
}

// Request is a direct scheduling request.
type Request struct {
	SessionID    string
	PatientName  string
	PatientEmail string
	StartUTC     time.Time
	Timezone     string
	Locale       string
	Reason       string
}

// Booking is a persisted appointment plus everything the patient needs to
// show up.
type Booking struct {
	Record      *appointments.Record
	DoctorName  string
	JoinURL     string
	CalendarURL string
	Notify      notify.BatchOutcome
}

// Service books appointments: persist, assign a doctor, notify both parties.
type Service struct {
	store  appointments.Store
	sender notify.EmailSender
	cfg    Config
	logger *logging.Logger

	// pickDoctor selects an index into the pool; injectable for tests.
	pickDoctor func(n int) int
}

func NewService(store appointments.Store, sender notify.EmailSender, cfg Config, logger *logging.Logger) *Service {
	if cfg.OnCallDoctorName == "" {
		cfg.OnCallDoctorName = "Dr. Alvarez"
	}
	if cfg.AppointmentDuration <= 0 {
		cfg.AppointmentDuration = 30 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		store:      store,
		sender:     sender,
		cfg:        cfg,
		logger:     logger,
		pickDoctor: rand.Intn,
	}
}

func (s *Service) assignDoctor() string {
	if len(s.cfg.DoctorPool) == 0 {
		return s.cfg.OnCallDoctorName
	}
	return s.cfg.DoctorPool[s.pickDoctor(len(s.cfg.DoctorPool))]
}

// Schedule persists the appointment and dispatches both confirmation emails
// concurrently. A persistence failure is fatal and returns a nil Booking.
// Notification failures return the Booking together with ErrNotifyPartial or
// ErrNotifyFailed.
func (s *Service) Schedule(ctx context.Context, req Request) (*Booking, error) {
	if req.PatientName == "" {
		return nil, fmt.Errorf("scheduling: patient name is required")
	}
	if req.PatientEmail == "" {
		return nil, fmt.Errorf("scheduling: patient email is required")
	}
	if req.StartUTC.IsZero() {
		return nil, fmt.Errorf("scheduling: appointment time is required")
	}

	rec, err := s.store.Save(ctx, req.PatientName, req.PatientEmail, req.StartUTC)
	if err != nil {
		return nil, fmt.Errorf("scheduling: persist appointment: %w", err)
	}

	doctor := s.assignDoctor()
	joinURL := DoxyLink(s.cfg.DoxyBaseURL, rec.ID)
	calendarURL := GoogleCalendarLink(
		"Medikah video visit with "+doctor, req.Reason, req.StartUTC, s.cfg.AppointmentDuration)

	booking := &Booking{
		Record:      rec,
		DoctorName:  doctor,
		JoinURL:     joinURL,
		CalendarURL: calendarURL,
	}

	messages := []notify.Message{patientEmail(req, doctor, joinURL, calendarURL)}
	if s.cfg.DoctorEmail != "" {
		messages = append(messages, doctorEmail(req, s.cfg.DoctorEmail, doctor, joinURL))
	}
	booking.Notify = notify.SendBatch(ctx, s.sender, s.cfg.NotifyTimeout, messages)

	s.logger.Info("scheduling: appointment booked",
		"appointment_id", rec.ID, "doctor", doctor, "session_id", req.SessionID)

	switch {
	case booking.Notify.AllFailed():
		return booking, ErrNotifyFailed
	case booking.Notify.Partial():
		return booking, ErrNotifyPartial
	}
	return booking, nil
}

// Book adapts Schedule to the triage handoff contract: notification problems
// become a status on the result instead of an error, since the appointment
// already exists.
func (s *Service) Book(ctx context.Context, req triage.BookingRequest) (*triage.BookingResult, error) {
	booking, err := s.Schedule(ctx, Request{
		SessionID:    req.SessionID,
		PatientName:  req.PatientName,
		PatientEmail: req.PatientEmail,
		StartUTC:     req.StartUTC,
		Timezone:     req.Timezone,
		Locale:       req.Locale,
		Reason:       req.SymptomOverview,
	})

	status := triage.NotifySent
	switch {
	case errors.Is(err, ErrNotifyFailed):
		status = triage.NotifyFailed
	case errors.Is(err, ErrNotifyPartial):
		status = triage.NotifyPartial
	case err != nil:
		return nil, err
	}

	return &triage.BookingResult{
		AppointmentID: booking.Record.ID,
		DoctorName:    booking.DoctorName,
		JoinURL:       booking.JoinURL,
		CalendarURL:   booking.CalendarURL,
		Notify:        status,
	}, nil
}
