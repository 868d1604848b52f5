package scheduling

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medikah/telehealth-intake/internal/appointments"
	"github.com/medikah/telehealth-intake/internal/notify"
	"github.com/medikah/telehealth-intake/internal/triage"
)

type recordingSender struct {
	mu      sync.Mutex
	failFor map[string]bool
	sent    []notify.Message
}

func (s *recordingSender) Send(_ context.Context, msg notify.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFor[msg.To] {
		return errors.New("delivery refused")
	}
	s.sent = append(s.sent, msg)
	return nil
}

type failingStore struct{}

func (failingStore) Save(context.Context, string, string, time.Time) (*appointments.Record, error) {
	return nil, errors.New("connection refused")
}
func (failingStore) GetByID(context.Context, string) (*appointments.Record, error) {
	return nil, appointments.ErrNotFound
}

func newTestService(t *testing.T, sender notify.EmailSender, cfg Config) (*Service, *appointments.MemoryStore) {
	t.Helper()
	store, err := appointments.NewMemoryStore("test-key")
	require.NoError(t, err)
	svc := NewService(store, sender, cfg, nil)
	svc.pickDoctor = func(int) int { return 0 }
	return svc, store
}

func baseRequest() Request {
	return Request{
		SessionID:    "sess-1",
		PatientName:  "Maria Lopez",
		PatientEmail: "maria@example.com",
		StartUTC:     time.Date(2026, time.February, 11, 15, 0, 0, 0, time.UTC),
		Timezone:     "America/New_York",
		Reason:       "bad headache",
	}
}

func TestScheduleBooksAndNotifies(t *testing.T) {
	sender := &recordingSender{}
	svc, store := newTestService(t, sender, Config{
		DoctorPool:  []string{"Dr. Rivera", "Dr. Chen"},
		DoctorEmail: "oncall@medikah.example",
	})

	booking, err := svc.Schedule(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Equal(t, "Dr. Rivera", booking.DoctorName)
	assert.Contains(t, booking.JoinURL, booking.Record.ID)
	assert.True(t, booking.Notify.AllSent())

	// Both parties got an email; patient body carries local time and links.
	require.Len(t, sender.sent, 2)
	patient := sender.sent[0]
	if patient.To != "maria@example.com" {
		patient = sender.sent[1]
	}
	assert.Contains(t, patient.PlainText, "10:00 AM EST")
	assert.Contains(t, patient.PlainText, booking.JoinURL)

	// The record exists, with the contact hashed.
	rec, err := store.GetByID(context.Background(), booking.Record.ID)
	require.NoError(t, err)
	assert.NotContains(t, rec.ContactHash, "maria")
}

func TestScheduleSpanishPatientEmail(t *testing.T) {
	sender := &recordingSender{}
	svc, _ := newTestService(t, sender, Config{})

	req := baseRequest()
	req.Locale = "es"
	_, err := svc.Schedule(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "Su consulta por video está confirmada", sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].PlainText, "está confirmada")
}

func TestSchedulePersistenceFailureIsFatal(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(failingStore{}, sender, Config{}, nil)

	booking, err := svc.Schedule(context.Background(), baseRequest())
	assert.Error(t, err)
	assert.Nil(t, booking)
	// No emails go out for an appointment that was never created.
	assert.Empty(t, sender.sent)
}

func TestScheduleNotifyFailuresKeepBooking(t *testing.T) {
	t.Run("partial", func(t *testing.T) {
		sender := &recordingSender{failFor: map[string]bool{"oncall@medikah.example": true}}
		svc, store := newTestService(t, sender, Config{DoctorEmail: "oncall@medikah.example"})

		booking, err := svc.Schedule(context.Background(), baseRequest())
		assert.ErrorIs(t, err, ErrNotifyPartial)
		require.NotNil(t, booking)

		_, err = store.GetByID(context.Background(), booking.Record.ID)
		assert.NoError(t, err)
	})

	t.Run("total", func(t *testing.T) {
		sender := &recordingSender{failFor: map[string]bool{
			"maria@example.com":      true,
			"oncall@medikah.example": true,
		}}
		svc, store := newTestService(t, sender, Config{DoctorEmail: "oncall@medikah.example"})

		booking, err := svc.Schedule(context.Background(), baseRequest())
		assert.ErrorIs(t, err, ErrNotifyFailed)
		require.NotNil(t, booking)

		_, err = store.GetByID(context.Background(), booking.Record.ID)
		assert.NoError(t, err)
	})
}

func TestScheduleValidation(t *testing.T) {
	svc, _ := newTestService(t, &recordingSender{}, Config{})

	for name, mutate := range map[string]func(*Request){
		"missing name":  func(r *Request) { r.PatientName = "" },
		"missing email": func(r *Request) { r.PatientEmail = "" },
		"missing time":  func(r *Request) { r.StartUTC = time.Time{} },
	} {
		t.Run(name, func(t *testing.T) {
			req := baseRequest()
			mutate(&req)
			_, err := svc.Schedule(context.Background(), req)
			assert.Error(t, err)
		})
	}
}

func TestBookAdaptsNotifyStatus(t *testing.T) {
	sender := &recordingSender{failFor: map[string]bool{"oncall@medikah.example": true}}
	svc, _ := newTestService(t, sender, Config{DoctorEmail: "oncall@medikah.example"})

	res, err := svc.Book(context.Background(), triage.BookingRequest{
		SessionID:       "sess-1",
		PatientName:     "Maria Lopez",
		PatientEmail:    "maria@example.com",
		StartUTC:        time.Date(2026, time.February, 11, 15, 0, 0, 0, time.UTC),
		Timezone:        "America/New_York",
		SymptomOverview: "bad headache",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AppointmentID)
	assert.Equal(t, triage.NotifyPartial, res.Notify)
	assert.NotEmpty(t, res.JoinURL)
}

func TestBookFatalOnStoreFailure(t *testing.T) {
	svc := NewService(failingStore{}, &recordingSender{}, Config{}, nil)

	_, err := svc.Book(context.Background(), triage.BookingRequest{
		PatientName:  "Maria Lopez",
		PatientEmail: "maria@example.com",
		StartUTC:     time.Date(2026, time.February, 11, 15, 0, 0, 0, time.UTC),
	})
	assert.Error(t, err)
}
