package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDoxyLink(t *testing.T) {
	assert.Equal(t, "https://doxy.me/medikah/appt-1", DoxyLink("", "appt-1"))
	assert.Equal(t, "https://doxy.me/clinic/appt-1", DoxyLink("https://doxy.me/clinic/", "appt-1"))
	// Appointment ids are path-escaped.
	assert.Equal(t, "https://doxy.me/medikah/a%20b", DoxyLink("", "a b"))
}

func TestGoogleCalendarLink(t *testing.T) {
	start := time.Date(2026, time.February, 11, 15, 0, 0, 0, time.UTC)

	link := GoogleCalendarLink("Medikah video visit with Dr. Alvarez", "headache", start, 30*time.Minute)
	assert.Contains(t, link, "https://calendar.google.com/calendar/render?")
	assert.Contains(t, link, "action=TEMPLATE")
	assert.Contains(t, link, "dates=20260211T150000Z%2F20260211T153000Z")
	assert.Contains(t, link, "details=headache")

	// Zero duration falls back to a half hour.
	link = GoogleCalendarLink("visit", "", start, 0)
	assert.Contains(t, link, "20260211T153000Z")
	assert.NotContains(t, link, "details=")
}
