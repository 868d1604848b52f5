package triage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePreferredTime(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Tuesday Feb 10 2026, 09:00 in New York (EST, UTC-5).
	now := time.Date(2026, time.February, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want time.Time
	}{
		{"tomorrow with pm clock", "tomorrow at 3pm", time.Date(2026, time.February, 11, 20, 0, 0, 0, time.UTC)},
		{"tomorrow with am clock", "Tomorrow at 10am works", time.Date(2026, time.February, 11, 15, 0, 0, 0, time.UTC)},
		{"tomorrow default hour", "tomorrow", time.Date(2026, time.February, 11, 15, 0, 0, 0, time.UTC)},
		{"spanish tomorrow afternoon", "mañana a las 4 de la tarde", time.Date(2026, time.February, 11, 21, 0, 0, 0, time.UTC)},
		{"day after tomorrow", "pasado mañana", time.Date(2026, time.February, 12, 15, 0, 0, 0, time.UTC)},
		{"in n days", "in 3 days please", time.Date(2026, time.February, 13, 15, 0, 0, 0, time.UTC)},
		{"next week", "next week", time.Date(2026, time.February, 17, 15, 0, 0, 0, time.UTC)},
		{"today with 24h clock", "hoy a las 17:00", time.Date(2026, time.February, 10, 22, 0, 0, 0, time.UTC)},
		{"weekday with clock", "friday at 2pm", time.Date(2026, time.February, 13, 19, 0, 0, 0, time.UTC)},
		{"spanish weekday next occurrence", "el martes", time.Date(2026, time.February, 17, 15, 0, 0, 0, time.UTC)},
		{"month day with clock", "March 5 at 9am", time.Date(2026, time.March, 5, 14, 0, 0, 0, time.UTC)},
		{"spanish day month", "5 de marzo a las 4 de la tarde", time.Date(2026, time.March, 5, 21, 0, 0, 0, time.UTC)},
		{"naive layout", "2026-03-04 14:30", time.Date(2026, time.March, 4, 19, 30, 0, 0, time.UTC)},
		{"date only layout", "2026-12-20", time.Date(2026, time.December, 20, 15, 0, 0, 0, time.UTC)},
		{"rfc3339 keeps own offset", "2026-03-04T14:30:00-08:00", time.Date(2026, time.March, 4, 22, 30, 0, 0, time.UTC)},
		{"numeric date rolls to next year", "1/15", time.Date(2027, time.January, 15, 15, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePreferredTime(tt.raw, now, loc)
			require.True(t, ok, "raw=%q", tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParsePreferredTimeRejectsNoise(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, time.February, 10, 14, 0, 0, 0, time.UTC)

	for _, raw := range []string{"asdf", "", "   ", "maybe sometime", "whenever the doctor is free"} {
		_, ok := ParsePreferredTime(raw, now, loc)
		assert.False(t, ok, "raw=%q", raw)
	}
}

func TestParsePreferredTimeNilLocationDefaultsUTC(t *testing.T) {
	now := time.Date(2026, time.February, 10, 14, 0, 0, 0, time.UTC)

	got, ok := ParsePreferredTime("tomorrow at 3pm", now, nil)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.February, 11, 15, 0, 0, 0, time.UTC), got)
}
