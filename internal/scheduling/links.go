package scheduling

import (
	"net/url"
	"strings"
	"time"
)

// DefaultDoxyBaseURL is the clinic's doxy.me room base.
const DefaultDoxyBaseURL = "https://doxy.me/medikah"

// DoxyLink builds the video-visit room URL for an appointment.
func DoxyLink(baseURL, appointmentID string) string {
	if baseURL == "" {
		baseURL = DefaultDoxyBaseURL
	}
	return strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(appointmentID)
}

// GoogleCalendarLink builds a prefilled "add to calendar" URL.
func GoogleCalendarLink(title, details string, start time.Time, duration time.Duration) string {
	if duration <= 0 {
		duration = 30 * time.Minute
	}
	const layout = "20060102T150405Z"
	startUTC := start.UTC()

	v := url.Values{}
	v.Set("action", "TEMPLATE")
	v.Set("text", title)
	if details != "" {
		v.Set("details", details)
	}
	v.Set("dates", startUTC.Format(layout)+"/"+startUTC.Add(duration).Format(layout))
	return "https://calendar.google.com/calendar/render?" + v.Encode()
}
