package triage

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// defaultAppointmentHour is the local hour assumed when the patient names a
// day but no time of day ("tomorrow", "next week"). Heuristic carried over
// from the original flow, not a business rule.
const defaultAppointmentHour = 10

var (
	inDaysRE   = regexp.MustCompile(`(?i)\bin\s+(\d{1,3})\s+days?\b`)
	enDiasRE   = regexp.MustCompile(`(?i)\ben\s+(\d{1,3})\s+d[ií]as\b`)
	atClockRE  = regexp.MustCompile(`(?i)\b(?:at|a\s+las?)\s+(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	clock24RE  = regexp.MustCompile(`\b(\d{1,2}):(\d{2})\b`)
	meridiemRE = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)\b`)
	monthDayRE = regexp.MustCompile(`(?i)\b(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|jun(?:e)?|jul(?:y)?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\s+(\d{1,2})(?:st|nd|rd|th)?(?:,?\s*(\d{4}))?\b`)
	dayMonthRE = regexp.MustCompile(`(?i)\b(\d{1,2})\s+de\s+(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)(?:\s+de\s+(\d{4}))?\b`)
	numericRE  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{4}))?\b`)
)

var monthsEN = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var monthsES = map[string]time.Month{
	"enero": time.January, "febrero": time.February, "marzo": time.March,
	"abril": time.April, "mayo": time.May, "junio": time.June,
	"julio": time.July, "agosto": time.August, "septiembre": time.September,
	"octubre": time.October, "noviembre": time.November, "diciembre": time.December,
}

var weekdays = map[string]time.Weekday{
	"sunday": time.Sunday, "monday": time.Monday, "tuesday": time.Tuesday,
	"wednesday": time.Wednesday, "thursday": time.Thursday,
	"friday": time.Friday, "saturday": time.Saturday,
	"domingo": time.Sunday, "lunes": time.Monday, "martes": time.Tuesday,
	"miercoles": time.Wednesday, "miércoles": time.Wednesday,
	"jueves": time.Thursday, "viernes": time.Friday,
	"sabado": time.Saturday, "sábado": time.Saturday,
}

// layoutsWithZone carry their own offset; results convert straight to UTC.
var layoutsWithZone = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-07:00",
	"2006-01-02 15:04:05 -0700",
}

// naiveLayouts lack timezone info and are interpreted in the patient's
// stored location (ordered-layout parsing, same scheme as slot parsing in
// the booking integrations this grew out of).
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"01/02/2006 15:04",
}

// dateOnlyLayouts resolve to defaultAppointmentHour unless the text also
// names a time of day.
var dateOnlyLayouts = []string{
	"2006-01-02",
}

// ParsePreferredTime interprets a free-form date/time request.
//
// Resolution order: relative phrases ("tomorrow", "next week", "in 3 days"
// and Spanish equivalents) anchored at the patient's local now; then
// explicit layouts; then month-day and weekday forms. A time of day found
// anywhere in the text overrides the default hour. The result is always
// normalized to UTC. ok=false means the text is unparseable and the caller
// should re-prompt.
func ParsePreferredTime(raw string, now time.Time, loc *time.Location) (time.Time, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)

	if t, ok := parseRelative(text, local, loc); ok {
		return t.UTC(), true
	}

	for _, layout := range layoutsWithZone {
		if t, err := time.Parse(layout, text); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range dateOnlyLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return withClock(t, text, loc).UTC(), true
		}
	}

	if t, ok := parseMonthDay(text, local, loc); ok {
		return t.UTC(), true
	}
	if t, ok := parseWeekday(text, local, loc); ok {
		return t.UTC(), true
	}
	if t, ok := parseNumericDate(text, local, loc); ok {
		return t.UTC(), true
	}

	return time.Time{}, false
}

// parseRelative resolves the fixed relative-phrase table.
func parseRelative(text string, local time.Time, loc *time.Location) (time.Time, bool) {
	lowered := strings.ToLower(text)

	var days int
	matched := false
	switch {
	case strings.Contains(lowered, "day after tomorrow"), strings.Contains(lowered, "pasado mañana"), strings.Contains(lowered, "pasado manana"):
		days, matched = 2, true
	case strings.Contains(lowered, "tomorrow"), strings.Contains(lowered, "mañana"), strings.Contains(lowered, "manana"):
		days, matched = 1, true
	case strings.Contains(lowered, "today"), strings.Contains(lowered, "hoy"):
		days, matched = 0, true
	case strings.Contains(lowered, "next week"), strings.Contains(lowered, "próxima semana"), strings.Contains(lowered, "proxima semana"), strings.Contains(lowered, "semana que viene"):
		days, matched = 7, true
	}
	if !matched {
		if m := inDaysRE.FindStringSubmatch(lowered); m != nil {
			n, _ := strconv.Atoi(m[1])
			days, matched = n, true
		} else if m := enDiasRE.FindStringSubmatch(lowered); m != nil {
			n, _ := strconv.Atoi(m[1])
			days, matched = n, true
		}
	}
	if !matched {
		return time.Time{}, false
	}

	day := local.AddDate(0, 0, days)
	return withClock(time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc), text, loc), true
}

// withClock applies a time of day found in text to the given date, falling
// back to the default hour.
func withClock(day time.Time, text string, loc *time.Location) time.Time {
	hour, minute, ok := extractClock(text)
	if !ok {
		hour, minute = defaultAppointmentHour, 0
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc)
}

// extractClock pulls a time of day out of free text. Bare numbers without a
// colon, meridiem, or "at"/"a las" prefix are ignored so "in 2 days" does
// not read as 2:00.
func extractClock(text string) (hour, minute int, ok bool) {
	lowered := strings.ToLower(text)

	if m := atClockRE.FindStringSubmatch(lowered); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		hour = applyMeridiem(hour, m[3], lowered)
		return clamp(hour, minute)
	}
	if m := meridiemRE.FindStringSubmatch(lowered); m != nil {
		hour, _ = strconv.Atoi(m[1])
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		hour = applyMeridiem(hour, m[3], lowered)
		return clamp(hour, minute)
	}
	if m := clock24RE.FindStringSubmatch(lowered); m != nil {
		hour, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		return clamp(hour, minute)
	}
	return 0, 0, false
}

// applyMeridiem resolves am/pm markers, including the Spanish afternoon and
// evening phrasings ("a las 4 de la tarde").
func applyMeridiem(hour int, meridiem, lowered string) int {
	switch meridiem {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	default:
		if hour < 12 && (strings.Contains(lowered, "de la tarde") || strings.Contains(lowered, "de la noche")) {
			hour += 12
		}
	}
	return hour
}

func clamp(hour, minute int) (int, int, bool) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// parseMonthDay handles "February 5", "Feb 5 at 3pm", "5 de febrero".
func parseMonthDay(text string, local time.Time, loc *time.Location) (time.Time, bool) {
	lowered := strings.ToLower(text)

	var month time.Month
	var day, year int
	if m := monthDayRE.FindStringSubmatch(lowered); m != nil {
		key := m[1]
		if len(key) > 3 {
			key = key[:3]
		}
		month = monthsEN[key]
		day, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
	} else if m := dayMonthRE.FindStringSubmatch(lowered); m != nil {
		day, _ = strconv.Atoi(m[1])
		month = monthsES[m[2]]
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
		}
	} else {
		return time.Time{}, false
	}

	if month == 0 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	if year == 0 {
		year = local.Year()
		// A year-less date already behind us means next year.
		candidate := time.Date(year, month, day, 23, 59, 0, 0, loc)
		if candidate.Before(local) {
			year++
		}
	}
	return withClock(time.Date(year, month, day, 0, 0, 0, 0, loc), text, loc), true
}

// parseWeekday resolves "friday at 2pm" / "el viernes" to the next
// occurrence of that weekday.
func parseWeekday(text string, local time.Time, loc *time.Location) (time.Time, bool) {
	lowered := strings.ToLower(text)
	for name, wd := range weekdays {
		if !strings.Contains(lowered, name) {
			continue
		}
		ahead := (int(wd) - int(local.Weekday()) + 7) % 7
		if ahead == 0 {
			ahead = 7
		}
		day := local.AddDate(0, 0, ahead)
		return withClock(time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc), text, loc), true
	}
	return time.Time{}, false
}

// parseNumericDate handles M/D and M/D/YYYY forms.
func parseNumericDate(text string, local time.Time, loc *time.Location) (time.Time, bool) {
	m := numericRE.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	monthNum, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	if monthNum < 1 || monthNum > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	year := local.Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
	} else if candidate := time.Date(year, time.Month(monthNum), day, 23, 59, 0, 0, loc); candidate.Before(local) {
		year++
	}
	return withClock(time.Date(year, time.Month(monthNum), day, 0, 0, 0, 0, loc), text, loc), true
}
