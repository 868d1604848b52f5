package scheduling

import (
	"fmt"
	"time"

	"github.com/medikah/telehealth-intake/internal/notify"
)

// localVisitTime renders the appointment instant in the patient's timezone.
func localVisitTime(startUTC time.Time, timezone string) string {
	loc := time.UTC
	if timezone != "" {
		if l, err := time.LoadLocation(timezone); err == nil {
			loc = l
		}
	}
	return startUTC.In(loc).Format("Monday, January 2, 2006 at 3:04 PM MST")
}

func patientEmail(req Request, doctor, joinURL, calendarURL string) notify.Message {
	when := localVisitTime(req.StartUTC, req.Timezone)

	if req.Locale == "es" {
		plain := fmt.Sprintf(
			"Hola %s,\n\nSu consulta por video con %s está confirmada para %s.\n\n"+
				"Enlace de la consulta: %s\nAgregar al calendario: %s\n\n"+
				"Si no puede asistir, simplemente responda a este correo.\n\nEl equipo de Medikah",
			req.PatientName, doctor, when, joinURL, calendarURL)
		return notify.Message{
			To:        req.PatientEmail,
			ToName:    req.PatientName,
			Subject:   "Su consulta por video está confirmada",
			PlainText: plain,
			HTML: fmt.Sprintf(
				"<p>Hola %s,</p><p>Su consulta por video con %s está confirmada para <strong>%s</strong>.</p>"+
					"<p><a href=%q>Unirse a la consulta</a> · <a href=%q>Agregar al calendario</a></p>"+
					"<p>El equipo de Medikah</p>",
				req.PatientName, doctor, when, joinURL, calendarURL),
		}
	}

	plain := fmt.Sprintf(
		"Hi %s,\n\nYour video visit with %s is confirmed for %s.\n\n"+
			"Join link: %s\nAdd to calendar: %s\n\n"+
			"If you can't make it, just reply to this email.\n\nThe Medikah Care Team",
		req.PatientName, doctor, when, joinURL, calendarURL)
	return notify.Message{
		To:        req.PatientEmail,
		ToName:    req.PatientName,
		Subject:   "Your video visit is confirmed",
		PlainText: plain,
		HTML: fmt.Sprintf(
			"<p>Hi %s,</p><p>Your video visit with %s is confirmed for <strong>%s</strong>.</p>"+
				"<p><a href=%q>Join your visit</a> · <a href=%q>Add to calendar</a></p>"+
				"<p>The Medikah Care Team</p>",
			req.PatientName, doctor, when, joinURL, calendarURL),
	}
}

func doctorEmail(req Request, doctorAddr, doctor, joinURL string) notify.Message {
	when := localVisitTime(req.StartUTC, req.Timezone)
	reason := req.Reason
	if reason == "" {
		reason = "not provided"
	}

	plain := fmt.Sprintf(
		"New telehealth appointment.\n\nPatient: %s\nWhen: %s\nReason: %s\nRoom: %s\n",
		req.PatientName, when, reason, joinURL)
	return notify.Message{
		To:        doctorAddr,
		ToName:    doctor,
		Subject:   fmt.Sprintf("New appointment: %s, %s", req.PatientName, when),
		PlainText: plain,
		HTML: fmt.Sprintf(
			"<p>New telehealth appointment.</p><ul><li>Patient: %s</li><li>When: %s</li>"+
				"<li>Reason: %s</li><li><a href=%q>Open room</a></li></ul>",
			req.PatientName, when, reason, joinURL),
	}
}
