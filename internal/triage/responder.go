package triage

import (
	"context"
	"strings"
	"time"

	"github.com/medikah/telehealth-intake/pkg/logging"
)

// DefaultLLMTimeout bounds one generation call.
const DefaultLLMTimeout = 12 * time.Second

// Responder turns an engine outcome into patient-facing text. With an LLM
// client it generates a contextual reply; without one, or on any generation
// failure, it falls back to the fixed per-stage template table.
type Responder struct {
	llm     LLMClient
	prompts PromptBuilder
	timeout time.Duration
	logger  *logging.Logger
}

// NewResponder builds a responder. llm may be nil, which pins every reply to
// the template table.
func NewResponder(llm LLMClient, prompts PromptBuilder, timeout time.Duration, logger *logging.Logger) *Responder {
	if timeout <= 0 {
		timeout = DefaultLLMTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Responder{llm: llm, prompts: prompts, timeout: timeout, logger: logger}
}

// Reply renders the response for an outcome. The second return reports
// whether the AI strategy produced the text; false means the fallback
// template was used. Emergency replies always come from the fixed table so
// the escalation wording cannot drift.
func (r *Responder) Reply(ctx context.Context, st *ConversationState, userMessage string, key ReplyKey) (string, bool) {
	if r.llm == nil || key == ReplyEmergency {
		return r.fallback(st, key), false
	}

	genCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	text, err := r.llm.Complete(genCtx, r.prompts.SystemPrompt(st), st.Intake.MessageHistory, userMessage)
	if err != nil {
		r.logger.Warn("triage: llm generation failed, using fallback",
			"session_id", st.SessionID, "stage", string(st.Stage), "error", err)
		return r.fallback(st, key), false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		r.logger.Warn("triage: llm returned empty reply, using fallback",
			"session_id", st.SessionID, "stage", string(st.Stage))
		return r.fallback(st, key), false
	}
	return text, true
}

// fallbackTemplate holds one canonical message per situation in both
// supported languages.
type fallbackTemplate struct {
	en string
	es string
}

var fallbackTemplates = map[ReplyKey]fallbackTemplate{
	ReplyWelcome: {
		en: "Hi, I'm the Medikah intake assistant. I'll ask a few questions to get you ready for a video visit with a doctor. What brings you in today?",
		es: "Hola, soy el asistente de admisión de Medikah. Le haré unas preguntas para preparar su consulta por video con un médico. ¿Qué le trae por aquí hoy?",
	},
	ReplyConfirmIdentity: {
		en: "I have your name and email on file from a previous visit. Can you confirm they are still correct? A simple yes or no works.",
		es: "Tengo su nombre y correo registrados de una visita anterior. ¿Me confirma que siguen siendo correctos? Con un sí o un no basta.",
	},
	ReplyAskSymptoms: {
		en: "Thanks. Could you describe your main symptom or concern in your own words?",
		es: "Gracias. ¿Podría describir su síntoma o molestia principal con sus propias palabras?",
	},
	ReplyAskHistory: {
		en: "I'm sorry you're dealing with that. When did it start, and has it been getting better or worse?",
		es: "Lamento que esté pasando por esto. ¿Cuándo comenzó y ha ido mejorando o empeorando?",
	},
	ReplyAskName: {
		en: "Could I have your full name for the appointment?",
		es: "¿Me da su nombre completo para la cita?",
	},
	ReplyAskEmail: {
		en: "What email address should we send your visit confirmation to?",
		es: "¿A qué correo electrónico le enviamos la confirmación de su consulta?",
	},
	ReplyInvalidEmail: {
		en: "That doesn't look like a valid email address. Could you type it again, like name@example.com?",
		es: "Ese correo no parece válido. ¿Podría escribirlo de nuevo, por ejemplo nombre@ejemplo.com?",
	},
	ReplyAskTiming: {
		en: "What day and time would work best for your video visit? You can say something like \"tomorrow at 3pm\".",
		es: "¿Qué día y hora le convienen para su consulta por video? Puede decir algo como \"mañana a las 3 de la tarde\".",
	},
	ReplyUnparseableTime: {
		en: "I couldn't work out a date and time from that. Could you try again, for example \"tomorrow at 10am\" or \"Friday at 2pm\"?",
		es: "No pude entender la fecha y hora. ¿Podría intentarlo de nuevo, por ejemplo \"mañana a las 10\" o \"el viernes a las 2\"?",
	},
	ReplyConfirmSummary: {
		en: "Here is what I have:\n%s\nIs everything correct? You can also tell me what to change, like the name, email, or time.",
		es: "Esto es lo que tengo:\n%s\n¿Está todo correcto? También puede decirme qué cambiar, como el nombre, el correo o la hora.",
	},
	ReplyAskWhatToChange: {
		en: "No problem. Tell me what you'd like to change: the name, the email, or the time.",
		es: "Sin problema. Dígame qué desea cambiar: el nombre, el correo o la hora.",
	},
	ReplyConfirmAppointment: {
		en: "Great. Shall I go ahead and book the appointment? Yes or no.",
		es: "Perfecto. ¿Procedo a reservar la cita? Sí o no.",
	},
	ReplyUnclearConfirm: {
		en: "Just to be sure before I book anything: should I schedule the appointment? A yes or no works.",
		es: "Solo para estar seguro antes de reservar: ¿agendo la cita? Con un sí o un no basta.",
	},
	ReplyScheduled: {
		en: "Your appointment is being booked. You'll receive a confirmation email with the video visit link shortly.",
		es: "Estamos reservando su cita. En breve recibirá un correo de confirmación con el enlace de la consulta por video.",
	},
	ReplyFollowUp: {
		en: "That's completely fine. Your details are saved, and you can come back anytime to finish booking. Is there anything else I can help with?",
		es: "No hay ningún problema. Sus datos quedan guardados y puede volver cuando quiera para completar la reserva. ¿Le puedo ayudar con algo más?",
	},
	ReplyCompleted: {
		en: "Thanks for completing your intake. Take care, and we'll see you at your visit.",
		es: "Gracias por completar su registro. Cuídese, y nos vemos en su consulta.",
	},
	ReplyEmergency: {
		en: "Your symptoms may need urgent attention. Please call your local emergency number or go to the nearest emergency room right now. This chat cannot provide emergency care.",
		es: "Sus síntomas podrían requerir atención urgente. Por favor llame al número de emergencias o acuda de inmediato a la sala de urgencias más cercana. Este chat no puede brindar atención de emergencia.",
	},
}

// fallback renders the canonical template for the key in the session's
// language, filling in collected details where the template calls for them.
func (r *Responder) fallback(st *ConversationState, key ReplyKey) string {
	tpl, ok := fallbackTemplates[key]
	if !ok {
		tpl = fallbackTemplates[ReplyFollowUp]
	}
	text := tpl.en
	if st.Intake.LocalePreference == "es" {
		text = tpl.es
	}

	if key == ReplyConfirmSummary {
		lines := st.Intake.SummaryLines()
		summary := "- (nothing collected yet)"
		if len(lines) > 0 {
			summary = "- " + strings.Join(lines, "\n- ")
		}
		text = strings.Replace(text, "%s", summary, 1)
	}
	return text
}
