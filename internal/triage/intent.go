package triage

import "strings"

// Intent is the three-valued outcome of a yes/no classification. Unclear is a
// real outcome: the engine never advances a confirmation stage on it.
type Intent int

const (
	IntentUnclear Intent = iota
	IntentAffirmative
	IntentNegative
)

var affirmativePhrases = []string{
	"yes", "yep", "yeah", "affirmative", "sure", "ok", "okay", "please do",
	"sounds good", "correct", "that's right", "thats right", "looks good",
	// Spanish
	"si", "sí", "claro", "correcto", "de acuerdo", "está bien", "esta bien",
	"perfecto", "por favor",
}

var negativePhrases = []string{
	"no", "nope", "nah", "not now", "later", "don't", "dont",
	// Spanish
	"no quiero", "ahora no", "todavía no", "todavia no", "más tarde", "mas tarde",
}

// ClassifyIntent tests the message against the bilingual affirmative and
// negative phrase sets. Affirmative wins ties, so "yes, that time works"
// confirms even though it names a field.
func ClassifyIntent(text string) Intent {
	lowered := " " + strings.ToLower(strings.TrimSpace(text)) + " "
	for _, phrase := range affirmativePhrases {
		if containsPhrase(lowered, phrase) {
			return IntentAffirmative
		}
	}
	for _, phrase := range negativePhrases {
		if containsPhrase(lowered, phrase) {
			return IntentNegative
		}
	}
	return IntentUnclear
}

// containsPhrase matches a phrase on word boundaries so "no" does not fire
// inside "know" or "notes".
func containsPhrase(padded, phrase string) bool {
	idx := strings.Index(padded, phrase)
	for idx >= 0 {
		before := padded[idx-1]
		after := byte(' ')
		if idx+len(phrase) < len(padded) {
			after = padded[idx+len(phrase)]
		}
		if !isWordByte(before) && !isWordByte(after) {
			return true
		}
		next := strings.Index(padded[idx+1:], phrase)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// Correction identifies which collected field the patient wants to change
// during summary confirmation.
type Correction int

const (
	CorrectionNone Correction = iota
	CorrectionName
	CorrectionEmail
	CorrectionTiming
)

// DetectCorrection scans for bilingual field mentions. The engine checks it
// on non-affirmative summary replies so "no, my email is wrong" routes to
// the email fix rather than a bare decline.
func DetectCorrection(text string) Correction {
	lowered := strings.ToLower(text)
	switch {
	case strings.Contains(lowered, "name") || strings.Contains(lowered, "nombre"):
		return CorrectionName
	case strings.Contains(lowered, "email") || strings.Contains(lowered, "correo"):
		return CorrectionEmail
	case strings.Contains(lowered, "time") || strings.Contains(lowered, "date") ||
		strings.Contains(lowered, "hora") || strings.Contains(lowered, "fecha"):
		return CorrectionTiming
	}
	return CorrectionNone
}

// spanishMarkers are common Spanish words unlikely to appear in English
// intake messages. Used once per session to fix the locale.
var spanishMarkers = []string{
	"hola", "gracias", "dolor", "necesito", "cita", "tengo", "quiero",
	"buenos días", "buenos dias", "buenas tardes", "me duele", "ayuda",
	"mañana", "síntomas", "sintomas", "doctora", "médico", "medico",
}

// DetectLocale returns "es" when the message carries Spanish marker words,
// otherwise "en". Locale is sticky once stored; the engine does not
// re-detect per turn.
func DetectLocale(text string) string {
	lowered := strings.ToLower(text)
	for _, marker := range spanishMarkers {
		if strings.Contains(lowered, marker) {
			return "es"
		}
	}
	return "en"
}
