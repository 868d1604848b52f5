package triage

import "strings"

// emergencyKeywords is the fixed bilingual set scanned on every inbound
// message. Biased toward false positives: a miss costs far more than an
// unnecessary escalation.
var emergencyKeywords = []string{
	// English
	"chest pain",
	"shortness of breath",
	"difficulty breathing",
	"trouble breathing",
	"can't breathe",
	"cannot breathe",
	"bleeding",
	"unconscious",
	"suicidal",
	"overdose",
	"stroke",
	"heart attack",
	"severe pain",
	"numbness",
	// Spanish
	"dolor de pecho",
	"dolor en el pecho",
	"dificultad para respirar",
	"no puedo respirar",
	"falta de aire",
	"sangrado",
	"sangrando",
	"inconsciente",
	"suicida",
	"sobredosis",
	"derrame cerebral",
	"ataque al corazon",
	"ataque al corazón",
	"infarto",
	"dolor severo",
	"dolor muy fuerte",
	"entumecimiento",
}

// DetectEmergency reports whether the message contains any emergency keyword.
// Case-insensitive substring scan; no side effects.
func DetectEmergency(text string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range emergencyKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
