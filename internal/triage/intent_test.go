package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    Intent
	}{
		{"plain yes", "yes", IntentAffirmative},
		{"yes with punctuation", "Yes, that works!", IntentAffirmative},
		{"sounds good", "sounds good to me", IntentAffirmative},
		{"spanish yes", "sí, perfecto", IntentAffirmative},
		{"spanish claro", "claro que si", IntentAffirmative},
		{"plain no", "no", IntentNegative},
		{"not now", "not now, maybe later", IntentNegative},
		{"spanish negative", "ahora no, gracias", IntentNegative},
		{"unclear", "what does that mean?", IntentUnclear},
		{"no inside know", "I know the doctor", IntentUnclear},
		{"no inside notes", "see my notes", IntentUnclear},
		{"empty", "", IntentUnclear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyIntent(tt.message))
		})
	}
}

func TestDetectCorrection(t *testing.T) {
	tests := []struct {
		message string
		want    Correction
	}{
		{"actually my email is wrong", CorrectionEmail},
		{"el correo está mal", CorrectionEmail},
		{"use a different name", CorrectionName},
		{"mi nombre es otro", CorrectionName},
		{"change the time please", CorrectionTiming},
		{"la fecha no me sirve", CorrectionTiming},
		{"otra hora", CorrectionTiming},
		{"everything looks great", CorrectionNone},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCorrection(tt.message))
		})
	}
}

func TestDetectLocale(t *testing.T) {
	assert.Equal(t, "es", DetectLocale("Hola, necesito una cita"))
	assert.Equal(t, "es", DetectLocale("me duele la espalda"))
	assert.Equal(t, "en", DetectLocale("I have a bad headache"))
	assert.Equal(t, "en", DetectLocale(""))
}
