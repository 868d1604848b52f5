package triage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectEmergency(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    bool
	}{
		{"chest pain", "I've had chest pain since this morning", true},
		{"uppercase", "SEVERE PAIN in my leg", true},
		{"embedded", "it feels like a heart attack maybe?", true},
		{"breathing", "my son says he can't breathe", true},
		{"suicidal", "I have been feeling suicidal", true},
		{"spanish chest pain", "tengo dolor de pecho desde ayer", true},
		{"spanish breathing", "no puedo respirar bien", true},
		{"spanish infarto", "creo que es un infarto", true},
		{"spanish bleeding", "estoy sangrando mucho", true},
		{"headache only", "I have a bad headache", false},
		{"scheduling talk", "can we meet tomorrow at 3pm?", false},
		{"empty", "", false},
		{"spanish benign", "me duele un poco la cabeza", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectEmergency(tt.message))
		})
	}
}
