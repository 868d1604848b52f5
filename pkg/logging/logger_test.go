package logging

import (
	"log/slog"
	"testing"
)

func TestNewLevels(t *testing.T) {
	tests := []struct {
		level   string
		enabled slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"DEBUG", slog.LevelDebug},
		{" warn ", slog.LevelWarn},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		logger := New(tt.level)
		if logger == nil {
			t.Fatalf("New(%q) returned nil", tt.level)
		}
		if !logger.Enabled(nil, tt.enabled) {
			t.Errorf("New(%q): expected level %v to be enabled", tt.level, tt.enabled)
		}
	}
}

func TestDefault(t *testing.T) {
	logger := Default()
	if logger == nil {
		t.Fatal("Default() returned nil")
	}
	if logger.Enabled(nil, slog.LevelDebug) {
		t.Error("default logger should not log at debug level")
	}
}

func TestWith(t *testing.T) {
	logger := Default().With("component", "test")
	if logger == nil {
		t.Fatal("With() returned nil")
	}
}
