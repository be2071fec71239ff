package logger

import (
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		level string
	}{
		{"debug level", "debug"},
		{"info level", "info"},
		{"warn level", "warn"},
		{"error level", "error"},
		{"invalid level", "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := New(tt.level)
			if log == nil {
				t.Error("New() returned nil")
			}
		})
	}
}

func TestShouldLog(t *testing.T) {
	l := New("warn").(*implLogger)

	if l.shouldLog("debug") {
		t.Error("debug should be suppressed at warn level")
	}
	if l.shouldLog("info") {
		t.Error("info should be suppressed at warn level")
	}
	if !l.shouldLog("warn") {
		t.Error("warn should log at warn level")
	}
	if !l.shouldLog("error") {
		t.Error("error should log at warn level")
	}
}
