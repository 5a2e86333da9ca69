package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"unknown", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLogLevel(tt.input); got != tt.want {
				t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf)

	log.WithFields(map[string]interface{}{
		"ticker": "AAA",
		"count":  3,
	}).Info("scan completed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	if entry["ticker"] != "AAA" {
		t.Errorf("Expected ticker field AAA, got %v", entry["ticker"])
	}
	if entry["count"] != float64(3) {
		t.Errorf("Expected count field 3, got %v", entry["count"])
	}
	if entry["message"] != "scan completed" {
		t.Errorf("Expected message, got %v", entry["message"])
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf)

	log.WithError(errors.New("boom")).Error("request failed")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}

	if entry["error"] != "boom" {
		t.Errorf("Expected error field boom, got %v", entry["error"])
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf)

	child := log.WithField("ticker", "AAA")
	if child == log {
		t.Error("WithField() must return a new logger")
	}

	log.Info("parent message")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if _, ok := entry["ticker"]; ok {
		t.Error("parent logger must not carry the child's field")
	}
}
