package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"
)

func TestTypePredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		provider  bool
		malformed bool
	}{
		{"provider", NewProviderError(ErrCodeProviderEmpty, "empty", nil), true, false},
		{"wrapped provider", fmt.Errorf("call: %w", NewProviderError(ErrCodeProviderNetwork, "net", nil)), true, false},
		{"malformed", NewMalformedResponseError("bad json", "{", nil), false, true},
		{"plain", fmt.Errorf("boom"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsProviderError(tt.err); got != tt.provider {
				t.Errorf("Expected IsProviderError %v, got %v", tt.provider, got)
			}
			if got := IsMalformedResponse(tt.err); got != tt.malformed {
				t.Errorf("Expected IsMalformedResponse %v, got %v", tt.malformed, got)
			}
		})
	}
}

func TestMalformedResponseCarriesCandidate(t *testing.T) {
	err := NewMalformedResponseError("parse failed", `{"a":`, nil)
	if err.Context["candidate"] != `{"a":` {
		t.Errorf("Expected candidate in context, got %v", err.Context["candidate"])
	}
	if err.Code != ErrCodeMalformedJSON {
		t.Errorf("Expected code %s, got %s", ErrCodeMalformedJSON, err.Code)
	}
}

func TestLogErrorExpandsAppError(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, slog.LevelDebug)

	logger.LogError(NewProviderError(ErrCodeProviderAuth, "denied", nil).WithContext("task", "critique"), "fallback used")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("Expected JSON log line, got %q", buf.String())
	}
	if rec["error_type"] != string(ErrorTypeProvider) {
		t.Errorf("Expected error_type provider, got %v", rec["error_type"])
	}
	if rec["task"] != "critique" {
		t.Errorf("Expected task context, got %v", rec["task"])
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("verbose"); err == nil || !strings.Contains(err.Error(), "invalid log level") {
		t.Errorf("Expected invalid log level error, got %v", err)
	}
	if _, err := New("warn"); err != nil {
		t.Errorf("Expected no error for warn, got %v", err)
	}
}
