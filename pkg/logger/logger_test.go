package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestLogger_TextFormatSortsFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithConfig(Config{Level: INFO, Output: &buf})

	log.WithField("project", "demo").Info("content uploaded", "token", "abc", "file", "app release.apk")

	line := buf.String()
	if !strings.Contains(line, "[INFO] content uploaded") {
		t.Errorf("Expected level and message in %q", line)
	}
	if !strings.Contains(line, `| file="app release.apk" project=demo token=abc`) {
		t.Errorf("Expected sorted fields in %q", line)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithConfig(Config{Level: WARN, Output: &buf})

	log.Debug("hidden")
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("Expected nothing below WARN, got %q", buf.String())
	}

	log.Warn("shown")
	if !strings.Contains(buf.String(), "[WARN] shown") {
		t.Errorf("Expected warn line, got %q", buf.String())
	}
}

func TestLogger_ChildSharesLevel(t *testing.T) {
	var buf bytes.Buffer
	parent := NewWithConfig(Config{Level: INFO, Output: &buf})
	child := parent.WithField("component", "uploader")

	parent.SetLevel(ERROR)
	child.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("Expected child to follow parent level, got %q", buf.String())
	}
	if child.IsDebugEnabled() {
		t.Error("Expected debug to be disabled")
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithConfig(Config{Level: DEBUG, Output: &buf, Format: FormatJSON})

	log.Error("attach failed", "status", 422, "error", errors.New("boom"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Expected valid JSON, got %q: %v", buf.String(), err)
	}
	if entry["level"] != "ERROR" {
		t.Errorf("Expected level ERROR, got %v", entry["level"])
	}
	if entry["msg"] != "attach failed" {
		t.Errorf("Expected msg, got %v", entry["msg"])
	}
	if entry["error"] != "boom" {
		t.Errorf("Expected error text, got %v", entry["error"])
	}
	if entry["status"] != float64(422) {
		t.Errorf("Expected status 422, got %v", entry["status"])
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"debug", DEBUG, false},
		{"INFO", INFO, false},
		{"warning", WARN, false},
		{"Error", ERROR, false},
		{"verbose", INFO, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
