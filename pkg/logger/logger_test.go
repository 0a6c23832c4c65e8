package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := globalLogger
	SetOutput(&buf)
	t.Cleanup(func() { globalLogger = previous })
	return &buf
}

func decodeEntries(t *testing.T, buf *bytes.Buffer) []LogEntry {
	t.Helper()
	var entries []LogEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed decoding log line %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	return entries
}

func TestLogLevels(t *testing.T) {
	buf := captureLogs(t)

	Info("competition_created", map[string]interface{}{"competition_id": "abc"})
	WarnWithUser("user-1", "access_denied", nil)
	Error("poster_cleanup_failed", errors.New("disk full"), map[string]interface{}{"poster": "/uploads/x.png"})

	entries := decodeEntries(t, buf)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	if entries[0].Level != LevelInfo || entries[0].Action != "competition_created" {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Level != LevelWarn || entries[1].UserID == nil || *entries[1].UserID != "user-1" {
		t.Errorf("unexpected second entry %+v", entries[1])
	}
	if entries[2].Level != LevelError || entries[2].Error != "disk full" {
		t.Errorf("unexpected third entry %+v", entries[2])
	}
	if entries[2].Caller == "" {
		t.Error("expected caller to be recorded")
	}
}

func TestNilLoggerIsSilent(t *testing.T) {
	previous := globalLogger
	globalLogger = nil
	t.Cleanup(func() { globalLogger = previous })

	Info("ignored", nil)
	Error("ignored", errors.New("x"), nil)
}

func TestGetRequestBodySummary(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		contains    string
		excludes    string
	}{
		{"empty body", "application/json", "", "empty", ""},
		{"redacts password", "application/json", `{"email":"a@unhas.ac.id","password":"hunter22"}`, "[REDACTED]", "hunter22"},
		{"multipart summarised", "multipart/form-data; boundary=xyz", "--xyz\r\n", "multipart", ""},
		{"non json", "text/plain", "hello", "binary", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			var summary string
			app.Post("/", func(c *fiber.Ctx) error {
				summary = GetRequestBodySummary(c)
				return c.SendStatus(fiber.StatusOK)
			})

			req := httptest.NewRequest("POST", "/", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			if _, err := app.Test(req, -1); err != nil {
				t.Fatalf("request failed: %v", err)
			}

			if !strings.Contains(summary, tt.contains) {
				t.Errorf("expected summary %q to contain %q", summary, tt.contains)
			}
			if tt.excludes != "" && strings.Contains(summary, tt.excludes) {
				t.Errorf("expected summary %q not to contain %q", summary, tt.excludes)
			}
		})
	}
}
