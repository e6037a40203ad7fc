package config

import (
	"strings"
	"testing"
	"time"

	"github.com/ralph-loop/ralph/internal/models"
)

func TestFormatLogLine(t *testing.T) {
	ts := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	tests := []struct {
		name     string
		line     models.LogLine
		expected string
	}{
		{
			name:     "stdout line",
			line:     models.LogLine{Iteration: 2, Timestamp: ts, Content: "applying patch"},
			expected: "[2][out][2026-03-14T09:26:53Z] applying patch",
		},
		{
			name:     "stderr line",
			line:     models.LogLine{Iteration: 7, Timestamp: ts, Content: "warning: deprecated flag", Stderr: true},
			expected: "[7][err][2026-03-14T09:26:53Z] warning: deprecated flag",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatLogLine(tt.line); got != tt.expected {
				t.Errorf("FormatLogLine = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWriteAndReadRunLog(t *testing.T) {
	t.Setenv("RALPH_HOME", t.TempDir())

	startedAt := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	lines := []models.LogLine{
		{Iteration: 1, Timestamp: startedAt.Add(time.Minute), Content: "first"},
		{Iteration: 1, Timestamp: startedAt.Add(2 * time.Minute), Content: "oops", Stderr: true},
		{Iteration: 2, Timestamp: startedAt.Add(3 * time.Minute), Content: "second"},
	}

	meta, err := WriteRunLog("p1", "claude", "done", 2, startedAt, lines)
	if err != nil {
		t.Fatalf("WriteRunLog: %v", err)
	}
	if meta.LogID != "claude-2026-03-14T09-00-00" {
		t.Errorf("logID = %q", meta.LogID)
	}

	loaded, body, err := ReadRunLog("p1", meta.LogID)
	if err != nil {
		t.Fatalf("ReadRunLog: %v", err)
	}
	if loaded.ProjectID != "p1" || loaded.CLI != "claude" || loaded.Status != "done" || loaded.Iterations != 2 {
		t.Errorf("meta = %+v", loaded)
	}
	if loaded.StartedAt != "2026-03-14T09:00:00Z" {
		t.Errorf("startedAt = %q", loaded.StartedAt)
	}

	for _, want := range []string{
		"[1][out][2026-03-14T09:01:00Z] first",
		"[1][err][2026-03-14T09:02:00Z] oops",
		"[2][out][2026-03-14T09:03:00Z] second",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestListRunLogsNewestFirst(t *testing.T) {
	t.Setenv("RALPH_HOME", t.TempDir())

	older := time.Date(2026, 3, 14, 8, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	if _, err := WriteRunLog("p1", "claude", "failed", 1, older, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := WriteRunLog("p1", "codex", "done", 3, newer, nil); err != nil {
		t.Fatal(err)
	}

	logs, err := ListRunLogs("p1")
	if err != nil {
		t.Fatalf("ListRunLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("got %d logs, want 2", len(logs))
	}
	if logs[0].CLI != "codex" || logs[1].CLI != "claude" {
		t.Errorf("order = [%s, %s], want newest first", logs[0].CLI, logs[1].CLI)
	}
}

func TestListRunLogsEmptyProject(t *testing.T) {
	t.Setenv("RALPH_HOME", t.TempDir())

	logs, err := ListRunLogs("nobody")
	if err != nil {
		t.Fatalf("ListRunLogs: %v", err)
	}
	if logs != nil {
		t.Errorf("logs = %v, want nil", logs)
	}
}

func TestReadRunLogMissing(t *testing.T) {
	t.Setenv("RALPH_HOME", t.TempDir())

	if _, _, err := ReadRunLog("p1", "claude-2026-01-01T00-00-00"); err == nil {
		t.Error("expected error for missing log")
	}
}
