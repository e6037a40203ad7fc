package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ralph-loop/ralph/internal/models"
)

// FormatLogLine renders one agent output line for the run-log body.
func FormatLogLine(line models.LogLine) string {
	origin := "out"
	if line.Stderr {
		origin = "err"
	}
	return fmt.Sprintf("[%d][%s][%s] %s", line.Iteration, origin, line.Timestamp.UTC().Format(time.RFC3339), line.Content)
}

// WriteRunLog writes a run log to disk with YAML header + line content.
func WriteRunLog(projectID, cli, status string, iterations int, startedAt time.Time, lines []models.LogLine) (*models.RunLogMeta, error) {
	if err := EnsureGlobalLogsDir(); err != nil {
		return nil, fmt.Errorf("failed to ensure logs dir: %w", err)
	}

	logsDir, err := GlobalLogsDir()
	if err != nil {
		return nil, err
	}

	projectLogsDir := filepath.Join(logsDir, projectID)
	if err := os.MkdirAll(projectLogsDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create project logs dir: %w", err)
	}

	endedAt := time.Now().UTC()
	logID := fmt.Sprintf("%s-%s", cli, startedAt.UTC().Format("2006-01-02T15-04-05"))

	meta := &models.RunLogMeta{
		LogID:      logID,
		ProjectID:  projectID,
		CLI:        cli,
		StartedAt:  startedAt.UTC().Format(time.RFC3339),
		EndedAt:    endedAt.Format(time.RFC3339),
		Status:     status,
		Iterations: iterations,
	}

	filePath := filepath.Join(projectLogsDir, logID+".log")
	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "project_id: %s\n", projectID)
	fmt.Fprintf(w, "cli: %s\n", cli)
	fmt.Fprintf(w, "started_at: %s\n", meta.StartedAt)
	fmt.Fprintf(w, "ended_at: %s\n", meta.EndedAt)
	fmt.Fprintf(w, "status: %s\n", status)
	fmt.Fprintf(w, "iterations: %d\n", iterations)
	fmt.Fprintln(w, "---")

	for _, line := range lines {
		fmt.Fprintln(w, FormatLogLine(line))
	}

	return meta, w.Flush()
}

// ListRunLogs reads all log files for a project and returns their metadata
// (newest first).
func ListRunLogs(projectID string) ([]*models.RunLogMeta, error) {
	logsDir, err := GlobalLogsDir()
	if err != nil {
		return nil, err
	}

	projectLogsDir := filepath.Join(logsDir, projectID)
	dirEntries, err := os.ReadDir(projectLogsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var logs []*models.RunLogMeta
	for _, e := range dirEntries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".log") {
			continue
		}

		meta, err := parseRunLogHeader(filepath.Join(projectLogsDir, e.Name()))
		if err != nil {
			continue
		}
		logs = append(logs, meta)
	}

	sort.Slice(logs, func(i, j int) bool {
		return logs[i].StartedAt > logs[j].StartedAt
	})

	return logs, nil
}

// ReadRunLog reads a specific log file and returns metadata + content.
func ReadRunLog(projectID, logID string) (*models.RunLogMeta, string, error) {
	logsDir, err := GlobalLogsDir()
	if err != nil {
		return nil, "", err
	}

	filePath := filepath.Join(logsDir, projectID, logID+".log")
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, "", fmt.Errorf("log not found: %w", err)
	}

	meta, body := parseRunLogContent(string(data))
	if meta == nil {
		return nil, "", fmt.Errorf("invalid log format")
	}

	return meta, body, nil
}

func parseRunLogHeader(path string) (*models.RunLogMeta, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	meta := &models.RunLogMeta{}
	inHeader := false

	for scanner.Scan() {
		line := scanner.Text()
		if line == "---" {
			if !inHeader {
				inHeader = true
				continue
			}
			break
		}
		if inHeader {
			parseRunLogHeaderLine(meta, line)
		}
	}

	if meta.LogID == "" {
		meta.LogID = strings.TrimSuffix(filepath.Base(path), ".log")
	}

	return meta, nil
}

func parseRunLogContent(content string) (*models.RunLogMeta, string) {
	lines := strings.Split(content, "\n")
	meta := &models.RunLogMeta{}
	headerEnd := -1
	inHeader := false

	for i, line := range lines {
		if line == "---" {
			if !inHeader {
				inHeader = true
				continue
			}
			headerEnd = i
			break
		}
		if inHeader {
			parseRunLogHeaderLine(meta, line)
		}
	}

	if headerEnd < 0 {
		return nil, ""
	}

	body := strings.Join(lines[headerEnd+1:], "\n")
	return meta, body
}

func parseRunLogHeaderLine(meta *models.RunLogMeta, line string) {
	parts := strings.SplitN(line, ": ", 2)
	if len(parts) != 2 {
		return
	}
	key := strings.TrimSpace(parts[0])
	val := strings.TrimSpace(parts[1])

	switch key {
	case "project_id":
		meta.ProjectID = val
	case "cli":
		meta.CLI = val
	case "started_at":
		meta.StartedAt = val
	case "ended_at":
		meta.EndedAt = val
	case "status":
		meta.Status = val
	case "iterations":
		fmt.Sscanf(val, "%d", &meta.Iterations)
	}
}
