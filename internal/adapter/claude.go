package adapter

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ralph-loop/ralph/internal/models"
)

// Claude drives the claude CLI in stream-json print mode.
type Claude struct {
	path string
}

// NewClaude resolves the claude binary and returns its adapter.
func NewClaude(settings *models.Settings) *Claude {
	return &Claude{path: resolveBinary("claude", settings)}
}

func (c *Claude) Name() string { return "Claude Code" }
func (c *Claude) Type() models.CLIType { return models.CLIClaude }
func (c *Claude) Installed() bool { return c.path != "" }
func (c *Claude) Path() string { return c.path }
func (c *Claude) StderrIsOutput() bool { return false }

func (c *Claude) Version(ctx context.Context) (string, error) {
	return probeVersion(ctx, c.program())
}

func (c *Claude) program() string {
	if c.path != "" {
		return c.path
	}
	return "claude"
}

func claudeArgs(prompt string) []string {
	return []string{
		"--print",
		"--dangerously-skip-permissions",
		"--permission-mode", "bypassPermissions",
		"--verbose",
		prompt,
		"--output-format", "stream-json",
		"--include-partial-messages",
	}
}

func (c *Claude) BuildInvocation(prompt, dir string, _ Options) *Invocation {
	return &Invocation{
		Program: c.program(),
		Args:    claudeArgs(prompt),
		Dir:     dir,
	}
}

// BuildReadonlyInvocation matches BuildInvocation; claude has no read-only
// mode, callers rely on a prompt that forbids edits.
func (c *Claude) BuildReadonlyInvocation(prompt, dir string, opts Options) *Invocation {
	return c.BuildInvocation(prompt, dir, opts)
}

// DetectCompletion only accepts the signal inside assistant content of a
// parsed stream-json line, never inside tool output echoed back verbatim.
func (c *Claude) DetectCompletion(output, signal string) bool {
	for _, line := range strings.Split(output, "\n") {
		parsed := c.ParseLine(line)
		if parsed.Assistant && strings.Contains(parsed.Content, signal) {
			return true
		}
	}
	return false
}

func (c *Claude) ParseLine(line string) ParsedLine {
	var value map[string]interface{}
	if err := json.Unmarshal([]byte(line), &value); err != nil {
		// Non-JSON lines pass through as plain text
		return ParsedLine{Content: line, Type: LineText}
	}

	content := extractText(value)
	role, _ := value["role"].(string)
	assistant := role == "assistant"
	eventType, _ := value["type"].(string)
	if role == "" {
		if strings.Contains(eventType, "message") ||
			strings.Contains(eventType, "content") ||
			strings.Contains(eventType, "assistant") {
			assistant = true
		}
	}
	if strings.TrimSpace(content) == "" {
		// Keep the raw line visible unless it is a known chatter event
		if eventType != "ping" && eventType != "progress" {
			content = line
		}
	}

	return ParsedLine{Content: content, Type: LineJSON, Assistant: assistant}
}

func (c *Claude) FatalStderr(string) (string, bool) { return "", false }

// extractText pulls assistant text out of a decoded stream-json event,
// checking the shapes the CLI actually emits.
func extractText(value map[string]interface{}) string {
	if text, ok := value["text"].(string); ok {
		return text
	}
	if content, ok := value["content"]; ok {
		if text, ok := content.(string); ok {
			return text
		}
		if text := joinTextArray(content); text != "" {
			return text
		}
	}
	if delta, ok := value["delta"].(map[string]interface{}); ok {
		if text, ok := delta["text"].(string); ok {
			return text
		}
		if inner, ok := delta["content"]; ok {
			if text := joinTextArray(inner); text != "" {
				return text
			}
		}
	}
	if message, ok := value["message"].(map[string]interface{}); ok {
		if text, ok := message["text"].(string); ok {
			return text
		}
		if content, ok := message["content"]; ok {
			if text := joinTextArray(content); text != "" {
				return text
			}
		}
	}
	return ""
}

func joinTextArray(value interface{}) string {
	array, ok := value.([]interface{})
	if !ok {
		return ""
	}
	var parts []string
	for _, item := range array {
		if text, ok := item.(string); ok {
			if text != "" {
				parts = append(parts, text)
			}
			continue
		}
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		if text, ok := obj["text"].(string); ok && text != "" {
			parts = append(parts, text)
		} else if text, ok := obj["content"].(string); ok && text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "")
}
