package adapter

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/ralph-loop/ralph/internal/models"
)

// Opencode drives the opencode CLI in JSON run mode.
type Opencode struct {
	path string
}

// NewOpencode resolves the opencode binary and returns its adapter.
func NewOpencode(settings *models.Settings) *Opencode {
	return &Opencode{path: resolveBinary("opencode", settings)}
}

func (o *Opencode) Name() string { return "OpenCode" }
func (o *Opencode) Type() models.CLIType { return models.CLIOpencode }
func (o *Opencode) Installed() bool { return o.path != "" }
func (o *Opencode) Path() string { return o.path }
func (o *Opencode) StderrIsOutput() bool { return false }

func (o *Opencode) Version(ctx context.Context) (string, error) {
	return probeVersion(ctx, o.program())
}

func (o *Opencode) program() string {
	if o.path != "" {
		return o.path
	}
	return "opencode"
}

func opencodeArgs(prompt string, readonly bool) []string {
	args := []string{"run", "--format", "json"}
	if readonly {
		args = append(args, "--agent", "plan")
	}
	return append(args, prompt)
}

func (o *Opencode) BuildInvocation(prompt, dir string, _ Options) *Invocation {
	return &Invocation{
		Program: o.program(),
		Args:    opencodeArgs(prompt, false),
		Dir:     dir,
		Env:     fullAccessEnv(),
	}
}

// BuildReadonlyInvocation runs the plan agent, which cannot edit files.
func (o *Opencode) BuildReadonlyInvocation(prompt, dir string, _ Options) *Invocation {
	return &Invocation{
		Program: o.program(),
		Args:    opencodeArgs(prompt, true),
		Dir:     dir,
		Env:     fullAccessEnv(),
	}
}

// DetectCompletion matches the raw text: the signal appears inside JSON
// event payloads as well as plain output.
func (o *Opencode) DetectCompletion(output, signal string) bool {
	return strings.Contains(output, signal)
}

func (o *Opencode) ParseLine(line string) ParsedLine {
	var value map[string]interface{}
	if err := json.Unmarshal([]byte(line), &value); err != nil {
		return ParsedLine{Content: line, Type: LineText, Assistant: true}
	}

	eventType, _ := value["type"].(string)
	switch eventType {
	case "text":
		return ParsedLine{Content: opencodeText(value), Type: LineJSON, Assistant: true}
	case "error":
		content := opencodeText(value)
		if content == "" {
			content = line
		}
		return ParsedLine{Content: content, Type: LineError}
	}

	content := opencodeText(value)
	if content == "" {
		content = line
	}
	return ParsedLine{Content: content, Type: LineJSON}
}

func (o *Opencode) FatalStderr(string) (string, bool) { return "", false }

// opencodeText pulls the text payload out of a run event, checking the
// shapes the CLI emits across event types.
func opencodeText(value map[string]interface{}) string {
	if part, ok := value["part"].(map[string]interface{}); ok {
		if text, ok := part["text"].(string); ok {
			return text
		}
	}
	if text, ok := value["text"].(string); ok {
		return text
	}
	if errObj, ok := value["error"].(map[string]interface{}); ok {
		if text, ok := errObj["message"].(string); ok {
			return text
		}
	}
	if text, ok := value["message"].(string); ok {
		return text
	}
	if data, ok := value["data"].(map[string]interface{}); ok {
		if text, ok := data["message"].(string); ok {
			return text
		}
	}
	return ""
}

// fullAccessEnv grants opencode agents full tool permissions for the run
// unless the caller already configured them.
func fullAccessEnv() []string {
	if os.Getenv("OPENCODE_CONFIG_CONTENT") != "" {
		return nil
	}
	return []string{"OPENCODE_CONFIG_CONTENT=" + fullAccessConfig()}
}

func fullAccessConfig() string {
	permission := map[string]string{
		"edit":               "allow",
		"bash":               "allow",
		"webfetch":           "allow",
		"doom_loop":          "allow",
		"external_directory": "allow",
	}
	agents := map[string]interface{}{}
	for _, name := range []string{"general", "build", "plan", "explore"} {
		agents[name] = map[string]interface{}{"permission": permission}
	}
	modes := map[string]interface{}{}
	for _, name := range []string{"build", "plan"} {
		modes[name] = map[string]interface{}{"permission": permission}
	}
	data, _ := json.Marshal(map[string]interface{}{"agent": agents, "mode": modes})
	return string(data)
}
