package adapter

import (
	"context"
	"strings"

	"github.com/ralph-loop/ralph/internal/models"
)

// Codex drives the codex CLI in exec mode.
type Codex struct {
	path string
}

// NewCodex resolves the codex binary and returns its adapter.
func NewCodex(settings *models.Settings) *Codex {
	return &Codex{path: resolveBinary("codex", settings)}
}

func (c *Codex) Name() string { return "Codex CLI" }
func (c *Codex) Type() models.CLIType { return models.CLICodex }
func (c *Codex) Installed() bool { return c.path != "" }
func (c *Codex) Path() string { return c.path }

// StderrIsOutput is true: codex writes its normal narration to stderr, so
// those lines carry the stdout origin downstream.
func (c *Codex) StderrIsOutput() bool { return true }

func (c *Codex) Version(ctx context.Context) (string, error) {
	return probeVersion(ctx, c.program())
}

func (c *Codex) program() string {
	if c.path != "" {
		return c.path
	}
	return "codex"
}

func codexArgs(prompt string, opts Options) []string {
	args := []string{"exec", "--dangerously-bypass-approvals-and-sandbox"}
	if opts.SkipGitRepoCheck {
		args = append(args, "--skip-git-repo-check")
	}
	return append(args, prompt)
}

func (c *Codex) BuildInvocation(prompt, dir string, opts Options) *Invocation {
	return &Invocation{
		Program: c.program(),
		Args:    codexArgs(prompt, opts),
		Dir:     dir,
	}
}

// BuildReadonlyInvocation matches BuildInvocation; codex exec has no
// read-only sandbox flag compatible with bypass mode.
func (c *Codex) BuildReadonlyInvocation(prompt, dir string, opts Options) *Invocation {
	return c.BuildInvocation(prompt, dir, opts)
}

// DetectCompletion matches the raw text; codex output is plain, not JSON.
func (c *Codex) DetectCompletion(output, signal string) bool {
	return strings.Contains(output, signal)
}

func (c *Codex) ParseLine(line string) ParsedLine {
	// All codex output is treated as assistant text
	return ParsedLine{Content: line, Type: LineText, Assistant: true}
}

// FatalStderr recognizes the untrusted-directory refusal, which no amount
// of looping will get past.
func (c *Codex) FatalStderr(line string) (string, bool) {
	if strings.Contains(line, "Not inside a trusted directory") ||
		strings.Contains(line, "skip-git-repo-check") {
		return "codex refused to run: the project is not a trusted git repository. Enable skip_git_repo_check or auto_init_git on the task.", true
	}
	return "", false
}
