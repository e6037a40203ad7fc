// Package adapter wraps the supported coding-agent CLIs behind a common
// interface: building the subprocess invocation, parsing output lines, and
// detecting the completion signal.
package adapter

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ralph-loop/ralph/internal/models"
)

// LineType classifies the shape of a parsed output line.
type LineType string

const (
	LineText  LineType = "text"
	LineJSON  LineType = "json"
	LineError LineType = "error"
)

// ParsedLine is a single output line after adapter-specific decoding.
type ParsedLine struct {
	Content   string
	Type      LineType
	Assistant bool
}

// Options tweaks how an invocation is built.
type Options struct {
	SkipGitRepoCheck bool
}

// Invocation describes the subprocess to spawn for one iteration.
type Invocation struct {
	Program string
	Args    []string
	Dir     string
	Env     []string // extra K=V entries, appended to the parent environment
}

// Outcome classifies the end of one iteration's subprocess.
type Outcome int

const (
	// OutcomeContinue is a clean exit without the completion signal: the
	// loop proceeds to the next iteration.
	OutcomeContinue Outcome = iota
	// OutcomeSucceeded means the completion signal was observed.
	OutcomeSucceeded
	// OutcomeFailed is a non-zero exit without the completion signal.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeContinue:
		return "continue"
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeFailed:
		return "failed"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// Adapter is the per-CLI integration surface.
type Adapter interface {
	// Name is the human-facing CLI name.
	Name() string
	// Type is the CLI identifier tasks are configured with.
	Type() models.CLIType
	// Installed reports whether the binary was resolved.
	Installed() bool
	// Path is the resolved binary path, or empty when not installed.
	Path() string
	// Version shells out to `<cli> --version`.
	Version(ctx context.Context) (string, error)
	// BuildInvocation builds the full-access invocation for one iteration.
	BuildInvocation(prompt, dir string, opts Options) *Invocation
	// BuildReadonlyInvocation builds an invocation that must not modify the
	// working tree (used for commit-message generation).
	BuildReadonlyInvocation(prompt, dir string, opts Options) *Invocation
	// ParseLine decodes one raw output line.
	ParseLine(line string) ParsedLine
	// DetectCompletion reports whether the output contains the completion
	// signal, applying the CLI's own framing rules.
	DetectCompletion(output, signal string) bool
	// StderrIsOutput reports whether stderr lines should be treated as
	// normal output for this CLI.
	StderrIsOutput() bool
	// FatalStderr inspects a stderr line for a known unrecoverable error
	// and returns a user-facing message when one matches.
	FatalStderr(line string) (string, bool)
}

// ClassifyExit maps a subprocess exit to an iteration outcome. The signal
// takes precedence: the loop kills the child once it is seen, so the exit
// code of a completed iteration is not meaningful.
func ClassifyExit(exitCode int, completed bool) Outcome {
	if completed {
		return OutcomeSucceeded
	}
	if exitCode != 0 {
		return OutcomeFailed
	}
	return OutcomeContinue
}

// ForType returns the adapter for a CLI type. The set is closed; unknown
// types are an error.
func ForType(cli models.CLIType, settings *models.Settings) (Adapter, error) {
	switch cli {
	case models.CLIClaude:
		return NewClaude(settings), nil
	case models.CLICodex:
		return NewCodex(settings), nil
	case models.CLIOpencode:
		return NewOpencode(settings), nil
	}
	return nil, fmt.Errorf("unsupported cli %q", cli)
}

// probeVersion runs `<program> --version` and returns the trimmed first
// line of output.
func probeVersion(ctx context.Context, program string) (string, error) {
	if program == "" {
		return "", fmt.Errorf("binary not installed")
	}
	out, err := exec.CommandContext(ctx, program, "--version").Output()
	if err != nil {
		return "", fmt.Errorf("version probe failed: %w", err)
	}
	version := strings.TrimSpace(string(out))
	if i := strings.IndexByte(version, '\n'); i >= 0 {
		version = version[:i]
	}
	return version, nil
}
