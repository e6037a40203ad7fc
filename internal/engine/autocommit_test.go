package engine

import (
	"strings"
	"testing"

	"github.com/ralph-loop/ralph/internal/adapter"
)

func TestNormalizeCommitMessage(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		iteration int
		expected  string
	}{
		{
			name:      "single clean line",
			raw:       "Fix flaky watcher test",
			iteration: 1,
			expected:  "Fix flaky watcher test",
		},
		{
			name:      "first non-empty line wins",
			raw:       "\n\nAdd retry to config loader\nSome trailing explanation",
			iteration: 1,
			expected:  "Add retry to config loader",
		},
		{
			name:      "strips quotes and backticks",
			raw:       "`\"Refactor scheduler\"`",
			iteration: 1,
			expected:  "Refactor scheduler",
		},
		{
			name:      "empty output falls back",
			raw:       "   \n\n  ",
			iteration: 4,
			expected:  "ralph: iteration 4",
		},
		{
			name:      "long line truncated to limit",
			raw:       strings.Repeat("x", 100),
			iteration: 1,
			expected:  strings.Repeat("x", commitLineLimit),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := normalizeCommitMessage(tt.raw, tt.iteration); got != tt.expected {
				t.Errorf("normalizeCommitMessage(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestNormalizeCommitMessageCountsRunes(t *testing.T) {
	raw := strings.Repeat("ü", 80)
	got := normalizeCommitMessage(raw, 1)
	if runes := []rune(got); len(runes) != commitLineLimit {
		t.Errorf("truncated to %d runes, want %d", len(runes), commitLineLimit)
	}
	if !strings.HasPrefix(raw, got) {
		t.Error("truncation split a rune")
	}
}

func TestTruncateForPrompt(t *testing.T) {
	if got := truncateForPrompt("short", 100); got != "short" {
		t.Errorf("short input changed: %q", got)
	}

	long := strings.Repeat("diff line\n", 1000)
	got := truncateForPrompt(long, commitDiffLimit)
	if len([]rune(got)) != commitDiffLimit {
		t.Errorf("truncated to %d chars, want %d", len([]rune(got)), commitDiffLimit)
	}
}

func TestCommitIterationOutsideRepoIsNoop(t *testing.T) {
	// Plain temp dir, no git repo: must return quietly without spawning.
	spawned := false
	committer := &AutoCommitter{
		Dir:     t.TempDir(),
		Adapter: &testAdapter{},
		Spawn: func(inv *adapter.Invocation) (Proc, error) {
			spawned = true
			return newFakeProc(0, false), nil
		},
	}
	committer.CommitIteration(1)
	if spawned {
		t.Error("no repo, nothing to commit: the agent must not be invoked")
	}
}
