package engine

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ralph-loop/ralph/internal/adapter"
)

const (
	commitDiffLimit  = 4000
	commitLineLimit  = 72
	commitGenTimeout = 2 * time.Minute
)

// AutoCommitter commits the working tree after each iteration, asking the
// agent (in read-only mode) for a one-line commit message.
type AutoCommitter struct {
	Dir              string
	Adapter          adapter.Adapter
	SkipGitRepoCheck bool
	Spawn            SpawnFunc // nil = real
}

// CommitIteration stages and commits any changes left by the iteration.
// Missing repo or clean tree are quiet no-ops; commit failures are logged
// and never fail the loop.
func (c *AutoCommitter) CommitIteration(iteration int) {
	if !isGitRepo(c.Dir) {
		return
	}

	status, err := runGit(c.Dir, "status", "--porcelain")
	if err != nil || strings.TrimSpace(status) == "" {
		return
	}

	diffStat, _ := runGit(c.Dir, "diff", "--stat")
	diffFull, _ := runGit(c.Dir, "diff")
	diff := truncateForPrompt(diffFull, commitDiffLimit)

	message, err := c.generateMessage(iteration, diffStat, diff)
	if err != nil {
		message = fmt.Sprintf("ralph: iteration %d", iteration)
	}
	message = normalizeCommitMessage(message, iteration)

	if _, err := runGit(c.Dir, "add", "-A"); err != nil {
		log.Printf("[autocommit:%s] git add failed: %v", c.Dir, err)
		return
	}
	if _, err := runGit(c.Dir, "commit", "-m", message); err != nil {
		log.Printf("[autocommit:%s] git commit failed: %v", c.Dir, err)
	}
}

// generateMessage runs the agent read-only over the diff and takes its
// output as the commit message.
func (c *AutoCommitter) generateMessage(iteration int, diffStat, diff string) (string, error) {
	prompt := fmt.Sprintf(`Generate a concise git commit message for iteration %d.
Rules:
- Output only the commit message (single line).
- Max 72 characters.
- Use imperative mood.

Diff summary:
%s

Diff:
%s
`, iteration, diffStat, diff)

	spawn := c.Spawn
	if spawn == nil {
		spawn = Spawn
	}

	inv := c.Adapter.BuildReadonlyInvocation(prompt, c.Dir, adapter.Options{
		SkipGitRepoCheck: c.SkipGitRepoCheck,
	})
	proc, err := spawn(inv)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), commitGenTimeout)
	defer cancel()

	var out strings.Builder
	lines := proc.Lines()
	for lines != nil {
		select {
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			if line.Stderr && !c.Adapter.StderrIsOutput() {
				continue
			}
			parsed := c.Adapter.ParseLine(line.Text)
			if parsed.Content != "" {
				out.WriteString(parsed.Content)
				out.WriteString("\n")
			}
		case <-ctx.Done():
			go proc.Terminate(TerminateGrace)
			lines = nil
		}
	}
	<-proc.Done()

	if proc.ExitCode() != 0 {
		return "", fmt.Errorf("commit message generation failed (exit %d)", proc.ExitCode())
	}
	return strings.TrimSpace(out.String()), nil
}

// normalizeCommitMessage reduces raw agent output to one clean line.
func normalizeCommitMessage(raw string, iteration int) string {
	line := ""
	for _, l := range strings.Split(raw, "\n") {
		l = strings.TrimSpace(l)
		if l != "" {
			line = l
			break
		}
	}
	line = strings.Trim(line, "`\"'")
	if line == "" {
		line = fmt.Sprintf("ralph: iteration %d", iteration)
	}
	runes := []rune(line)
	if len(runes) > commitLineLimit {
		line = string(runes[:commitLineLimit])
	}
	return line
}

func truncateForPrompt(input string, maxChars int) string {
	runes := []rune(input)
	if len(runes) <= maxChars {
		return input
	}
	return string(runes[:maxChars])
}

func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s failed: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func isGitRepo(dir string) bool {
	out, err := runGit(dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(out) == "true"
}

// InitGitRepo initializes a repository when a task asks for one (codex
// refuses to run outside a trusted repo otherwise).
func InitGitRepo(dir string) error {
	if isGitRepo(dir) {
		return nil
	}
	if _, err := os.Stat(dir); err != nil {
		return err
	}
	_, err := runGit(dir, "init")
	return err
}
