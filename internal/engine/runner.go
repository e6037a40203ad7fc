package engine

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/ralph-loop/ralph/internal/adapter"
)

// Line is a single timestamped output line from the agent subprocess.
type Line struct {
	Time   time.Time
	Text   string
	Stderr bool
}

// Proc is a handle on a running agent subprocess. Lines carries the
// merged stdout/stderr stream and is closed when both pipes drain;
// Done closes after the process has been reaped.
type Proc interface {
	Lines() <-chan Line
	Done() <-chan struct{}
	// ExitCode is valid after Done is closed.
	ExitCode() int
	// Terminate sends SIGTERM, waits for the grace window, then SIGKILLs.
	// Safe to call multiple times and after exit.
	Terminate(grace time.Duration)
}

// SpawnFunc starts an invocation. Tests swap in scripted handles.
type SpawnFunc func(inv *adapter.Invocation) (Proc, error)

type process struct {
	cmd      *exec.Cmd
	lines    chan Line
	done     chan struct{}
	exitCode int
	termOnce sync.Once
}

// Spawn starts the invocation with piped stdout/stderr and begins
// streaming lines. A start failure is reported as *SpawnError.
func Spawn(inv *adapter.Invocation) (Proc, error) {
	cmd := exec.Command(inv.Program, inv.Args...)
	cmd.Dir = inv.Dir
	cmd.Stdin = nil
	if len(inv.Env) > 0 {
		cmd.Env = append(os.Environ(), inv.Env...)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &SpawnError{Program: inv.Program, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &SpawnError{Program: inv.Program, Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Program: inv.Program, Err: err}
	}

	p := &process{
		cmd:   cmd,
		lines: make(chan Line, 256),
		done:  make(chan struct{}),
	}

	var readers sync.WaitGroup
	readers.Add(2)
	go p.readPipe(stdout, false, &readers)
	go p.readPipe(stderr, true, &readers)

	go func() {
		readers.Wait()
		close(p.lines)
		err := cmd.Wait()
		p.exitCode = exitCodeOf(err)
		close(p.done)
	}()

	return p, nil
}

// readPipe scans one pipe into the merged line channel. The buffer is
// sized for long stream-json lines.
func (p *process) readPipe(pipe io.Reader, stderr bool, wg *sync.WaitGroup) {
	defer wg.Done()

	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.lines <- Line{
			Time:   time.Now().UTC(),
			Text:   scanner.Text(),
			Stderr: stderr,
		}
	}
}

func (p *process) Lines() <-chan Line { return p.lines }
func (p *process) Done() <-chan struct{} { return p.done }
func (p *process) ExitCode() int { return p.exitCode }

// Terminate sends SIGTERM, waits up to the grace window, then SIGKILLs.
func (p *process) Terminate(grace time.Duration) {
	p.termOnce.Do(func() {
		select {
		case <-p.done:
			return
		default:
		}

		if p.cmd.Process == nil {
			return
		}
		_ = p.cmd.Process.Signal(syscall.SIGTERM)

		select {
		case <-p.done:
			return
		case <-time.After(grace):
		}

		_ = p.cmd.Process.Kill()
		<-p.done
	})
}

// exitCodeOf extracts the exit code from cmd.Wait's error.
func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
