package watcher

import (
	"testing"
	"time"

	"github.com/ralph-loop/ralph/internal/config"
	"github.com/ralph-loop/ralph/internal/models"
)

func startWatcher(t *testing.T) *Watcher {
	t.Helper()
	t.Setenv("RALPH_HOME", t.TempDir())
	if err := config.EnsureGlobalDir(); err != nil {
		t.Fatal(err)
	}

	w, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(w.Stop)
	return w
}

func waitEvent(t *testing.T, w *Watcher, want EventType) Event {
	t.Helper()

	deadline := time.After(10 * time.Second)
	for {
		select {
		case event := <-w.Events():
			if event.Type == want {
				return event
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event %d", want)
		}
	}
}

func TestWatcherDetectsTaskChange(t *testing.T) {
	w := startWatcher(t)

	dir := t.TempDir()
	if err := config.EnsureProjectDir(dir); err != nil {
		t.Fatal(err)
	}
	if err := w.WatchProject("p1", dir); err != nil {
		t.Fatalf("WatchProject: %v", err)
	}

	task := models.NewTask(models.CLIClaude, "first prompt")
	if err := config.SaveTask(dir, task); err != nil {
		t.Fatal(err)
	}

	event := waitEvent(t, w, EventTaskChanged)
	if event.ProjectID != "p1" {
		t.Errorf("projectID = %q", event.ProjectID)
	}
}

func TestWatcherDetectsControlRequest(t *testing.T) {
	w := startWatcher(t)

	dir := t.TempDir()
	if err := config.EnsureProjectDir(dir); err != nil {
		t.Fatal(err)
	}
	if err := w.WatchProject("p1", dir); err != nil {
		t.Fatal(err)
	}

	if err := config.WriteControl(dir, models.ControlPause); err != nil {
		t.Fatal(err)
	}

	event := waitEvent(t, w, EventControlRequested)
	if event.ProjectID != "p1" {
		t.Errorf("projectID = %q", event.ProjectID)
	}

	req, err := config.LoadControl(dir)
	if err != nil || req == nil || req.Action != models.ControlPause {
		t.Errorf("control request = %+v (%v)", req, err)
	}
}

func TestWatcherDetectsProjectsIndexChange(t *testing.T) {
	w := startWatcher(t)

	index := models.NewProjectsIndex()
	index.AddProject(models.ProjectEntry{ProjectID: "p1", Name: "p1", Path: "/tmp/p1"})
	if err := config.SaveProjectsIndex(index); err != nil {
		t.Fatal(err)
	}

	waitEvent(t, w, EventProjectsIndexChanged)
}

func TestWatcherDebouncesBursts(t *testing.T) {
	w := startWatcher(t)

	dir := t.TempDir()
	if err := config.EnsureProjectDir(dir); err != nil {
		t.Fatal(err)
	}
	if err := w.WatchProject("p1", dir); err != nil {
		t.Fatal(err)
	}

	// Rapid rewrite burst, as an editor save produces.
	for i := 0; i < 5; i++ {
		task := models.NewTask(models.CLIClaude, "prompt revision")
		if err := config.SaveTask(dir, task); err != nil {
			t.Fatal(err)
		}
	}

	waitEvent(t, w, EventTaskChanged)

	// The burst should have collapsed into very few events.
	time.Sleep(300 * time.Millisecond)
	extra := 0
	for {
		select {
		case event := <-w.Events():
			if event.Type == EventTaskChanged {
				extra++
			}
			continue
		default:
		}
		break
	}
	if extra > 1 {
		t.Errorf("burst produced %d extra events", extra+1)
	}
}

func TestWatcherUnwatchStopsEvents(t *testing.T) {
	w := startWatcher(t)

	dir := t.TempDir()
	if err := config.EnsureProjectDir(dir); err != nil {
		t.Fatal(err)
	}
	if err := w.WatchProject("p1", dir); err != nil {
		t.Fatal(err)
	}
	w.UnwatchProject("p1")

	if err := config.SaveTask(dir, models.NewTask(models.CLIClaude, "x")); err != nil {
		t.Fatal(err)
	}

	select {
	case event := <-w.Events():
		if event.Type == EventTaskChanged && event.ProjectID == "p1" {
			t.Error("received event after unwatch")
		}
	case <-time.After(500 * time.Millisecond):
	}
}
