// Package watcher handles file system watching for task edits.
package watcher

import (
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ralph-loop/ralph/internal/config"
)

// EventType represents the type of file system event.
type EventType int

// Event types for file system changes.
const (
	EventProjectsIndexChanged EventType = iota
	EventProjectChanged
	EventTaskChanged
	EventControlRequested
)

// Event represents a file system change event.
type Event struct {
	Type      EventType
	ProjectID string
	Path      string
}

// Watcher watches the global index and per-project .ralph/ directories so
// prompt edits land in the next iteration without a restart.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	eventsChan chan Event
	done       chan struct{}
	mu         sync.RWMutex
	projects   map[string]string // projectID -> path
	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
}

// New creates a new file system watcher.
func New() (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:  fsWatcher,
		eventsChan: make(chan Event, 100),
		done:       make(chan struct{}),
		projects:   make(map[string]string),
		debounce:   make(map[string]*time.Timer),
	}

	return w, nil
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start starts the watcher.
func (w *Watcher) Start() error {
	// Watch the global directory for projects.yaml changes
	globalDir, err := config.GlobalDir()
	if err != nil {
		return err
	}
	if err := w.fsWatcher.Add(globalDir); err != nil {
		log.Printf("Warning: failed to watch global dir: %v", err)
	}

	go w.processEvents()

	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
	_ = w.fsWatcher.Close()
}

// WatchProject adds a project to be watched.
func (w *Watcher) WatchProject(projectID, projectPath string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Remove stale entry if the same path is watched under a different ID
	for id, p := range w.projects {
		if p == projectPath && id != projectID {
			delete(w.projects, id)
			break
		}
	}

	w.projects[projectID] = projectPath

	ralphDir := config.ProjectDir(projectPath)
	if err := w.fsWatcher.Add(ralphDir); err != nil {
		return err
	}

	log.Printf("[watcher] Watching project %s: %s", projectID, ralphDir)
	return nil
}

// UnwatchProject removes a project from being watched.
func (w *Watcher) UnwatchProject(projectID string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	projectPath, ok := w.projects[projectID]
	if !ok {
		return
	}

	delete(w.projects, projectID)
	_ = w.fsWatcher.Remove(config.ProjectDir(projectPath))
}

// processEvents processes file system events.
func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

// handleEvent processes a single file system event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Accept write, create, and rename events.
	// Rename is critical: atomic writes (write tmp → rename to target)
	// produce Rename events on the target file, the pattern editors and
	// coding agents use.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	w.debounceEvent(event.Name, func() {
		w.processFileChange(event.Name)
	})
}

// debounceEvent debounces events for the same path.
func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}

	w.debounce[path] = time.AfterFunc(100*time.Millisecond, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}

// processFileChange handles a debounced file change.
func (w *Watcher) processFileChange(path string) {
	filename := filepath.Base(path)
	dir := filepath.Dir(path)

	if filename == config.ProjectsFileName {
		w.eventsChan <- Event{
			Type: EventProjectsIndexChanged,
			Path: path,
		}
		return
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	for projectID, projectPath := range w.projects {
		if dir != config.ProjectDir(projectPath) {
			continue
		}
		switch filename {
		case config.ProjectFileName:
			w.eventsChan <- Event{
				Type:      EventProjectChanged,
				ProjectID: projectID,
				Path:      path,
			}
		case config.TaskFileName:
			w.eventsChan <- Event{
				Type:      EventTaskChanged,
				ProjectID: projectID,
				Path:      path,
			}
		case config.ControlFileName:
			w.eventsChan <- Event{
				Type:      EventControlRequested,
				ProjectID: projectID,
				Path:      path,
			}
		}
		return
	}
}
