package engine

import "sync"

// Scheduler enforces the global cap on concurrently executing loops.
// Projects over the cap wait in FIFO order; releasing a slot admits the
// head of the queue.
type Scheduler struct {
	mu     sync.Mutex
	cap    int
	active map[string]bool
	queue  []string
}

// NewScheduler creates a scheduler with the given concurrency cap.
// A cap below 1 is treated as 1.
func NewScheduler(cap int) *Scheduler {
	if cap < 1 {
		cap = 1
	}
	return &Scheduler{
		cap:    cap,
		active: make(map[string]bool),
	}
}

// Request asks for an execution slot. Returns true when the project may
// run immediately; otherwise the project is appended to the wait queue.
func (s *Scheduler) Request(projectID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active[projectID] {
		return true
	}
	if len(s.active) < s.cap {
		s.active[projectID] = true
		return true
	}
	for _, id := range s.queue {
		if id == projectID {
			return false
		}
	}
	s.queue = append(s.queue, projectID)
	return false
}

// Release returns a slot and admits the next queued project, if any.
// The admitted project's ID is returned so the caller can launch it.
func (s *Scheduler) Release(projectID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.active, projectID)
	if len(s.queue) == 0 || len(s.active) >= s.cap {
		return "", false
	}
	next := s.queue[0]
	s.queue = s.queue[1:]
	s.active[next] = true
	return next, true
}

// Cancel removes a project from the wait queue. Returns false when the
// project was not queued.
func (s *Scheduler) Cancel(projectID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range s.queue {
		if id == projectID {
			s.queue = append(s.queue[:i], s.queue[i+1:]...)
			return true
		}
	}
	return false
}

// ActiveCount returns the number of held slots.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// QueueLen returns the number of waiting projects.
func (s *Scheduler) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}
