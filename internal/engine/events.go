package engine

import (
	"sync"

	"github.com/ralph-loop/ralph/internal/models"
)

// StatusUpdate is pushed to status subscribers on every transition and
// iteration advance.
type StatusUpdate struct {
	ProjectID string
	Status    models.Status
	Iteration int
	Error     string
}

// Broadcaster fans out per-project log lines and status updates to
// subscribers over bounded channels. Delivery is best-effort: a slow
// subscriber drops updates instead of stalling the loop.
type Broadcaster struct {
	mu         sync.RWMutex
	logSubs    map[string]map[string]chan models.LogLine
	statusSubs map[string]map[string]chan StatusUpdate
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		logSubs:    make(map[string]map[string]chan models.LogLine),
		statusSubs: make(map[string]map[string]chan StatusUpdate),
	}
}

// SubscribeLogs creates a log subscription for the given subscriber ID.
func (b *Broadcaster) SubscribeLogs(projectID, id string) chan models.LogLine {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.logSubs[projectID] == nil {
		b.logSubs[projectID] = make(map[string]chan models.LogLine)
	}
	ch := make(chan models.LogLine, 256)
	b.logSubs[projectID][id] = ch
	return ch
}

// UnsubscribeLogs removes a log subscription.
func (b *Broadcaster) UnsubscribeLogs(projectID, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, ok := b.logSubs[projectID]; ok {
		if ch, ok := subs[id]; ok {
			close(ch)
			delete(subs, id)
		}
	}
}

// SubscribeStatus creates a status subscription for the given subscriber ID.
func (b *Broadcaster) SubscribeStatus(projectID, id string) chan StatusUpdate {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.statusSubs[projectID] == nil {
		b.statusSubs[projectID] = make(map[string]chan StatusUpdate)
	}
	ch := make(chan StatusUpdate, 64)
	b.statusSubs[projectID][id] = ch
	return ch
}

// UnsubscribeStatus removes a status subscription.
func (b *Broadcaster) UnsubscribeStatus(projectID, id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if subs, ok := b.statusSubs[projectID]; ok {
		if ch, ok := subs[id]; ok {
			close(ch)
			delete(subs, id)
		}
	}
}

// PublishLog sends a log line to all of the project's log subscribers.
// Non-blocking: drops if channel full.
func (b *Broadcaster) PublishLog(projectID string, line models.LogLine) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.logSubs[projectID] {
		select {
		case ch <- line:
		default:
			// Drop if subscriber can't keep up
		}
	}
}

// PublishStatus sends a status update to all of the project's status
// subscribers. Non-blocking.
func (b *Broadcaster) PublishStatus(update StatusUpdate) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.statusSubs[update.ProjectID] {
		select {
		case ch <- update:
		default:
		}
	}
}
