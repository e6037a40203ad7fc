package engine

import (
	"sync"

	"github.com/ralph-loop/ralph/internal/models"
)

// MaxRecentEntries bounds the in-memory display buffer. The full run log
// is persisted separately when the run ends.
const MaxRecentEntries = 1000

// LogBuffer is an append-only window over the most recent output lines.
type LogBuffer struct {
	mu      sync.RWMutex
	entries []models.LogLine
	total   int
}

// NewLogBuffer creates an empty buffer.
func NewLogBuffer() *LogBuffer {
	return &LogBuffer{entries: make([]models.LogLine, 0, 256)}
}

// Append adds a line, evicting the oldest when the window is full.
func (b *LogBuffer) Append(line models.LogLine) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total++
	if len(b.entries) >= MaxRecentEntries {
		b.entries = append(b.entries[1:], line)
		return
	}
	b.entries = append(b.entries, line)
}

// Recent returns a copy of the buffered lines, oldest first.
func (b *LogBuffer) Recent() []models.LogLine {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]models.LogLine, len(b.entries))
	copy(out, b.entries)
	return out
}

// Total returns the number of lines appended over the buffer's lifetime,
// including evicted ones.
func (b *LogBuffer) Total() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.total
}

// Clear drops all buffered lines.
func (b *LogBuffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = b.entries[:0]
	b.total = 0
}
