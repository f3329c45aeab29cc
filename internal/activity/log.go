// Package activity keeps the shared recent-activity feed. The log is
// in-memory and process-lifetime only; it resets on restart.
package activity

import (
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
)

const maxEntries = 20

// Entry is a single activity item
type Entry struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Ago       string    `json:"ago,omitempty"`
}

// Log is a bounded, newest-first activity feed
type Log struct {
	mu      sync.RWMutex
	entries []Entry
	now     func() time.Time
}

// NewLog creates an empty activity log
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Add prepends an entry and returns it
func (l *Log) Add(user, action string) Entry {
	e := Entry{
		ID:        uuid.NewString(),
		User:      user,
		Action:    action,
		Timestamp: l.now(),
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append([]Entry{e}, l.entries...)
	if len(l.entries) > maxEntries {
		l.entries = l.entries[:maxEntries]
	}
	return e
}

// Recent returns the stored entries newest first, with humanized
// relative timestamps
func (l *Log) Recent() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	for i := range out {
		out[i].Ago = humanize.Time(out[i].Timestamp)
	}
	return out
}
