// Package conversion reacts to conversion lifecycle events.
package conversion

import (
	"sync"
	"time"
)

// DefaultActivityLimit bounds the activity feed when no limit is given.
const DefaultActivityLimit = 50

// Entry is one settled or failed conversion as seen by the event stream.
type Entry struct {
	EventID       string    `json:"event_id"`
	RequestID     string    `json:"request_id"`
	Status        string    `json:"status"`
	Source        string    `json:"source"`
	Target        string    `json:"target"`
	Amount        string    `json:"amount"`
	TransactionID string    `json:"transaction_id,omitempty"`
	Kind          string    `json:"kind,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	At            time.Time `json:"at"`
}

const (
	StatusSettled = "settled"
	StatusFailed  = "failed"
)

// Activity is a bounded in-memory feed of recent outcomes. It is not a
// history store: entries are dropped once the limit is reached.
type Activity struct {
	mu      sync.RWMutex
	entries []Entry
	limit   int
}

// NewActivity creates a feed keeping at most limit entries.
func NewActivity(limit int) *Activity {
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	return &Activity{limit: limit}
}

func (a *Activity) add(e Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	if over := len(a.entries) - a.limit; over > 0 {
		a.entries = append([]Entry(nil), a.entries[over:]...)
	}
}

// Recent returns the entries newest first.
func (a *Activity) Recent() []Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Entry, len(a.entries))
	for i, e := range a.entries {
		out[len(a.entries)-1-i] = e
	}
	return out
}

// Len returns the number of retained entries.
func (a *Activity) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}
