// Package activity records the history of mutating operations and the stock
// alerts shown to the operator.
package activity

import (
	"slices"
	"sync"
	"time"

	"github.com/fairyhunter13/inventory-register-service/internal/model"
)

// Log is an append-only activity history. Records are never updated or
// removed; List returns them newest first.
type Log struct {
	mu      sync.RWMutex
	records []model.ActivityRecord
}

// NewLog returns an empty activity log.
func NewLog() *Log { return &Log{} }

// Append records rec.
func (l *Log) Append(rec model.ActivityRecord) {
	l.mu.Lock()
	l.records = append(l.records, rec)
	l.mu.Unlock()
}

// List returns up to limit records, newest first, optionally restricted to
// one category. A limit of zero or less returns everything.
func (l *Log) List(limit int, category model.ActivityCategory) []model.ActivityRecord {
	l.mu.RLock()
	out := make([]model.ActivityRecord, 0, len(l.records))
	for _, r := range l.records {
		if category == "" || r.Category == category {
			out = append(out, r)
		}
	}
	l.mu.RUnlock()
	slices.SortStableFunc(out, newestFirst)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Len returns the number of recorded entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// newestFirst orders by event sequence, then by time for unsequenced records.
func newestFirst(a, b model.ActivityRecord) int {
	switch {
	case a.Sequence > b.Sequence:
		return -1
	case a.Sequence < b.Sequence:
		return 1
	}
	return b.At.Compare(a.At)
}

// Notification is an operator-facing alert.
type Notification struct {
	ID       string          `json:"id"`
	Sequence uint64          `json:"sequence"`
	Kind     model.EventKind `json:"kind"`
	Message  string          `json:"message"`
	At       time.Time       `json:"at"`
	Read     bool            `json:"read"`
}

// Inbox holds notifications until they are marked read.
type Inbox struct {
	mu    sync.Mutex
	items []Notification
}

// NewInbox returns an empty notification inbox.
func NewInbox() *Inbox { return &Inbox{} }

// Push adds an unread notification.
func (b *Inbox) Push(n Notification) {
	b.mu.Lock()
	b.items = append(b.items, n)
	b.mu.Unlock()
}

// List returns notifications newest first.
func (b *Inbox) List() []Notification {
	b.mu.Lock()
	out := append([]Notification(nil), b.items...)
	b.mu.Unlock()
	slices.SortStableFunc(out, func(x, y Notification) int {
		switch {
		case x.Sequence > y.Sequence:
			return -1
		case x.Sequence < y.Sequence:
			return 1
		}
		return 0
	})
	return out
}

// Unread counts notifications not yet marked read.
func (b *Inbox) Unread() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, it := range b.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// MarkRead reports whether a notification with id exists.
func (b *Inbox) MarkRead(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].ID == id {
			b.items[i].Read = true
			return true
		}
	}
	return false
}

// MarkAllRead marks every notification read.
func (b *Inbox) MarkAllRead() {
	b.mu.Lock()
	for i := range b.items {
		b.items[i].Read = true
	}
	b.mu.Unlock()
}
