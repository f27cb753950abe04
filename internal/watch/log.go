package watch

import (
	"slices"
	"time"

	"github.com/nateberkopec/failbell/internal/event"
)

// MaxEntries caps the completion log; the oldest entries fall off the end.
const MaxEntries = 200

// Log keeps the recent command completions that the UI renders, newest first.
type Log struct {
	nextID  int64
	order   []int64
	entries map[int64]*Entry
}

// Entry records one command completion along with how the notifier reacted.
type Entry struct {
	ID         int64
	Completion event.Completion
	AddedAt    time.Time
	Chimed     bool
}

// NewLog creates an empty completion log.
func NewLog() *Log {
	return &Log{
		nextID:  1,
		entries: make(map[int64]*Entry),
	}
}

// Append records a completion and returns the new entry. Older entries beyond
// MaxEntries are evicted.
func (l *Log) Append(c event.Completion, chimed bool) *Entry {
	entry := &Entry{
		ID:         l.nextID,
		Completion: c,
		AddedAt:    time.Now(),
		Chimed:     chimed,
	}
	l.nextID++

	l.entries[entry.ID] = entry
	l.order = append([]int64{entry.ID}, l.order...)

	for len(l.order) > MaxEntries {
		last := l.order[len(l.order)-1]
		l.order = l.order[:len(l.order)-1]
		delete(l.entries, last)
	}

	return entry
}

// Dismiss removes a single entry.
func (l *Log) Dismiss(id int64) bool {
	if _, ok := l.entries[id]; !ok {
		return false
	}
	delete(l.entries, id)
	l.order = removeID(l.order, id)
	return true
}

// Clear drops every entry.
func (l *Log) Clear() {
	l.order = nil
	l.entries = make(map[int64]*Entry)
}

// Visible returns entries in display order, optionally failures only.
func (l *Log) Visible(failuresOnly bool) []*Entry {
	items := make([]*Entry, 0, len(l.order))
	for _, id := range l.order {
		entry, ok := l.entries[id]
		if !ok {
			continue
		}
		if failuresOnly && !entry.Completion.Failed() {
			continue
		}
		items = append(items, entry)
	}
	return items
}

// Len exposes the total entry count.
func (l *Log) Len() int {
	return len(l.order)
}

// Failures counts the entries with a non-zero exit.
func (l *Log) Failures() int {
	count := 0
	for _, entry := range l.entries {
		if entry.Completion.Failed() {
			count++
		}
	}
	return count
}

// ExportState returns a snapshot of the log for persistence, newest first.
func (l *Log) ExportState() []*Entry {
	return l.Visible(false)
}

// ImportState restores the log from persistence data, keeping the given
// order.
func (l *Log) ImportState(entries []*Entry) {
	l.order = make([]int64, 0, len(entries))
	l.entries = make(map[int64]*Entry, len(entries))
	l.nextID = 1
	for _, entry := range entries {
		l.entries[entry.ID] = entry
		l.order = append(l.order, entry.ID)
		if entry.ID >= l.nextID {
			l.nextID = entry.ID + 1
		}
	}
	for len(l.order) > MaxEntries {
		last := l.order[len(l.order)-1]
		l.order = l.order[:len(l.order)-1]
		delete(l.entries, last)
	}
	l.order = slices.Clip(l.order)
}

func removeID(items []int64, id int64) []int64 {
	out := items[:0]
	for _, existing := range items {
		if existing == id {
			continue
		}
		out = append(out, existing)
	}
	return out
}
