package store

import (
	"sync"
	"time"

	"github.com/visitor-pulse/backend/internal/event"
)

// EventLog is a bounded in-memory log of visitor events. When the log is
// full the oldest events are evicted first, FIFO by arrival order. Events
// are immutable, so readers receive copies of the slice but share the
// event values themselves.
type EventLog struct {
	mu     sync.RWMutex
	events []*event.VisitorEvent
	max    int
}

func NewEventLog(max int) *EventLog {
	return &EventLog{max: max}
}

func (l *EventLog) Append(ev *event.VisitorEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
	if len(l.events) > l.max {
		l.events = l.events[len(l.events)-l.max:]
	}
}

func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Recent returns the last k events in arrival order, most-recent last.
// Fewer are returned if the log holds fewer.
func (l *EventLog) Recent(k int) []*event.VisitorEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if k > len(l.events) {
		k = len(l.events)
	}
	out := make([]*event.VisitorEvent, k)
	copy(out, l.events[len(l.events)-k:])
	return out
}

func (l *EventLog) All() []*event.VisitorEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]*event.VisitorEvent, len(l.events))
	copy(out, l.events)
	return out
}

// CountSince counts events whose timestamp is at or after t.
func (l *EventLog) CountSince(t time.Time) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	count := 0
	for _, ev := range l.events {
		if !ev.Timestamp.Before(t) {
			count++
		}
	}
	return count
}

// Filter returns events matching the conjunction of the given country and
// page equality predicates. An empty string means no constraint on that
// field. An empty result is valid.
func (l *EventLog) Filter(country, page string) []*event.VisitorEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []*event.VisitorEvent
	for _, ev := range l.events {
		if country != "" && ev.Country != country {
			continue
		}
		if page != "" && ev.Page != page {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// Countries returns the distinct countries currently observed in the log,
// ordered by first appearance.
func (l *EventLog) Countries() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.distinct(func(ev *event.VisitorEvent) string { return ev.Country })
}

// Pages returns the distinct pages currently observed in the log, ordered
// by first appearance.
func (l *EventLog) Pages() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.distinct(func(ev *event.VisitorEvent) string { return ev.Page })
}

// distinct collects non-empty field values in first-seen order.
// Caller must hold l.mu.
func (l *EventLog) distinct(field func(*event.VisitorEvent) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, ev := range l.events {
		v := field(ev)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
