package session

import (
	"sort"
	"sync"

	"github.com/visitor-pulse/backend/internal/event"
)

// Tracker runs the per-sessionId state machine. A sessionId with no record
// becomes Active on its first pageview or click; session_end flips it to
// Ended; activity after an end starts a fresh logical session under the
// same id, overwriting the ended record.
//
// The tracker assumes sessionId is always present on inbound events; the
// transport layer synthesizes one when missing.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	active   map[string]bool
}

func NewTracker() *Tracker {
	return &Tracker{
		sessions: make(map[string]*Session),
		active:   make(map[string]bool),
	}
}

// Apply feeds one event through the state machine and returns a snapshot of
// the session after the transition. The second return value is false when
// no transition occurred (a session_end for an id with no active session).
func (t *Tracker) Apply(ev *event.VisitorEvent) (*Session, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if ev.Type == event.SessionEnd {
		s, ok := t.sessions[ev.SessionID]
		if !ok || !s.IsActive {
			return nil, false
		}
		end := ev.Timestamp
		s.IsActive = false
		s.EndTime = &end
		s.LastActivity = ev.Timestamp
		delete(t.active, ev.SessionID)
		return s.Clone(), true
	}

	page := ev.Page
	if page == "" {
		page = "/"
	}

	if s, ok := t.sessions[ev.SessionID]; ok && s.IsActive {
		// Repeat visits count as distinct journey steps, so the page is
		// appended even when it equals the current one.
		s.Journey = append(s.Journey, page)
		s.CurrentPage = page
		s.LastActivity = ev.Timestamp
		mergeMetadata(s, ev.Metadata)
		return s.Clone(), true
	}

	// First activity for this id, or activity after a session_end: either
	// way the record starts fresh.
	s := &Session{
		ID:           ev.SessionID,
		StartTime:    ev.Timestamp,
		Country:      ev.Country,
		Journey:      []string{page},
		CurrentPage:  page,
		LastActivity: ev.Timestamp,
		IsActive:     true,
	}
	mergeMetadata(s, ev.Metadata)
	t.sessions[ev.SessionID] = s
	t.active[ev.SessionID] = true
	return s.Clone(), true
}

func mergeMetadata(s *Session, md map[string]string) {
	if len(md) == 0 {
		return
	}
	if s.Metadata == nil {
		s.Metadata = make(map[string]string, len(md))
	}
	for k, v := range md {
		s.Metadata[k] = v
	}
}

// Get returns a snapshot of the current session record for id, ended or
// active.
func (t *Tracker) Get(id string) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	if !ok {
		return nil, false
	}
	return s.Clone(), true
}

// Active returns snapshots of all active sessions, ordered by start time.
func (t *Tracker) Active() []*Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Session, 0, len(t.active))
	for id := range t.active {
		out = append(out, t.sessions[id].Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartTime.Before(out[j].StartTime)
	})
	return out
}

func (t *Tracker) ActiveCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.active)
}

// TotalSeen counts the sessionIds ever observed since the last Reset.
func (t *Tracker) TotalSeen() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// Reset drops all session records and the active index.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sessions = make(map[string]*Session)
	t.active = make(map[string]bool)
}
