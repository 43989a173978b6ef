package session

import "time"

// Session is one tracked visitor session: a sequence of page interactions
// sharing a sessionId, bounded by its first event and either an explicit
// session_end or ongoing activity.
type Session struct {
	ID           string            `json:"id"`
	StartTime    time.Time         `json:"startTime"`
	EndTime      *time.Time        `json:"endTime,omitempty"`
	Country      string            `json:"country"`
	Journey      []string          `json:"journey"`
	CurrentPage  string            `json:"currentPage"`
	LastActivity time.Time         `json:"lastActivity"`
	IsActive     bool              `json:"isActive"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// Clone returns a deep copy of the Session, duplicating pointer, slice and
// map fields so the copy can be read independently of the original.
func (s *Session) Clone() *Session {
	c := *s
	if s.EndTime != nil {
		t := *s.EndTime
		c.EndTime = &t
	}
	if len(s.Journey) > 0 {
		c.Journey = make([]string, len(s.Journey))
		copy(c.Journey, s.Journey)
	}
	if len(s.Metadata) > 0 {
		c.Metadata = make(map[string]string, len(s.Metadata))
		for k, v := range s.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// Duration reports the session length in whole seconds. It is always
// derived, never stored: ended sessions measure to their end time, active
// ones to the supplied reference time.
func (s *Session) Duration(now time.Time) int64 {
	ref := now
	if s.EndTime != nil {
		ref = *s.EndTime
	}
	return int64(ref.Sub(s.StartTime).Seconds())
}
