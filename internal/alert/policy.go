package alert

import (
	"fmt"
	"time"

	"github.com/visitor-pulse/backend/internal/store"
)

// HighActivity describes a triggered activity spike.
type HighActivity struct {
	Count  int
	Window time.Duration
}

func (h HighActivity) Message() string {
	return fmt.Sprintf("High activity: %d events in the last %d seconds", h.Count, int(h.Window.Seconds()))
}

// Policy detects anomalous activity over the event log. The check runs
// after every accepted event and has no cooldown: sustained load keeps
// firing on each qualifying event.
type Policy struct {
	threshold int
	window    time.Duration
	now       func() time.Time
}

func NewPolicy(threshold int, window time.Duration) *Policy {
	return &Policy{
		threshold: threshold,
		window:    window,
		now:       time.Now,
	}
}

// CheckActivity reports whether the trailing-window event count has reached
// the threshold.
func (p *Policy) CheckActivity(log *store.EventLog) (HighActivity, bool) {
	count := log.CountSince(p.now().Add(-p.window))
	if count < p.threshold {
		return HighActivity{}, false
	}
	return HighActivity{Count: count, Window: p.window}, true
}
