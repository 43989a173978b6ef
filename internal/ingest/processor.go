package ingest

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/visitor-pulse/backend/internal/alert"
	"github.com/visitor-pulse/backend/internal/event"
	"github.com/visitor-pulse/backend/internal/session"
	"github.com/visitor-pulse/backend/internal/store"
	"github.com/visitor-pulse/backend/internal/ws"
)

// Submission is a raw inbound event payload as delivered by the transport
// layer. The transport fills in a synthesized sessionId before submission
// when the client did not send one.
type Submission struct {
	Type      string            `json:"type"`
	Country   string            `json:"country"`
	Page      string            `json:"page,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	SessionID string            `json:"sessionId,omitempty"`
	Timestamp time.Time         `json:"timestamp,omitempty"`
}

// Processor runs each accepted event through the full pipeline: append to
// the log, count the page visit, advance the session state machine, fan the
// update out to dashboards, and evaluate the alert policy. The pipeline for
// one event is atomic with respect to any other event's pipeline; both the
// session transitions and the log's FIFO eviction are order sensitive.
type Processor struct {
	mu      sync.Mutex
	log     *store.EventLog
	pages   *store.PageCounter
	tracker *session.Tracker
	hub     *ws.Hub
	policy  *alert.Policy
	now     func() time.Time
}

func New(eventLog *store.EventLog, pages *store.PageCounter, tracker *session.Tracker, hub *ws.Hub, policy *alert.Policy) *Processor {
	return &Processor{
		log:     eventLog,
		pages:   pages,
		tracker: tracker,
		hub:     hub,
		policy:  policy,
		now:     time.Now,
	}
}

// Submit validates a submission and, if accepted, processes it to
// completion. A rejected submission returns a ValidationError and triggers
// a warning alert; it leaves no trace in the stores. A panic anywhere in
// the pipeline is recovered here so one bad event cannot take the process
// down.
func (p *Processor) Submit(sub Submission) (ev *event.VisitorEvent, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			log.Printf("event pipeline panic: %v", r)
			p.hub.BroadcastAlert(ws.AlertWarning, "Error processing visitor event. Please try again.", map[string]interface{}{
				"error": fmt.Sprint(r),
			})
			ev = nil
			err = errors.New("internal error processing event")
		}
	}()

	typ, verr := validate(sub)
	if verr != nil {
		p.hub.BroadcastAlert(ws.AlertWarning, "Rejected visitor event: "+verr.Message, map[string]interface{}{
			"field": verr.Field,
		})
		return nil, verr
	}

	ts := sub.Timestamp
	if ts.IsZero() {
		ts = p.now()
	}
	ev = &event.VisitorEvent{
		ID:        uuid.NewString(),
		Type:      typ,
		Country:   sub.Country,
		Page:      sub.Page,
		Metadata:  sub.Metadata,
		Timestamp: ts,
		SessionID: sub.SessionID,
	}

	p.log.Append(ev)
	if ev.Type == event.Pageview {
		page := ev.Page
		if page == "" {
			page = "/"
		}
		p.pages.Increment(page)
	}

	sess, transitioned := p.tracker.Apply(ev)

	now := p.now()
	p.hub.BroadcastVisitorUpdate(ev, ws.LiveStats{
		TotalActive:  p.tracker.ActiveCount(),
		TotalToday:   p.log.CountSince(startOfDay(now)),
		PagesVisited: p.pages.Snapshot(),
	})
	if transitioned {
		p.hub.BroadcastSessionActivity(sess, sess.Duration(now))
	}

	if ha, fired := p.policy.CheckActivity(p.log); fired {
		p.hub.BroadcastAlert(ws.AlertWarning, ha.Message(), map[string]interface{}{
			"eventCount":    ha.Count,
			"windowSeconds": int(ha.Window.Seconds()),
		})
	}

	return ev, nil
}

// ClearAnalytics drops all session state and page counters. The event log
// is deliberately left untouched: new dashboard connections still get the
// recent-event replay.
func (p *Processor) ClearAnalytics() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tracker.Reset()
	p.pages.Reset()
	p.hub.BroadcastAnalyticsCleared()
}

func validate(sub Submission) (event.Type, *ValidationError) {
	if sub.Type == "" {
		return 0, &ValidationError{Field: "type", Message: "missing required field: type"}
	}
	if sub.Country == "" {
		return 0, &ValidationError{Field: "country", Message: "missing required field: country"}
	}
	typ, ok := event.ParseType(sub.Type)
	if !ok {
		return 0, &ValidationError{Field: "type", Message: fmt.Sprintf("invalid event type: %q", sub.Type)}
	}
	return typ, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
