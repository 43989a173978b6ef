package session

import (
	"testing"
	"time"

	"github.com/visitor-pulse/backend/internal/event"
)

var base = time.Date(2025, 7, 19, 10, 30, 0, 0, time.UTC)

func ev(typ event.Type, sessionID, page string, at time.Time) *event.VisitorEvent {
	return &event.VisitorEvent{
		ID:        "e-" + sessionID + "-" + page,
		Type:      typ,
		Country:   "India",
		Page:      page,
		Timestamp: at,
		SessionID: sessionID,
	}
}

func assertJourney(t *testing.T, s *Session, want ...string) {
	t.Helper()
	if s == nil {
		t.Fatal("session is nil")
	}
	if len(s.Journey) != len(want) {
		t.Fatalf("journey = %v, want %v", s.Journey, want)
	}
	for i, p := range want {
		if s.Journey[i] != p {
			t.Errorf("journey[%d] = %q, want %q", i, s.Journey[i], p)
		}
	}
}

func TestFirstEventCreatesActiveSession(t *testing.T) {
	tr := NewTracker()
	s, ok := tr.Apply(ev(event.Pageview, "A", "/x", base))
	if !ok {
		t.Fatal("Apply reported no transition for first pageview")
	}
	if !s.IsActive {
		t.Error("new session not active")
	}
	if !s.StartTime.Equal(base) {
		t.Errorf("StartTime = %v, want %v", s.StartTime, base)
	}
	assertJourney(t, s, "/x")
	if s.CurrentPage != "/x" {
		t.Errorf("CurrentPage = %q, want /x", s.CurrentPage)
	}
	if tr.ActiveCount() != 1 {
		t.Errorf("ActiveCount = %d, want 1", tr.ActiveCount())
	}
}

func TestActivityAppendsToJourney(t *testing.T) {
	tr := NewTracker()
	tr.Apply(ev(event.Pageview, "A", "/x", base))
	tr.Apply(ev(event.Click, "A", "/y", base.Add(time.Second)))
	s, _ := tr.Apply(ev(event.Pageview, "A", "/y", base.Add(2*time.Second)))

	// Repeat visits are distinct journey steps.
	assertJourney(t, s, "/x", "/y", "/y")
	if s.CurrentPage != "/y" {
		t.Errorf("CurrentPage = %q, want /y", s.CurrentPage)
	}
	if s.CurrentPage != s.Journey[len(s.Journey)-1] {
		t.Error("CurrentPage does not equal last journey entry")
	}
	if !s.LastActivity.Equal(base.Add(2 * time.Second)) {
		t.Errorf("LastActivity = %v, want %v", s.LastActivity, base.Add(2*time.Second))
	}
}

func TestSessionEndThenReuseResetsJourney(t *testing.T) {
	tr := NewTracker()
	tr.Apply(ev(event.Pageview, "A", "/x", base))
	tr.Apply(ev(event.Click, "A", "/y", base.Add(time.Second)))

	ended, ok := tr.Apply(ev(event.SessionEnd, "A", "", base.Add(2*time.Second)))
	if !ok {
		t.Fatal("session_end on active session reported no transition")
	}
	if ended.IsActive {
		t.Error("session still active after session_end")
	}
	if ended.EndTime == nil || !ended.EndTime.Equal(base.Add(2*time.Second)) {
		t.Errorf("EndTime = %v, want %v", ended.EndTime, base.Add(2*time.Second))
	}
	if tr.ActiveCount() != 0 {
		t.Errorf("ActiveCount after end = %d, want 0", tr.ActiveCount())
	}

	// The ended record stays available for historical lookup.
	if _, ok := tr.Get("A"); !ok {
		t.Error("ended session not retrievable")
	}

	// New activity under the same id starts a fresh logical session.
	s, _ := tr.Apply(ev(event.Pageview, "A", "/z", base.Add(10*time.Second)))
	if !s.IsActive {
		t.Error("reused session not active")
	}
	assertJourney(t, s, "/z")
	if !s.StartTime.Equal(base.Add(10 * time.Second)) {
		t.Errorf("StartTime not reset: %v", s.StartTime)
	}
	if s.EndTime != nil {
		t.Errorf("EndTime not cleared on reuse: %v", s.EndTime)
	}

	// Still one ever-seen id.
	if tr.TotalSeen() != 1 {
		t.Errorf("TotalSeen = %d, want 1", tr.TotalSeen())
	}
}

func TestSessionEndWithoutSessionIsNoop(t *testing.T) {
	tr := NewTracker()
	if s, ok := tr.Apply(ev(event.SessionEnd, "ghost", "", base)); ok || s != nil {
		t.Errorf("session_end with no session transitioned: %v %v", s, ok)
	}

	// Same for an already-ended session.
	tr.Apply(ev(event.Pageview, "A", "/x", base))
	tr.Apply(ev(event.SessionEnd, "A", "", base.Add(time.Second)))
	if _, ok := tr.Apply(ev(event.SessionEnd, "A", "", base.Add(2*time.Second))); ok {
		t.Error("second session_end transitioned")
	}
}

func TestEmptyPageDefaultsToRoot(t *testing.T) {
	tr := NewTracker()
	s, _ := tr.Apply(ev(event.Pageview, "A", "", base))
	assertJourney(t, s, "/")
	if s.CurrentPage != "/" {
		t.Errorf("CurrentPage = %q, want /", s.CurrentPage)
	}
}

func TestMetadataMergeEventOverrides(t *testing.T) {
	tr := NewTracker()

	first := ev(event.Pageview, "A", "/x", base)
	first.Metadata = map[string]string{"device": "mobile", "referrer": "google.com"}
	tr.Apply(first)

	second := ev(event.Click, "A", "/y", base.Add(time.Second))
	second.Metadata = map[string]string{"device": "desktop"}
	s, _ := tr.Apply(second)

	if s.Metadata["device"] != "desktop" {
		t.Errorf("device = %q, want desktop (event overrides)", s.Metadata["device"])
	}
	if s.Metadata["referrer"] != "google.com" {
		t.Errorf("referrer = %q, want google.com (existing keys kept)", s.Metadata["referrer"])
	}
}

func TestDurationDerived(t *testing.T) {
	tr := NewTracker()
	tr.Apply(ev(event.Pageview, "A", "/x", base))
	ended, _ := tr.Apply(ev(event.SessionEnd, "A", "", base.Add(42*time.Second)))

	// Ended sessions measure to their end time, whatever "now" is.
	if d := ended.Duration(base.Add(time.Hour)); d != 42 {
		t.Errorf("ended duration = %d, want 42", d)
	}
	if d := ended.Duration(base.Add(24 * time.Hour)); d != 42 {
		t.Errorf("ended duration changed with time: %d", d)
	}

	// Active sessions measure to the reference time.
	active, _ := tr.Apply(ev(event.Pageview, "B", "/x", base))
	d1 := active.Duration(base.Add(5 * time.Second))
	d2 := active.Duration(base.Add(90 * time.Second))
	if d1 != 5 || d2 != 90 {
		t.Errorf("active durations = %d, %d, want 5, 90", d1, d2)
	}
	if d2 <= d1 {
		t.Error("active duration did not increase with time")
	}
}

func TestActiveOrderedByStart(t *testing.T) {
	tr := NewTracker()
	tr.Apply(ev(event.Pageview, "B", "/x", base.Add(time.Second)))
	tr.Apply(ev(event.Pageview, "A", "/x", base))
	tr.Apply(ev(event.Pageview, "C", "/x", base.Add(2*time.Second)))

	active := tr.Active()
	want := []string{"A", "B", "C"}
	if len(active) != 3 {
		t.Fatalf("Active returned %d sessions, want 3", len(active))
	}
	for i, id := range want {
		if active[i].ID != id {
			t.Errorf("Active[%d] = %q, want %q", i, active[i].ID, id)
		}
	}
}

func TestApplyReturnsSnapshot(t *testing.T) {
	tr := NewTracker()
	s, _ := tr.Apply(ev(event.Pageview, "A", "/x", base))
	s.Journey[0] = "/mutated"
	s.CurrentPage = "/mutated"

	got, _ := tr.Get("A")
	if got.Journey[0] != "/x" || got.CurrentPage != "/x" {
		t.Error("mutating returned snapshot leaked into tracker")
	}
}

func TestReset(t *testing.T) {
	tr := NewTracker()
	tr.Apply(ev(event.Pageview, "A", "/x", base))
	tr.Apply(ev(event.Pageview, "B", "/y", base))
	tr.Reset()

	if tr.TotalSeen() != 0 || tr.ActiveCount() != 0 {
		t.Errorf("after Reset: TotalSeen=%d ActiveCount=%d, want 0, 0", tr.TotalSeen(), tr.ActiveCount())
	}
	if _, ok := tr.Get("A"); ok {
		t.Error("session retrievable after Reset")
	}
}
