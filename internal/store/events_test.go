package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/visitor-pulse/backend/internal/event"
)

func makeEvent(id, country, page string) *event.VisitorEvent {
	return &event.VisitorEvent{
		ID:        id,
		Type:      event.Pageview,
		Country:   country,
		Page:      page,
		Timestamp: time.Now(),
		SessionID: "s-" + id,
	}
}

// assertEventIDs checks that the result slice contains exactly the expected
// event IDs, in order.
func assertEventIDs(t *testing.T, result []*event.VisitorEvent, expected ...string) {
	t.Helper()
	if len(result) != len(expected) {
		t.Fatalf("expected %d events, got %d", len(expected), len(result))
	}
	for i, id := range expected {
		if result[i].ID != id {
			t.Errorf("result[%d]: expected %s, got %s", i, id, result[i].ID)
		}
	}
}

func TestAppendEvictsOldestFirst(t *testing.T) {
	l := NewEventLog(3)
	for i := 1; i <= 5; i++ {
		l.Append(makeEvent(fmt.Sprintf("e%d", i), "US", "/"))
	}

	if l.Len() != 3 {
		t.Fatalf("Len = %d, want 3", l.Len())
	}
	assertEventIDs(t, l.All(), "e3", "e4", "e5")
}

func TestLogNeverExceedsMax(t *testing.T) {
	const max = 10
	l := NewEventLog(max)
	for i := 0; i < 3*max; i++ {
		l.Append(makeEvent(fmt.Sprintf("e%d", i), "US", "/"))
		if l.Len() > max {
			t.Fatalf("log grew to %d events after %d appends, max is %d", l.Len(), i+1, max)
		}
	}
}

func TestRecent(t *testing.T) {
	l := NewEventLog(100)
	for i := 1; i <= 5; i++ {
		l.Append(makeEvent(fmt.Sprintf("e%d", i), "US", "/"))
	}

	assertEventIDs(t, l.Recent(2), "e4", "e5")
	assertEventIDs(t, l.Recent(5), "e1", "e2", "e3", "e4", "e5")

	// Asking for more than stored returns everything.
	assertEventIDs(t, l.Recent(50), "e1", "e2", "e3", "e4", "e5")

	if got := l.Recent(0); len(got) != 0 {
		t.Errorf("Recent(0) returned %d events, want 0", len(got))
	}
}

func TestAllReturnsCopy(t *testing.T) {
	l := NewEventLog(10)
	l.Append(makeEvent("e1", "US", "/"))

	all := l.All()
	all[0] = makeEvent("mutated", "XX", "/x")

	if got := l.All()[0].ID; got != "e1" {
		t.Errorf("mutating returned slice leaked into log: got %q", got)
	}
}

func TestFilter(t *testing.T) {
	l := NewEventLog(100)
	l.Append(makeEvent("e1", "India", "/products"))
	l.Append(makeEvent("e2", "USA", "/products"))
	l.Append(makeEvent("e3", "India", "/about"))
	l.Append(makeEvent("e4", "UK", "/"))

	tests := []struct {
		name    string
		country string
		page    string
		wantIDs []string
	}{
		{"CountryOnly", "India", "", []string{"e1", "e3"}},
		{"PageOnly", "", "/products", []string{"e1", "e2"}},
		{"Conjunction", "India", "/products", []string{"e1"}},
		{"NoConstraint", "", "", []string{"e1", "e2", "e3", "e4"}},
		{"AbsentCountry", "Brazil", "", nil},
		{"AbsentPage", "", "/missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEventIDs(t, l.Filter(tt.country, tt.page), tt.wantIDs...)
		})
	}
}

func TestCountriesAndPagesFirstSeenOrder(t *testing.T) {
	l := NewEventLog(100)
	l.Append(makeEvent("e1", "India", "/b"))
	l.Append(makeEvent("e2", "USA", "/a"))
	l.Append(makeEvent("e3", "India", "/a"))
	l.Append(makeEvent("e4", "UK", "/b"))

	countries := l.Countries()
	wantCountries := []string{"India", "USA", "UK"}
	if len(countries) != len(wantCountries) {
		t.Fatalf("Countries() = %v, want %v", countries, wantCountries)
	}
	for i, c := range wantCountries {
		if countries[i] != c {
			t.Errorf("Countries()[%d] = %q, want %q", i, countries[i], c)
		}
	}

	pages := l.Pages()
	wantPages := []string{"/b", "/a"}
	if len(pages) != len(wantPages) {
		t.Fatalf("Pages() = %v, want %v", pages, wantPages)
	}
	for i, p := range wantPages {
		if pages[i] != p {
			t.Errorf("Pages()[%d] = %q, want %q", i, pages[i], p)
		}
	}
}

func TestCountSince(t *testing.T) {
	l := NewEventLog(100)
	now := time.Now()

	old := makeEvent("old", "US", "/")
	old.Timestamp = now.Add(-2 * time.Hour)
	l.Append(old)

	for i := 0; i < 3; i++ {
		ev := makeEvent(fmt.Sprintf("fresh%d", i), "US", "/")
		ev.Timestamp = now.Add(-time.Duration(i) * time.Second)
		l.Append(ev)
	}

	if got := l.CountSince(now.Add(-time.Minute)); got != 3 {
		t.Errorf("CountSince(-1m) = %d, want 3", got)
	}
	if got := l.CountSince(now.Add(-3 * time.Hour)); got != 4 {
		t.Errorf("CountSince(-3h) = %d, want 4", got)
	}
}
