package analytics

import (
	"sort"
	"time"

	"github.com/visitor-pulse/backend/internal/session"
	"github.com/visitor-pulse/backend/internal/store"
)

const (
	topCountriesLimit = 5
	topPagesLimit     = 10
)

// CountryCount pairs a country with its event count.
type CountryCount struct {
	Country string `json:"country"`
	Count   int    `json:"count"`
}

// Summary is the read-side snapshot of current analytics state.
type Summary struct {
	TotalVisitors  int               `json:"totalVisitors"`
	ActiveSessions int               `json:"activeSessions"`
	RecentEvents   int               `json:"recentEvents"`
	TopCountries   []CountryCount    `json:"topCountries"`
	TopPages       []store.PageCount `json:"topPages"`
}

// SessionSummary is one active session with its derived fields.
type SessionSummary struct {
	ID            string    `json:"id"`
	Country       string    `json:"country"`
	CurrentPage   string    `json:"currentPage"`
	Journey       []string  `json:"journey"`
	JourneyLength int       `json:"journeyLength"`
	Duration      int64     `json:"duration"`
	StartTime     time.Time `json:"startTime"`
	LastActivity  time.Time `json:"lastActivity"`
}

// Aggregator computes summary statistics on demand from the event log,
// page counters and session tracker. It holds no state of its own.
type Aggregator struct {
	log          *store.EventLog
	pages        *store.PageCounter
	tracker      *session.Tracker
	recentWindow time.Duration
	now          func() time.Time
}

func New(log *store.EventLog, pages *store.PageCounter, tracker *session.Tracker, recentWindow time.Duration) *Aggregator {
	return &Aggregator{
		log:          log,
		pages:        pages,
		tracker:      tracker,
		recentWindow: recentWindow,
		now:          time.Now,
	}
}

func (a *Aggregator) Summary() Summary {
	now := a.now()
	return Summary{
		TotalVisitors:  a.tracker.TotalSeen(),
		ActiveSessions: a.tracker.ActiveCount(),
		RecentEvents:   a.log.CountSince(now.Add(-a.recentWindow)),
		TopCountries:   a.topCountries(),
		TopPages:       a.pages.Top(topPagesLimit),
	}
}

// topCountries ranks countries by event count descending over the current
// log. Ties keep first-seen order.
func (a *Aggregator) topCountries() []CountryCount {
	counts := make(map[string]int)
	var order []string
	for _, ev := range a.log.All() {
		if ev.Country == "" {
			continue
		}
		if _, ok := counts[ev.Country]; !ok {
			order = append(order, ev.Country)
		}
		counts[ev.Country]++
	}

	out := make([]CountryCount, 0, len(order))
	for _, c := range order {
		out = append(out, CountryCount{Country: c, Count: counts[c]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > topCountriesLimit {
		out = out[:topCountriesLimit]
	}
	return out
}

// ActiveSessions lists all active sessions with their derived duration and
// journey details.
func (a *Aggregator) ActiveSessions() []SessionSummary {
	now := a.now()
	active := a.tracker.Active()
	out := make([]SessionSummary, 0, len(active))
	for _, s := range active {
		out = append(out, SessionSummary{
			ID:            s.ID,
			Country:       s.Country,
			CurrentPage:   s.CurrentPage,
			Journey:       s.Journey,
			JourneyLength: len(s.Journey),
			Duration:      s.Duration(now),
			StartTime:     s.StartTime,
			LastActivity:  s.LastActivity,
		})
	}
	return out
}
