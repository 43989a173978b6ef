package ws

import (
	"time"

	"github.com/visitor-pulse/backend/internal/event"
)

// MessageType discriminates outbound hub messages.
type MessageType string

const (
	MsgExistingEvents   MessageType = "existing_events"
	MsgUserConnected    MessageType = "user_connected"
	MsgUserDisconnected MessageType = "user_disconnected"
	MsgVisitorUpdate    MessageType = "visitor_update"
	MsgSessionActivity  MessageType = "session_activity"
	MsgAlert            MessageType = "alert"
	MsgFilteredEvents   MessageType = "filtered_events"
	MsgFiltersRemoved   MessageType = "filters_removed"
	MsgAnalyticsCleared MessageType = "analytics_cleared"
	MsgDetailedStats    MessageType = "detailed_stats"
	MsgActionTracked    MessageType = "action_tracked"
)

type Message struct {
	Type MessageType `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type AlertLevel string

const (
	AlertInfo      AlertLevel = "info"
	AlertWarning   AlertLevel = "warning"
	AlertMilestone AlertLevel = "milestone"
)

type ExistingEventsPayload struct {
	Events []*event.VisitorEvent `json:"events"`
}

type ConnectedPayload struct {
	TotalDashboards int       `json:"totalDashboards"`
	ConnectedAt     time.Time `json:"connectedAt"`
}

type DisconnectedPayload struct {
	TotalDashboards int `json:"totalDashboards"`
}

// LiveStats is the stats snapshot attached to every visitor_update.
type LiveStats struct {
	TotalActive  int            `json:"totalActive"`
	TotalToday   int            `json:"totalToday"`
	PagesVisited map[string]int `json:"pagesVisited"`
}

type VisitorUpdatePayload struct {
	Event *event.VisitorEvent `json:"event"`
	Stats LiveStats           `json:"stats"`
}

type SessionActivityPayload struct {
	SessionID   string   `json:"sessionId"`
	CurrentPage string   `json:"currentPage"`
	Journey     []string `json:"journey"`
	Duration    int64    `json:"duration"`
	IsActive    bool     `json:"isActive"`
}

type AlertPayload struct {
	Level   AlertLevel             `json:"level"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// AppliedFilter echoes a dashboard-applied filter back with its match count.
type AppliedFilter struct {
	Type       string `json:"type"`
	Value      string `json:"value"`
	TotalFound int    `json:"totalFound"`
}

type FilteredEventsPayload struct {
	Events []*event.VisitorEvent `json:"events"`
	Filter *AppliedFilter        `json:"filter,omitempty"`
}

type FiltersRemovedPayload struct {
	Message string `json:"message"`
}

type AnalyticsClearedPayload struct {
	TotalDashboards int `json:"totalDashboards"`
}

type DetailedStatsPayload struct {
	Events      []*event.VisitorEvent `json:"events"`
	TotalEvents int                   `json:"totalEvents"`
	Filter      *EventFilter          `json:"filter,omitempty"`
}

type ActionTrackedPayload struct {
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Inbound client message kinds. Anything else is reported as an unknown
// kind via a warning alert.
const (
	clientRequestDetailedStats = "request_detailed_stats"
	clientTrackDashboardAction = "track_dashboard_action"
	clientFilterEvents         = "filter_events"
)

// Dashboard action names carried by track_dashboard_action.
const (
	actionFilterApplied = "filter_applied"
	actionRemoveFilters = "remove_filters"
)

// EventFilter is a conjunction of optional equality predicates over the
// event log. An empty field means no constraint on that field.
type EventFilter struct {
	Country string `json:"country,omitempty"`
	Page    string `json:"page,omitempty"`
}

type ActionDetails struct {
	FilterType string `json:"filterType"`
	Value      string `json:"value"`
}

type clientMessage struct {
	Type    string         `json:"type"`
	Filter  *EventFilter   `json:"filter,omitempty"`
	Action  string         `json:"action,omitempty"`
	Details *ActionDetails `json:"details,omitempty"`
	Country string         `json:"country,omitempty"`
	Page    string         `json:"page,omitempty"`
}
