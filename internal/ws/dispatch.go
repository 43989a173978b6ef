package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/visitor-pulse/backend/internal/event"
)

// HandleMessage dispatches one inbound dashboard message. Nothing a client
// sends is fatal: parse failures, unknown kinds and invalid filters all
// surface as warning alerts while the connection stays up, and a panic in
// a handler is recovered at this boundary.
func (h *Hub) HandleMessage(c *client, raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ws message handler panic: %v", r)
			h.BroadcastAlert(AlertWarning, "Error processing WebSocket message. Please try again.", map[string]interface{}{
				"error": fmt.Sprint(r),
			})
		}
	}()

	var msg clientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.BroadcastAlert(AlertWarning, "Error processing WebSocket message. Invalid JSON format.", map[string]interface{}{
			"error":      err.Error(),
			"rawMessage": string(raw),
		})
		return
	}

	switch msg.Type {
	case clientRequestDetailedStats:
		h.handleDetailedStats(c, msg.Filter)
	case clientTrackDashboardAction:
		h.handleDashboardAction(c, msg.Action, msg.Details)
	case clientFilterEvents:
		h.handleFilterEvents(c, EventFilter{Country: msg.Country, Page: msg.Page})
	default:
		h.BroadcastAlert(AlertWarning, fmt.Sprintf("Unknown message type: %s", msg.Type), map[string]interface{}{
			"unknownType": msg.Type,
			"rawMessage":  string(raw),
		})
	}
}

// validateFilter checks the filter values against the countries and pages
// currently observed in the event log. An invalid value is announced to all
// dashboards as a warning naming the valid alternatives.
func (h *Hub) validateFilter(f EventFilter) bool {
	if f.Country != "" {
		available := h.log.Countries()
		if !contains(available, f.Country) {
			h.BroadcastAlert(AlertWarning,
				fmt.Sprintf("Invalid country filter: %q. Available countries: %s", f.Country, strings.Join(available, ", ")),
				map[string]interface{}{
					"invalidFilter":   "country",
					"providedValue":   f.Country,
					"availableValues": available,
				})
			return false
		}
	}
	if f.Page != "" {
		available := h.log.Pages()
		if !contains(available, f.Page) {
			h.BroadcastAlert(AlertWarning,
				fmt.Sprintf("Invalid page filter: %q. Available pages: %s", f.Page, strings.Join(available, ", ")),
				map[string]interface{}{
					"invalidFilter":   "page",
					"providedValue":   f.Page,
					"availableValues": available,
				})
			return false
		}
	}
	return true
}

func (h *Hub) handleDetailedStats(c *client, filter *EventFilter) {
	f := EventFilter{}
	if filter != nil {
		f = *filter
	}
	if !h.validateFilter(f) {
		return
	}

	matches := h.log.Filter(f.Country, f.Page)
	h.sendTo(c, Message{Type: MsgDetailedStats, Data: DetailedStatsPayload{
		Events:      tail(matches, h.replayCount),
		TotalEvents: len(matches),
		Filter:      filter,
	}})
}

func (h *Hub) handleFilterEvents(c *client, f EventFilter) {
	if !h.validateFilter(f) {
		return
	}

	matches := h.log.Filter(f.Country, f.Page)
	h.sendTo(c, Message{Type: MsgFilteredEvents, Data: FilteredEventsPayload{
		Events: tail(matches, h.replayCount),
	}})

	if f.Country == "" && f.Page == "" {
		return
	}
	var parts []string
	if f.Country != "" {
		parts = append(parts, "country: "+f.Country)
	}
	if f.Page != "" {
		parts = append(parts, "page: "+f.Page)
	}
	h.BroadcastAlert(AlertInfo,
		fmt.Sprintf("Filter applied: %s. Found %d events.", strings.Join(parts, ", "), len(matches)),
		map[string]interface{}{
			"appliedFilters": f,
			"filteredCount":  len(matches),
			"totalEvents":    h.log.Len(),
		})
}

func (h *Hub) handleDashboardAction(c *client, action string, details *ActionDetails) {
	switch action {
	case actionFilterApplied:
		h.handleFilterApplied(details)
	case actionRemoveFilters:
		h.BroadcastAll(Message{Type: MsgFiltersRemoved, Data: FiltersRemovedPayload{
			Message: "All filters have been removed",
		}})
		h.BroadcastAlert(AlertInfo, "All filters have been removed. Showing all events.", map[string]interface{}{
			"action": actionRemoveFilters,
		})
	default:
		h.sendTo(c, Message{Type: MsgActionTracked, Data: ActionTrackedPayload{
			Action:    action,
			Timestamp: h.now(),
		}})
	}
}

func (h *Hub) handleFilterApplied(details *ActionDetails) {
	var filterType, value string
	if details != nil {
		filterType = details.FilterType
		value = details.Value
	}

	var f EventFilter
	switch filterType {
	case "country":
		f.Country = value
	case "page":
		f.Page = value
	default:
		h.BroadcastAlert(AlertWarning,
			fmt.Sprintf("Invalid filter type: %q. Supported types: country, page", filterType),
			map[string]interface{}{
				"invalidFilter": filterType,
				"providedValue": value,
			})
		return
	}
	if !h.validateFilter(f) {
		return
	}

	matches := h.log.Filter(f.Country, f.Page)
	h.BroadcastAll(Message{Type: MsgFilteredEvents, Data: FilteredEventsPayload{
		Events: tail(matches, h.replayCount),
		Filter: &AppliedFilter{Type: filterType, Value: value, TotalFound: len(matches)},
	}})
	h.BroadcastAlert(AlertInfo,
		fmt.Sprintf("Filter applied: %s = %q. Found %d events.", filterType, value, len(matches)),
		map[string]interface{}{
			"appliedFilter": map[string]string{"type": filterType, "value": value},
			"filteredCount": len(matches),
			"totalEvents":   h.log.Len(),
		})
}

func tail(events []*event.VisitorEvent, k int) []*event.VisitorEvent {
	if len(events) > k {
		return events[len(events)-k:]
	}
	return events
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
