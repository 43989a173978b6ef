package ws

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/visitor-pulse/backend/internal/event"
	"github.com/visitor-pulse/backend/internal/session"
	"github.com/visitor-pulse/backend/internal/store"
)

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func (c *client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			c.hub.RemoveClient(c)
			return
		}
	}
}

// trySend queues data without blocking. Reports false when the client's
// buffer is full.
func (c *client) trySend(data []byte) bool {
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// Hub maintains the registry of connected dashboard clients and delivers
// typed messages to all of them, all but one, or a single client. A slow
// client never stalls delivery to others: sends go through per-client
// buffered channels and clients that cannot keep up are dropped.
type Hub struct {
	mu          sync.RWMutex
	clients     map[*client]bool
	log         *store.EventLog
	replayCount int
	retryDelay  time.Duration
	now         func() time.Time
}

func NewHub(log *store.EventLog, replayCount int, retryDelay time.Duration) *Hub {
	return &Hub{
		clients:     make(map[*client]bool),
		log:         log,
		replayCount: replayCount,
		retryDelay:  retryDelay,
		now:         time.Now,
	}
}

// AddClient registers a new dashboard connection: the client receives the
// recent event replay and a user_connected greeting, and every other client
// is notified of the updated dashboard count.
func (h *Hub) AddClient(conn *websocket.Conn) *client {
	c := &client{hub: h, conn: conn, send: make(chan []byte, 64)}
	go c.writePump()

	h.mu.Lock()
	h.clients[c] = true
	total := len(h.clients)
	h.mu.Unlock()

	if recent := h.log.Recent(h.replayCount); len(recent) > 0 {
		h.sendTo(c, Message{Type: MsgExistingEvents, Data: ExistingEventsPayload{Events: recent}})
	}

	greeting := Message{Type: MsgUserConnected, Data: ConnectedPayload{
		TotalDashboards: total,
		ConnectedAt:     h.now(),
	}}
	h.sendWithRetry(c, greeting)
	h.broadcast(greeting, c)

	return c
}

// RemoveClient deregisters a client and notifies the remaining dashboards.
// Safe to call more than once for the same client.
func (h *Hub) RemoveClient(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	remaining := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	h.BroadcastAll(Message{Type: MsgUserDisconnected, Data: DisconnectedPayload{TotalDashboards: remaining}})
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) BroadcastAll(msg Message) {
	h.broadcast(msg, nil)
}

func (h *Hub) broadcast(msg Message, except *client) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("broadcast marshal error: %v", err)
		return
	}

	h.mu.RLock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		if c != except {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(data) {
			log.Printf("ws client too slow, disconnecting")
			h.RemoveClient(c)
		}
	}
}

// sendTo delivers a message to a single client.
func (h *Hub) sendTo(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("send marshal error: %v", err)
		return
	}
	if !c.trySend(data) {
		log.Printf("ws client too slow, dropping %s", msg.Type)
	}
}

// sendWithRetry tries to deliver once, and if the client cannot take the
// message yet retries once after a short fixed delay, then gives up
// silently.
func (h *Hub) sendWithRetry(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("send marshal error: %v", err)
		return
	}
	if c.trySend(data) {
		return
	}
	time.AfterFunc(h.retryDelay, func() {
		h.mu.RLock()
		registered := h.clients[c]
		h.mu.RUnlock()
		if registered {
			c.trySend(data)
		}
	})
}

// BroadcastAlert pushes an alert to every connected dashboard.
func (h *Hub) BroadcastAlert(level AlertLevel, message string, details map[string]interface{}) {
	h.BroadcastAll(Message{Type: MsgAlert, Data: AlertPayload{
		Level:   level,
		Message: message,
		Details: details,
	}})
}

// BroadcastVisitorUpdate pushes an accepted event with a live stats
// snapshot to every connected dashboard.
func (h *Hub) BroadcastVisitorUpdate(ev *event.VisitorEvent, stats LiveStats) {
	h.BroadcastAll(Message{Type: MsgVisitorUpdate, Data: VisitorUpdatePayload{
		Event: ev,
		Stats: stats,
	}})
}

// BroadcastSessionActivity announces a session state transition.
func (h *Hub) BroadcastSessionActivity(s *session.Session, duration int64) {
	h.BroadcastAll(Message{Type: MsgSessionActivity, Data: SessionActivityPayload{
		SessionID:   s.ID,
		CurrentPage: s.CurrentPage,
		Journey:     s.Journey,
		Duration:    duration,
		IsActive:    s.IsActive,
	}})
}

func (h *Hub) BroadcastAnalyticsCleared() {
	h.BroadcastAll(Message{Type: MsgAnalyticsCleared, Data: AnalyticsClearedPayload{
		TotalDashboards: h.ClientCount(),
	}})
}
