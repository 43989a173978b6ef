package ws

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// Server owns the WebSocket endpoint that feeds connections into the hub.
type Server struct {
	hub *Hub
}

func NewServer(hub *Hub) *Server {
	return &Server{hub: hub}
}

// HandleWS upgrades the request and runs the connection's read loop.
// Teardown is driven by the transport: a read error of any kind
// deregisters the client.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		// Dashboards are served from a separate origin and the hub
		// carries no credentials, so cross-origin upgrades are accepted.
		CheckOrigin: func(*http.Request) bool { return true },
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	log.Printf("Dashboard connected: %s", r.RemoteAddr)
	c := s.hub.AddClient(conn)

	go func() {
		defer func() {
			s.hub.RemoveClient(c)
			log.Printf("Dashboard disconnected: %s", r.RemoteAddr)
		}()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			s.hub.HandleMessage(c, raw)
		}
	}()
}
