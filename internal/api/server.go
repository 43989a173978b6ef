package api

import (
	"time"

	"github.com/gorilla/mux"
	"github.com/visitor-pulse/backend/internal/analytics"
	"github.com/visitor-pulse/backend/internal/ingest"
	"github.com/visitor-pulse/backend/internal/store"
	"github.com/visitor-pulse/backend/internal/ws"
)

// Server is the HTTP transport in front of the core: it parses and
// completes inbound payloads, then hands validated submissions to the
// processor.
type Server struct {
	processor  *ingest.Processor
	aggregator *analytics.Aggregator
	hub        *ws.Hub
	wsServer   *ws.Server
	log        *store.EventLog
	started    time.Time
}

func NewServer(processor *ingest.Processor, aggregator *analytics.Aggregator, hub *ws.Hub, eventLog *store.EventLog) *Server {
	return &Server{
		processor:  processor,
		aggregator: aggregator,
		hub:        hub,
		wsServer:   ws.NewServer(hub),
		log:        eventLog,
		started:    time.Now(),
	}
}

// Router wires all API endpoints.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/events", s.handleSubmitEvent).Methods("POST")
	r.HandleFunc("/api/analytics/summary", s.handleSummary).Methods("GET")
	r.HandleFunc("/api/analytics/sessions", s.handleSessions).Methods("GET")
	r.HandleFunc("/api/analytics/clear", s.handleClear).Methods("POST")
	r.HandleFunc("/api/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/ws", s.wsServer.HandleWS)

	return r
}
