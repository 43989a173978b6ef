package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/visitor-pulse/backend/internal/ingest"
)

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) handleSubmitEvent(w http.ResponseWriter, r *http.Request) {
	var sub ingest.Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"status":  "error",
			"message": "invalid JSON body: " + err.Error(),
		})
		return
	}

	// Some clients tuck page and sessionId into metadata; accept both
	// placements.
	if sub.Page == "" {
		sub.Page = sub.Metadata["page"]
	}
	if sub.SessionID == "" {
		sub.SessionID = sub.Metadata["sessionId"]
	}
	// The core assumes a sessionId is always present; synthesize one here
	// when the client sent none.
	if sub.SessionID == "" {
		sub.SessionID = uuid.NewString()
	}

	ev, err := s.processor.Submit(sub)
	if err != nil {
		var verr *ingest.ValidationError
		if errors.As(err, &verr) {
			respondJSON(w, http.StatusBadRequest, map[string]interface{}{
				"status":  "error",
				"message": verr.Message,
				"field":   verr.Field,
			})
			return
		}
		respondJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"status":  "error",
			"message": "internal error processing event",
		})
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"status":   "success",
		"received": ev,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   s.aggregator.Summary(),
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "success",
		"data":   s.aggregator.ActiveSessions(),
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.processor.ClearAnalytics()
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":              "success",
		"message":             "analytics cleared",
		"connectedDashboards": s.hub.ClientCount(),
	})
}
