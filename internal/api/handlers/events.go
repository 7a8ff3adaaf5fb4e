package handlers

import (
	"net/http"
	"strconv"

	"fleet-dispatch-engine/internal/api/dto"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/engine"
)

type EventHandler struct {
	Engine *engine.Engine
}

// List serves GET /events?limit=&event_type=, newest first. limit 0 or
// absent means no cap; a negative or non-numeric limit is a 400.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, r, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	eventType := domain.EventType(r.URL.Query().Get("event_type"))
	events := h.Engine.Events(limit, eventType)

	res := dto.ListEventResponse{Events: make([]dto.EventResponse, 0, len(events))}
	for _, e := range events {
		res.Events = append(res.Events, dto.FromEvent(e))
	}
	writeJSON(w, r, http.StatusOK, res)
}
