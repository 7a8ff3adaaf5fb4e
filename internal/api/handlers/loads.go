package handlers

import (
	"net/http"

	"fleet-dispatch-engine/internal/api/dto"
	"fleet-dispatch-engine/internal/apperrors"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/engine"
)

type LoadHandler struct {
	Engine *engine.Engine
}

// List serves GET /loads?status=. An empty or missing status returns
// every load.
func (h *LoadHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := domain.LoadStatus(r.URL.Query().Get("status"))
	loads := h.Engine.Loads(status)

	res := dto.ListLoadResponse{Loads: make([]dto.LoadResponse, 0, len(loads))}
	for _, l := range loads {
		res.Loads = append(res.Loads, dto.FromLoad(l))
	}
	writeJSON(w, r, http.StatusOK, res)
}

// Cancel serves POST /cancel-load: cancels a load still available or
// matched, tearing down its trip and releasing its vehicle if one has
// already been committed.
func (h *LoadHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.CancelLoadRequest
	if err := decodeOnlyBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.LoadID == "" {
		writeError(w, r, http.StatusBadRequest, "load_id is required")
		return
	}

	evt, err := h.Engine.CancelLoad(req.LoadID)
	if err != nil {
		switch {
		case apperrors.Is(err, apperrors.KindNotFound):
			writeError(w, r, http.StatusNotFound, "load not found")
		case apperrors.Is(err, apperrors.KindConflict):
			writeError(w, r, http.StatusConflict, "load cannot be cancelled from its current status")
		default:
			log.Errorf("cancel-load failed: %v", err)
			writeError(w, r, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	payload := evt.Payload.(domain.LoadCancelledPayload)
	writeJSON(w, r, http.StatusOK, dto.CancelLoadResponse{LoadID: payload.LoadID, Status: string(domain.LoadCancelled)})
}
