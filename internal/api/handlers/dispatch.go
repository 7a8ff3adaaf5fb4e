package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"fleet-dispatch-engine/internal/api/dto"
	"fleet-dispatch-engine/internal/engine"
)

// DispatchHandler serves the single-shot operations that drive the
// simulation from outside the Dispatch Loop's own cadences: initializing
// the fleet and running one pass of each agent on demand.
type DispatchHandler struct {
	Engine *engine.Engine
}

func decodeOnlyBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return io.ErrUnexpectedEOF
	}
	return nil
}

// Initialize serves POST /initialize.
func (h *DispatchHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.InitializeRequest
	if err := decodeOnlyBody(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if req.NumVehicles < 0 || req.NumLoads < 0 {
		writeError(w, r, http.StatusBadRequest, "num_vehicles and num_loads must be non-negative")
		return
	}

	vehicles, loads, err := h.Engine.Initialize(req.NumVehicles, req.NumLoads)
	if err != nil {
		log.Errorf("initialize failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.InitializeResponse{VehiclesCreated: vehicles, LoadsCreated: loads})
}

// State serves GET /state.
func (h *DispatchHandler) State(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromSnapshot(h.Engine.State()))
}

// Metrics serves GET /metrics.
func (h *DispatchHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromMetrics(h.Engine.Metrics()))
}

// Cycle serves POST /cycle: one Observer pass.
func (h *DispatchHandler) Cycle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	res := h.Engine.Cycle(r.Context())
	writeJSON(w, r, http.StatusOK, dto.FromCycleResult(res))
}

// MatchLoads serves POST /match-loads: one Matcher pass.
func (h *DispatchHandler) MatchLoads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	report, err := h.Engine.MatchLoads(r.Context())
	if err != nil {
		log.Errorf("match-loads failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromMatchReport(report))
}

// ManageRoutes serves POST /manage-routes: one Adapter pass.
func (h *DispatchHandler) ManageRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	decisions, err := h.Engine.ManageRoutes(r.Context())
	if err != nil {
		log.Errorf("manage-routes failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromAdapterDecisions(decisions))
}

// SimulateMovement serves POST /simulate-movement: one Motion tick plus the
// resulting Predictor output.
func (h *DispatchHandler) SimulateMovement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	predictions, err := h.Engine.SimulateMovement(r.Context())
	if err != nil {
		log.Errorf("simulate-movement failed: %v", err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromPredictions(predictions))
}
