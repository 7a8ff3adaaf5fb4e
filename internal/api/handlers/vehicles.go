package handlers

import (
	"net/http"

	"fleet-dispatch-engine/internal/api/dto"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/engine"
)

type VehicleHandler struct {
	Engine *engine.Engine
}

// List serves GET /vehicles?status=. An empty or missing status returns
// the whole fleet.
func (h *VehicleHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := domain.VehicleStatus(r.URL.Query().Get("status"))
	vehicles := h.Engine.Vehicles(status)

	res := dto.ListVehicleResponse{Vehicles: make([]dto.VehicleResponse, 0, len(vehicles))}
	for _, v := range vehicles {
		res.Vehicles = append(res.Vehicles, dto.FromVehicle(v))
	}
	writeJSON(w, r, http.StatusOK, res)
}
