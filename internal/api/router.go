package api

import (
	"net/http"

	"fleet-dispatch-engine/internal/api/handlers"
	"fleet-dispatch-engine/internal/engine"
	"fleet-dispatch-engine/internal/platform/logging"
)

// NewRouter wires HTTP handlers to the Engine composition root and returns
// an http.Handler. This is the API composition root: handlers stay
// unaware of concrete agents, storage, or external adapters.
func NewRouter(eng *engine.Engine, log logging.Logger) http.Handler {
	if log == nil {
		log = logging.NopLogger{}
	}
	handlers.SetLogger(log)

	mux := http.NewServeMux()

	vehicleHandler := &handlers.VehicleHandler{Engine: eng}
	loadHandler := &handlers.LoadHandler{Engine: eng}
	eventHandler := &handlers.EventHandler{Engine: eng}
	dispatchHandler := &handlers.DispatchHandler{Engine: eng}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/vehicles", vehicleHandler.List)
	mux.HandleFunc("/loads", loadHandler.List)
	mux.HandleFunc("/cancel-load", loadHandler.Cancel)
	mux.HandleFunc("/events", eventHandler.List)
	mux.HandleFunc("/initialize", dispatchHandler.Initialize)
	mux.HandleFunc("/state", dispatchHandler.State)
	mux.HandleFunc("/metrics", dispatchHandler.Metrics)
	mux.HandleFunc("/cycle", dispatchHandler.Cycle)
	mux.HandleFunc("/match-loads", dispatchHandler.MatchLoads)
	mux.HandleFunc("/manage-routes", dispatchHandler.ManageRoutes)
	mux.HandleFunc("/simulate-movement", dispatchHandler.SimulateMovement)

	return loggingMiddleware(log)(mux)
}
