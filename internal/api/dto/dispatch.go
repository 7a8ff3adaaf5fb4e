package dto

import (
	"time"

	"fleet-dispatch-engine/internal/adapter"
	"fleet-dispatch-engine/internal/engine"
	"fleet-dispatch-engine/internal/matcher"
	"fleet-dispatch-engine/internal/observer"
	"fleet-dispatch-engine/internal/predictor"
)

type InitializeRequest struct {
	NumVehicles int `json:"num_vehicles"`
	NumLoads    int `json:"num_loads"`
}

type InitializeResponse struct {
	VehiclesCreated int `json:"vehicles_created"`
	LoadsCreated    int `json:"loads_created"`
}

type MetricsResponse struct {
	TotalVehicles     int     `json:"total_vehicles"`
	AvailableVehicles int     `json:"available_vehicles"`
	IdleVehicles      int     `json:"idle_vehicles"`
	EnRouteVehicles   int     `json:"en_route_vehicles"`
	TotalLoads        int     `json:"total_loads"`
	AvailableLoads    int     `json:"available_loads"`
	MatchedLoads      int     `json:"matched_loads"`
	InTransitLoads    int     `json:"in_transit_loads"`
	AvgUtilization    float64 `json:"avg_utilization"`
	TotalKmToday      float64 `json:"total_km_today"`
}

func FromMetrics(m engine.Metrics) MetricsResponse {
	return MetricsResponse{
		TotalVehicles:     m.TotalVehicles,
		AvailableVehicles: m.AvailableVehicles,
		IdleVehicles:      m.IdleVehicles,
		EnRouteVehicles:   m.EnRouteVehicles,
		TotalLoads:        m.TotalLoads,
		AvailableLoads:    m.AvailableLoads,
		MatchedLoads:      m.MatchedLoads,
		InTransitLoads:    m.InTransitLoads,
		AvgUtilization:    m.AvgUtilization,
		TotalKmToday:      m.TotalKmToday,
	}
}

type CycleResponse struct {
	EventsEmitted int `json:"events_emitted"`
	NewLoads      int `json:"new_loads"`
	Triggers      []string `json:"triggers"`
}

func FromCycleResult(r observer.Result) CycleResponse {
	triggers := make([]string, 0, len(r.Triggers))
	for _, t := range r.Triggers {
		triggers = append(triggers, string(t))
	}
	return CycleResponse{
		EventsEmitted: len(r.Events),
		NewLoads:      len(r.NewLoads),
		Triggers:      triggers,
	}
}

type MatchResponse struct {
	OpportunitiesAnalyzed int      `json:"opportunities_analyzed"`
	MatchesCreated        int      `json:"matches_created"`
	ApprovedMatches       []string `json:"approved_matches"`
	AdvisorReasoning      string   `json:"advisor_reasoning"`
}

func FromMatchReport(r matcher.Report) MatchResponse {
	pairs := make([]string, 0, len(r.ApprovedMatches))
	for _, f := range r.ApprovedMatches {
		pairs = append(pairs, f.VehicleID+" -> "+f.LoadID)
	}
	return MatchResponse{
		OpportunitiesAnalyzed: r.OpportunitiesAnalyzed,
		MatchesCreated:        r.MatchesCreated,
		ApprovedMatches:       pairs,
		AdvisorReasoning:      r.AdvisorReasoning,
	}
}

type RouteDecisionResponse struct {
	TripID    string `json:"trip_id"`
	VehicleID string `json:"vehicle_id"`
	Decision  string `json:"decision"`
	Changed   bool   `json:"changed"`
}

type ManageRoutesResponse struct {
	Decisions []RouteDecisionResponse `json:"decisions"`
}

func FromAdapterDecisions(decisions []adapter.Decision) ManageRoutesResponse {
	out := make([]RouteDecisionResponse, 0, len(decisions))
	for _, d := range decisions {
		out = append(out, RouteDecisionResponse{
			TripID: d.TripID, VehicleID: d.VehicleID, Decision: string(d.Decision), Changed: d.Changed,
		})
	}
	return ManageRoutesResponse{Decisions: out}
}

type PredictionResponse struct {
	TripID               string    `json:"trip_id"`
	VehicleID            string    `json:"vehicle_id"`
	LoadID               string    `json:"load_id"`
	RemainingKm          float64   `json:"remaining_km"`
	CurrentSpeedKmh      float64   `json:"current_speed_kmh"`
	ETA                  time.Time `json:"eta"`
	ETASeconds           float64   `json:"eta_seconds"`
	FuelPercentAtArrival float64   `json:"fuel_percent_at_arrival"`
	OnTime               string    `json:"on_time"`
	Advisories           []string  `json:"advisories"`
}

type SimulateMovementResponse struct {
	Predictions []PredictionResponse `json:"predictions"`
}

func FromPredictions(predictions []predictor.Prediction) SimulateMovementResponse {
	out := make([]PredictionResponse, 0, len(predictions))
	for _, p := range predictions {
		advisories := make([]string, 0, len(p.Advisories))
		for _, a := range p.Advisories {
			advisories = append(advisories, string(a))
		}
		out = append(out, PredictionResponse{
			TripID:               p.TripID,
			VehicleID:            p.VehicleID,
			LoadID:               p.LoadID,
			RemainingKm:          p.RemainingKm,
			CurrentSpeedKmh:      p.CurrentSpeedKmh,
			ETA:                  p.ETA,
			ETASeconds:           p.ETASeconds,
			FuelPercentAtArrival: p.FuelPercentAtArrival,
			OnTime:               string(p.OnTime),
			Advisories:           advisories,
		})
	}
	return SimulateMovementResponse{Predictions: out}
}
