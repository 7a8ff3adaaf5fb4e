package dto

import (
	"time"

	"fleet-dispatch-engine/internal/domain"
)

type TripResponse struct {
	TripID         string    `json:"trip_id"`
	VehicleID      string    `json:"vehicle_id"`
	LoadID         string    `json:"load_id"`
	Phase          string    `json:"phase"`
	RouteTotalKm   float64   `json:"route_total_km"`
	Progress       float64   `json:"progress"`
	Revenue        float64   `json:"revenue"`
	FuelCost       float64   `json:"fuel_cost"`
	NetProfit      float64   `json:"net_profit"`
	StartedAt      time.Time `json:"started_at"`
	FollowupLoadID string    `json:"followup_load_id,omitempty"`
	DelaySeconds   float64   `json:"delay_seconds"`
}

func fromTrip(t domain.Trip) TripResponse {
	return TripResponse{
		TripID: t.TripID, VehicleID: t.VehicleID, LoadID: t.LoadID,
		Phase: string(t.Phase), RouteTotalKm: t.RouteTotalKm, Progress: t.Progress,
		Revenue: t.Revenue, FuelCost: t.FuelCost, NetProfit: t.NetProfit,
		StartedAt:      t.StartedAt,
		FollowupLoadID: t.FollowupLoadID, DelaySeconds: t.DelaySeconds,
	}
}

// StateResponse is the full Snapshot shape served by /state.
type StateResponse struct {
	SnapshotAt time.Time                  `json:"snapshot_at"`
	Vehicles   map[string]VehicleResponse `json:"vehicles"`
	Loads      map[string]LoadResponse    `json:"loads"`
	Trips      map[string]TripResponse    `json:"trips"`
	Events     []EventResponse            `json:"events"`
}

func FromSnapshot(s domain.Snapshot) StateResponse {
	vehicles := make(map[string]VehicleResponse, len(s.Vehicles))
	for id, v := range s.Vehicles {
		vehicles[id] = FromVehicle(v)
	}
	loads := make(map[string]LoadResponse, len(s.Loads))
	for id, l := range s.Loads {
		loads[id] = FromLoad(l)
	}
	trips := make(map[string]TripResponse, len(s.Trips))
	for id, t := range s.Trips {
		trips[id] = fromTrip(t)
	}
	events := make([]EventResponse, 0, len(s.Events))
	for _, e := range s.Events {
		events = append(events, FromEvent(e))
	}

	return StateResponse{
		SnapshotAt: s.SnapshotAt, Vehicles: vehicles, Loads: loads, Trips: trips, Events: events,
	}
}
