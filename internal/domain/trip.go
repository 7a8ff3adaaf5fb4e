package domain

import "time"

// Trip tracks one vehicle-load assignment from planning through completion.
// Invariants: Progress is monotone non-decreasing within a trip; Phase
// transitions follow the order planning -> en_route_to_pickup -> loading ->
// in_transit -> unloading -> completed (or -> cancelled); completion emits
// trip_completed and returns the vehicle to idle, unless FollowupLoadID is
// set, in which case the vehicle transitions into a new trip's planning
// phase. completed/cancelled trips are removed from the store rather than
// kept around with a terminal phase, so there is no CompletedAt field to
// read back — the trip_completed event is the only record of completion.
type Trip struct {
	TripID         string
	VehicleID      string
	LoadID         string
	Phase          TripPhase
	Route          Polyline
	RouteTotalKm   float64
	Progress       float64 // percent, [0, 100]
	EmptyLegKm     float64
	LoadedLegKm    float64
	Revenue        float64
	FuelCost       float64
	NetProfit      float64
	StartedAt      time.Time
	FollowupLoadID string
	// DelaySeconds accumulates time lost to traffic and adaptation decisions;
	// consumed by the Predictor's ETA calculation.
	DelaySeconds float64
	// RouteBaseKm is how many km of RouteTotalKm precede Route's first point.
	// It is 0 while Route spans the trip from its original fetch; a
	// route-cache invalidation (adapter ADJUST_ROUTE) that replaces only the
	// remaining leg advances it to the km already driven, so Progress keeps
	// meaning "percent of RouteTotalKm" without re-basing to 0.
	RouteBaseKm float64
}

// Polyline is an ordered sequence of road-following points, plus whether it
// was fetched from the routing service or synthesized as a fallback.
type Polyline struct {
	Points    []Location
	Fallback  bool
}

// IsTerminal reports whether the trip phase is done and the trip should be
// removed from the store.
func (t Trip) IsTerminal() bool {
	return t.Phase == TripCompleted || t.Phase == TripCancelled
}
