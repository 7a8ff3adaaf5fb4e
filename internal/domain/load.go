package domain

import "time"

// Load is a freight job awaiting (or undergoing) delivery. Invariants:
// status transitions are monotone along available -> matched -> in_transit
// -> delivered, with cancelled/expired reachable only from available or
// matched; AssignedVehicleID is set iff Status is matched or in_transit;
// WeightTons <= vehicle.CapacityTons at the moment of transition to matched.
type Load struct {
	LoadID            string
	Origin            Location
	Destination       Location
	WeightTons        float64
	DistanceKm        float64
	RatePerKm         float64
	PickupWindowStart time.Time
	PickupWindowEnd   time.Time
	DeliveryDeadline  time.Time
	AssignedVehicleID string
	Status            LoadStatus
}

// IsAvailable reports whether the load can be offered to the Matcher.
func (l Load) IsAvailable() bool {
	return l.Status == LoadAvailable
}
