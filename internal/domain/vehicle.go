package domain

import "time"

// Vehicle is a truck in the fleet. Invariant: if Status is idle, no active
// trip references this vehicle; if en_route_*, exactly one does.
type Vehicle struct {
	VehicleID         string
	DriverID          string
	CapacityTons       float64
	CargoTons          float64
	FuelPercent        float64
	DrivingHoursLeft   float64
	KmTodayTotal       float64
	KmTodayLoaded      float64
	LastActivityAt     time.Time
	CurrentLocation    Location
	HomeDepot          string
	Status             VehicleStatus
}

// IsAvailable reports whether the vehicle can be offered to the Matcher.
func (v Vehicle) IsAvailable() bool {
	return v.Status == VehicleIdle
}
