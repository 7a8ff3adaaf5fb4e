package dto

import "fleet-dispatch-engine/internal/domain"

type LocationResponse struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	Name string  `json:"name,omitempty"`
}

type VehicleResponse struct {
	VehicleID        string           `json:"vehicle_id"`
	DriverID         string           `json:"driver_id"`
	Status           string           `json:"status"`
	CapacityTons     float64          `json:"capacity_tons"`
	CargoTons        float64          `json:"cargo_tons"`
	FuelPercent      float64          `json:"fuel_percent"`
	DrivingHoursLeft float64          `json:"driving_hours_left"`
	KmTodayTotal     float64          `json:"km_today_total"`
	KmTodayLoaded    float64          `json:"km_today_loaded"`
	CurrentLocation  LocationResponse `json:"current_location"`
	HomeDepot        string           `json:"home_depot"`
}

type ListVehicleResponse struct {
	Vehicles []VehicleResponse `json:"vehicles"`
}

func fromLocation(l domain.Location) LocationResponse {
	return LocationResponse{Lat: l.Lat, Lng: l.Lng, Name: l.Name}
}

func FromVehicle(v domain.Vehicle) VehicleResponse {
	return VehicleResponse{
		VehicleID:        v.VehicleID,
		DriverID:         v.DriverID,
		Status:           string(v.Status),
		CapacityTons:     v.CapacityTons,
		CargoTons:        v.CargoTons,
		FuelPercent:      v.FuelPercent,
		DrivingHoursLeft: v.DrivingHoursLeft,
		KmTodayTotal:     v.KmTodayTotal,
		KmTodayLoaded:    v.KmTodayLoaded,
		CurrentLocation:  fromLocation(v.CurrentLocation),
		HomeDepot:        v.HomeDepot,
	}
}
