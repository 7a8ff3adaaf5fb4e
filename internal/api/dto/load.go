package dto

import (
	"time"

	"fleet-dispatch-engine/internal/domain"
)

type LoadResponse struct {
	LoadID            string           `json:"load_id"`
	Origin            LocationResponse `json:"origin"`
	Destination       LocationResponse `json:"destination"`
	WeightTons        float64          `json:"weight_tons"`
	DistanceKm        float64          `json:"distance_km"`
	RatePerKm         float64          `json:"rate_per_km"`
	PickupWindowStart time.Time        `json:"pickup_window_start"`
	PickupWindowEnd   time.Time        `json:"pickup_window_end"`
	DeliveryDeadline  time.Time        `json:"delivery_deadline"`
	AssignedVehicleID string           `json:"assigned_vehicle_id,omitempty"`
	Status            string           `json:"status"`
}

type ListLoadResponse struct {
	Loads []LoadResponse `json:"loads"`
}

func FromLoad(l domain.Load) LoadResponse {
	return LoadResponse{
		LoadID:            l.LoadID,
		Origin:            fromLocation(l.Origin),
		Destination:       fromLocation(l.Destination),
		WeightTons:        l.WeightTons,
		DistanceKm:        l.DistanceKm,
		RatePerKm:         l.RatePerKm,
		PickupWindowStart: l.PickupWindowStart,
		PickupWindowEnd:   l.PickupWindowEnd,
		DeliveryDeadline:  l.DeliveryDeadline,
		AssignedVehicleID: l.AssignedVehicleID,
		Status:            string(l.Status),
	}
}

type CancelLoadRequest struct {
	LoadID string `json:"load_id"`
}

type CancelLoadResponse struct {
	LoadID string `json:"load_id"`
	Status string `json:"status"`
}
