package engine

import "fleet-dispatch-engine/internal/domain"

// Metrics is the KPI object the /metrics endpoint serves.
type Metrics struct {
	TotalVehicles     int
	AvailableVehicles int
	IdleVehicles      int
	EnRouteVehicles   int
	TotalLoads        int
	AvailableLoads    int
	MatchedLoads      int
	InTransitLoads    int
	AvgUtilization    float64 // percent, 0-100
	TotalKmToday      float64
}

var enRouteStatuses = []domain.VehicleStatus{
	domain.VehicleEnRouteEmpty, domain.VehicleEnRouteLoaded,
	domain.VehicleAtPickup, domain.VehicleAtDelivery,
}

// Metrics aggregates the current Snapshot into the KPI object. Utilization
// is the fleet-wide loaded_km / total_km ratio across every non-terminal
// trip with a known route length; a fleet with no active trips reports 0.
func (e *Engine) Metrics() Metrics {
	snapshot := e.store.Snapshot()

	m := Metrics{TotalVehicles: len(snapshot.Vehicles), TotalLoads: len(snapshot.Loads)}

	for _, v := range snapshot.Vehicles {
		m.TotalKmToday += v.KmTodayTotal
		switch v.Status {
		case domain.VehicleIdle:
			m.IdleVehicles++
			m.AvailableVehicles++
		default:
			for _, s := range enRouteStatuses {
				if v.Status == s {
					m.EnRouteVehicles++
					break
				}
			}
		}
	}

	for _, l := range snapshot.Loads {
		switch l.Status {
		case domain.LoadAvailable:
			m.AvailableLoads++
		case domain.LoadMatched:
			m.MatchedLoads++
		case domain.LoadInTransit:
			m.InTransitLoads++
		}
	}

	var loadedKm, totalKm float64
	for _, t := range snapshot.Trips {
		if t.IsTerminal() || t.RouteTotalKm <= 0 {
			continue
		}
		loadedKm += t.LoadedLegKm
		totalKm += t.RouteTotalKm
	}
	if totalKm > 0 {
		m.AvgUtilization = loadedKm / totalKm * 100
	}

	return m
}
