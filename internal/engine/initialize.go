package engine

import (
	"time"

	"fleet-dispatch-engine/internal/adapters/signals"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/geo"
)

// Initialize scatters numVehicles idle vehicles and numLoads available
// loads across the reference city table, returning how many of each were
// actually created (insertion only fails on an id collision, which cannot
// happen with freshly generated ids).
func (e *Engine) Initialize(numVehicles, numLoads int) (vehiclesCreated, loadsCreated int, err error) {
	now := time.Now()

	for i := 0; i < numVehicles; i++ {
		v := e.randomVehicle(now)
		if err := e.store.InsertVehicle(v); err != nil {
			e.log.Warnf("engine: initialize vehicle insert failed: %v", err)
			continue
		}
		vehiclesCreated++
	}

	var events []domain.Event
	for i := 0; i < numLoads; i++ {
		l := e.randomLoad(now)
		if err := e.store.InsertLoad(l); err != nil {
			e.log.Warnf("engine: initialize load insert failed: %v", err)
			continue
		}
		loadsCreated++
		events = append(events, domain.Event{
			Type: domain.EventLoadPosted,
			Payload: domain.LoadPostedPayload{
				LoadID:      l.LoadID,
				Origin:      l.Origin,
				Destination: l.Destination,
				WeightTons:  l.WeightTons,
				RatePerKm:   l.RatePerKm,
			},
		})
	}
	if len(events) > 0 {
		e.store.ApplyEvents(events)
	}

	return vehiclesCreated, loadsCreated, nil
}

func (e *Engine) randomCity() domain.Location {
	return signals.Cities[e.randomCityName()]
}

func (e *Engine) randomCityName() string {
	return e.cityNames[e.rng.Intn(len(e.cityNames))]
}

func (e *Engine) randomVehicle(now time.Time) domain.Vehicle {
	home := e.randomCity()
	if e.cfg.Server.Hub != "" {
		home.Name = e.cfg.Server.Hub
	}

	return domain.Vehicle{
		VehicleID:        domain.NewID("veh"),
		DriverID:         domain.NewID("drv"),
		CapacityTons:     8 + e.rng.Float64()*14,
		FuelPercent:      60 + e.rng.Float64()*40,
		DrivingHoursLeft: 8 + e.rng.Float64()*3,
		LastActivityAt:   now,
		CurrentLocation:  home,
		HomeDepot:        home.Name,
		Status:           domain.VehicleIdle,
	}
}

func (e *Engine) randomLoad(now time.Time) domain.Load {
	originName := e.randomCityName()
	destName := originName
	for destName == originName {
		destName = e.randomCityName()
	}
	origin := signals.Cities[originName]
	dest := signals.Cities[destName]
	distanceKm := geo.DistanceKm(origin, dest)

	pickupStart := now.Add(time.Duration(e.rng.Intn(3)) * time.Hour)

	return domain.Load{
		LoadID:            domain.NewID("load"),
		Origin:            origin,
		Destination:       dest,
		WeightTons:        2 + e.rng.Float64()*18,
		DistanceKm:        distanceKm,
		RatePerKm:         1.2 + e.rng.Float64()*1.8,
		PickupWindowStart: pickupStart,
		PickupWindowEnd:   pickupStart.Add(4 * time.Hour),
		DeliveryDeadline:  pickupStart.Add(time.Duration(distanceKm/50+6) * time.Hour),
		Status:            domain.LoadAvailable,
	}
}
