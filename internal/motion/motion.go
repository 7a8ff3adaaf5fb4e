// Package motion implements the Motion Engine: advancing each active trip
// one tick along its cached route, updating vehicle position, odometers,
// fuel, and driver-hour counters, and driving trip/load phase transitions.
package motion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fleet-dispatch-engine/internal/config"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/geo"
	"fleet-dispatch-engine/internal/platform/logging"
	"fleet-dispatch-engine/internal/platform/obs"
	"fleet-dispatch-engine/internal/ports"
	"fleet-dispatch-engine/internal/store"
)

// Engine advances every non-terminal trip by one tick.
type Engine struct {
	store  *store.Store
	routes ports.RouteProvider
	cfg    config.MotionConfig
	log    logging.Logger

	mu          sync.Mutex
	posCounters map[string]int
}

func New(s *store.Store, routes ports.RouteProvider, cfg config.MotionConfig, log logging.Logger) *Engine {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Engine{
		store:       s,
		routes:      routes,
		cfg:         cfg,
		log:         log,
		posCounters: make(map[string]int),
	}
}

// Tick advances every active trip by dt, in lexicographic trip-id order, so
// events emitted within this call form a deterministic total order.
func (e *Engine) Tick(ctx context.Context, dt time.Duration) (err error) {
	defer obs.Time(ctx, e.log, "motion.Tick")(&err)

	snapshot := e.store.Snapshot()
	now := time.Now()
	var events []domain.Event

	for _, tripID := range e.store.TripIDsSorted() {
		trip, ok := snapshot.Trips[tripID]
		if !ok || trip.IsTerminal() {
			continue
		}

		stepEvents, stepErr := e.stepTrip(ctx, now, dt.Seconds(), trip, snapshot)
		if stepErr != nil {
			e.log.Warnf("motion: step trip %s failed: %v", tripID, stepErr)
			events = append(events, domain.Event{
				Type:      domain.EventInternalError,
				Timestamp: now,
				Payload:   domain.InternalErrorPayload{Component: "motion", Message: stepErr.Error()},
			})
			continue
		}
		events = append(events, stepEvents...)
	}

	for i := range events {
		events[i].Timestamp = now
	}
	e.store.ApplyEvents(events)
	return nil
}

func (e *Engine) stepTrip(ctx context.Context, now time.Time, dtSeconds float64, trip domain.Trip, snapshot domain.Snapshot) ([]domain.Event, error) {
	vehicle, ok := snapshot.Vehicles[trip.VehicleID]
	if !ok {
		return nil, fmt.Errorf("step trip %s: vehicle %s missing", trip.TripID, trip.VehicleID)
	}
	load, ok := snapshot.Loads[trip.LoadID]
	if !ok {
		return nil, fmt.Errorf("step trip %s: load %s missing", trip.TripID, trip.LoadID)
	}

	switch trip.Phase {
	case domain.TripPlanning:
		return e.stepPlanning(ctx, trip, vehicle, load)
	case domain.TripEnRouteToPickup:
		return e.stepMoving(ctx, now, dtSeconds, trip, vehicle, load, true)
	case domain.TripLoading:
		return e.stepLoadingComplete(trip, vehicle, load)
	case domain.TripInTransit:
		return e.stepMoving(ctx, now, dtSeconds, trip, vehicle, load, false)
	case domain.TripUnloading:
		return e.stepUnloadingComplete(now, trip, vehicle, load)
	default:
		return nil, fmt.Errorf("step trip %s: unhandled phase %q", trip.TripID, trip.Phase)
	}
}

// stepPlanning fetches the trip's route if missing, then immediately
// transitions into en_route_to_pickup (or straight to loading if the
// vehicle is already at the origin).
func (e *Engine) stepPlanning(ctx context.Context, trip domain.Trip, vehicle domain.Vehicle, load domain.Load) ([]domain.Event, error) {
	if len(trip.Route.Points) == 0 {
		pickup, err := e.routes.Route(ctx, vehicle.CurrentLocation, load.Origin)
		if err != nil {
			return nil, fmt.Errorf("fetch pickup leg: %w", err)
		}
		loaded, err := e.routes.Route(ctx, load.Origin, load.Destination)
		if err != nil {
			return nil, fmt.Errorf("fetch loaded leg: %w", err)
		}

		points := make([]domain.Location, 0, len(pickup.Polyline.Points)+len(loaded.Polyline.Points))
		points = append(points, pickup.Polyline.Points...)
		points = append(points, loaded.Polyline.Points...)

		err = e.store.UpdateTrip(trip.TripID, func(t *domain.Trip) error {
			t.Route = domain.Polyline{Points: points, Fallback: pickup.Polyline.Fallback || loaded.Polyline.Fallback}
			t.EmptyLegKm = pickup.DistanceKm
			t.LoadedLegKm = loaded.DistanceKm
			t.RouteTotalKm = pickup.DistanceKm + loaded.DistanceKm
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("store route: %w", err)
		}
		return nil, nil
	}

	nextPhase := domain.TripEnRouteToPickup
	vehicleStatus := domain.VehicleEnRouteEmpty
	if trip.EmptyLegKm <= 0.01 {
		nextPhase = domain.TripLoading
		vehicleStatus = domain.VehicleAtPickup
	}

	if err := e.store.UpdateTrip(trip.TripID, func(t *domain.Trip) error {
		t.Phase = nextPhase
		return nil
	}); err != nil {
		return nil, fmt.Errorf("transition from planning: %w", err)
	}
	if err := e.store.UpdateVehicle(trip.VehicleID, func(v *domain.Vehicle) error {
		v.Status = vehicleStatus
		return nil
	}); err != nil {
		return nil, fmt.Errorf("set vehicle status: %w", err)
	}

	// trip_started is emitted once, by the Matcher at assignment time
	// (matcher.instantiate); leaving planning is a mechanical route-setup
	// step, not a second start.
	return nil, nil
}

// refetchRoute rebuilds the remaining-leg polyline from the vehicle's
// current position when an adapter route adjustment (apply's ADJUST_ROUTE
// case) has cleared trip.Route. Per §4.7, only the remaining-leg polyline is
// invalidated: RouteTotalKm, EmptyLegKm, LoadedLegKm, and Progress are left
// exactly as they were (the Adapter never touches them either), so Progress
// keeps the value it already earned instead of getting re-based to 0.
// RouteBaseKm records how many of RouteTotalKm's km precede Route's new
// first point, so stepMoving can still sample the right position along the
// now remaining-only polyline.
func (e *Engine) refetchRoute(ctx context.Context, trip domain.Trip, vehicle domain.Vehicle, load domain.Load, toPickup bool) (domain.Trip, error) {
	traveledKm := trip.Progress / 100 * trip.RouteTotalKm

	var points []domain.Location
	fallback := false

	if toPickup {
		pickup, err := e.routes.Route(ctx, vehicle.CurrentLocation, load.Origin)
		if err != nil {
			return domain.Trip{}, fmt.Errorf("fetch remaining pickup leg: %w", err)
		}
		loaded, err := e.routes.Route(ctx, load.Origin, load.Destination)
		if err != nil {
			return domain.Trip{}, fmt.Errorf("fetch loaded leg: %w", err)
		}
		points = append(points, pickup.Polyline.Points...)
		points = append(points, loaded.Polyline.Points...)
		fallback = pickup.Polyline.Fallback || loaded.Polyline.Fallback
	} else {
		remaining, err := e.routes.Route(ctx, vehicle.CurrentLocation, load.Destination)
		if err != nil {
			return domain.Trip{}, fmt.Errorf("fetch remaining loaded leg: %w", err)
		}
		points = remaining.Polyline.Points
		fallback = remaining.Polyline.Fallback
	}

	err := e.store.UpdateTrip(trip.TripID, func(t *domain.Trip) error {
		t.Route = domain.Polyline{Points: points, Fallback: fallback}
		t.RouteBaseKm = traveledKm
		return nil
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("store refetched route: %w", err)
	}

	trip.Route = domain.Polyline{Points: points, Fallback: fallback}
	trip.RouteBaseKm = traveledKm
	return trip, nil
}

// stepMoving advances progress along the route for one tick. loaded
// selects the leg-specific fuel rate and odometer bucket.
func (e *Engine) stepMoving(ctx context.Context, now time.Time, dtSeconds float64, trip domain.Trip, vehicle domain.Vehicle, load domain.Load, toPickup bool) ([]domain.Event, error) {
	if vehicle.DrivingHoursLeft <= 0 {
		// Rest is instantaneous at this layer (§4.3(c)): surface the
		// condition for this tick, hold progress, and replenish the shift
		// so the next tick pass resumes normally instead of livelocking.
		if err := e.store.UpdateVehicle(trip.VehicleID, func(v *domain.Vehicle) error {
			v.DrivingHoursLeft = e.cfg.MaxDrivingHoursPerShift
			return nil
		}); err != nil {
			return nil, fmt.Errorf("replenish driving hours: %w", err)
		}
		return []domain.Event{{
			Type:    domain.EventDriverRestRequired,
			Payload: domain.DriverRestRequiredPayload{VehicleID: trip.VehicleID},
		}}, nil
	}

	if len(trip.Route.Points) == 0 {
		refreshed, err := e.refetchRoute(ctx, trip, vehicle, load, toPickup)
		if err != nil {
			return nil, fmt.Errorf("refetch cleared route: %w", err)
		}
		trip = refreshed
	}

	if trip.RouteTotalKm <= 0 {
		return nil, fmt.Errorf("trip %s has zero route length", trip.TripID)
	}

	progressFrac := trip.Progress / 100
	deltaFrac := (e.cfg.SpeedKmh * dtSeconds / 3600) / trip.RouteTotalKm

	threshold := trip.EmptyLegKm / trip.RouteTotalKm
	if !toPickup {
		threshold = 1.0
	}

	newFrac := progressFrac + deltaFrac
	crossed := newFrac >= threshold
	if crossed {
		newFrac = threshold
	}

	deltaKm := (newFrac - progressFrac) * trip.RouteTotalKm

	fuelRate := e.cfg.FuelEmptyPer10Km
	if !toPickup {
		fuelRate = e.cfg.FuelLoadedPer10Km
	}
	fuelUsed := fuelRate * deltaKm / 10

	// trip.Route may only cover the remaining leg (after a refetch); sample
	// against the fraction of that remaining span, not the whole-trip frac.
	localFrac := newFrac
	if span := trip.RouteTotalKm - trip.RouteBaseKm; span > 0 {
		localFrac = (newFrac*trip.RouteTotalKm - trip.RouteBaseKm) / span
	}
	newLocation := geo.SampleAt(trip.Route, localFrac)

	e.mu.Lock()
	e.posCounters[trip.TripID]++
	counter := e.posCounters[trip.TripID]
	e.mu.Unlock()

	var events []domain.Event

	nextPhase := trip.Phase
	nextVehicleStatus := vehicle.Status
	if crossed {
		if toPickup {
			nextPhase = domain.TripLoading
			nextVehicleStatus = domain.VehicleAtPickup
		} else {
			nextPhase = domain.TripUnloading
			nextVehicleStatus = domain.VehicleAtDelivery
		}
	}

	err := e.store.UpdateTrip(trip.TripID, func(t *domain.Trip) error {
		t.Progress = newFrac * 100
		t.Phase = nextPhase
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("advance progress: %w", err)
	}

	err = e.store.UpdateVehicle(trip.VehicleID, func(v *domain.Vehicle) error {
		v.CurrentLocation = newLocation
		v.Status = nextVehicleStatus
		v.KmTodayTotal += deltaKm
		if !toPickup {
			v.KmTodayLoaded += deltaKm
		}
		v.FuelPercent -= fuelUsed
		if v.FuelPercent < 0 {
			v.FuelPercent = 0
		}
		v.DrivingHoursLeft -= dtSeconds / 3600
		if v.DrivingHoursLeft < 0 {
			v.DrivingHoursLeft = 0
		}
		v.LastActivityAt = now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update vehicle: %w", err)
	}

	if vehicle.FuelPercent-fuelUsed < 10 && vehicle.FuelPercent >= 10 {
		events = append(events, domain.Event{
			Type:    domain.EventFuelLow,
			Payload: domain.FuelLowPayload{VehicleID: trip.VehicleID, Percent: vehicle.FuelPercent - fuelUsed},
		})
	}

	if crossed || counter%e.cfg.PositionEventEvery == 0 {
		events = append(events, domain.Event{
			Type: domain.EventVehiclePositionUpdate,
			Payload: domain.VehiclePositionUpdatePayload{
				VehicleID: trip.VehicleID, Lat: newLocation.Lat, Lng: newLocation.Lng,
				HeadingDeg: geo.Bearing(vehicle.CurrentLocation, newLocation),
			},
		})
	}

	return events, nil
}

// stepLoadingComplete holds a trip in loading for exactly one tick, then
// transitions it into in_transit with cargo loaded.
func (e *Engine) stepLoadingComplete(trip domain.Trip, vehicle domain.Vehicle, load domain.Load) ([]domain.Event, error) {
	if err := e.store.UpdateTrip(trip.TripID, func(t *domain.Trip) error {
		t.Phase = domain.TripInTransit
		return nil
	}); err != nil {
		return nil, fmt.Errorf("transition loading->in_transit: %w", err)
	}
	if err := e.store.UpdateVehicle(trip.VehicleID, func(v *domain.Vehicle) error {
		v.Status = domain.VehicleEnRouteLoaded
		v.CargoTons = load.WeightTons
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load cargo: %w", err)
	}
	if err := e.store.UpdateLoad(trip.LoadID, func(l *domain.Load) error {
		l.Status = domain.LoadInTransit
		return nil
	}); err != nil {
		return nil, fmt.Errorf("mark load in_transit: %w", err)
	}
	return nil, nil
}

// stepUnloadingComplete holds a trip in unloading for one tick, then
// completes it: the vehicle returns to idle, unless the trip carries a
// follow-up load, in which case it transitions directly into a new trip's
// planning phase.
func (e *Engine) stepUnloadingComplete(now time.Time, trip domain.Trip, vehicle domain.Vehicle, load domain.Load) ([]domain.Event, error) {
	if err := e.store.UpdateLoad(trip.LoadID, func(l *domain.Load) error {
		l.Status = domain.LoadDelivered
		return nil
	}); err != nil {
		return nil, fmt.Errorf("mark load delivered: %w", err)
	}

	if err := e.store.RemoveTrip(trip.TripID); err != nil {
		return nil, fmt.Errorf("remove completed trip: %w", err)
	}

	events := []domain.Event{{
		Type:    domain.EventTripCompleted,
		Payload: domain.TripCompletedPayload{TripID: trip.TripID},
	}}

	if trip.FollowupLoadID != "" {
		newTrip := domain.Trip{
			TripID:    domain.NewID("trip"),
			VehicleID: trip.VehicleID,
			LoadID:    trip.FollowupLoadID,
			Phase:     domain.TripPlanning,
			StartedAt: now,
		}
		if err := e.store.InsertTrip(newTrip); err != nil {
			return nil, fmt.Errorf("start follow-up trip: %w", err)
		}
		if err := e.store.UpdateVehicle(trip.VehicleID, func(v *domain.Vehicle) error {
			v.CargoTons = 0
			return nil
		}); err != nil {
			return nil, fmt.Errorf("clear cargo for follow-up: %w", err)
		}
		// The follow-up load transitions to matched in this same step, so it
		// is never left matched without a referencing trip, and never
		// offered to the Matcher or a second Adapter opportunity search
		// again (both exclude it as available-but-reserved beforehand).
		if err := e.store.UpdateLoad(trip.FollowupLoadID, func(l *domain.Load) error {
			l.Status = domain.LoadMatched
			l.AssignedVehicleID = trip.VehicleID
			return nil
		}); err != nil {
			return nil, fmt.Errorf("mark follow-up load matched: %w", err)
		}
		events = append(events,
			domain.Event{Type: domain.EventLoadMatched, Payload: domain.LoadMatchedPayload{LoadID: trip.FollowupLoadID, VehicleID: trip.VehicleID}},
			domain.Event{Type: domain.EventTripStarted, Payload: domain.TripStartedPayload{TripID: newTrip.TripID, VehicleID: trip.VehicleID, LoadID: trip.FollowupLoadID}},
		)
	} else if err := e.store.UpdateVehicle(trip.VehicleID, func(v *domain.Vehicle) error {
		v.Status = domain.VehicleIdle
		v.CargoTons = 0
		return nil
	}); err != nil {
		return nil, fmt.Errorf("return vehicle to idle: %w", err)
	}

	return events, nil
}
