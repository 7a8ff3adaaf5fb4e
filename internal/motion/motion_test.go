package motion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-dispatch-engine/internal/config"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/geo"
	"fleet-dispatch-engine/internal/ports"
	"fleet-dispatch-engine/internal/store"
)

type stubRoutes struct{}

func (stubRoutes) Route(ctx context.Context, start, end domain.Location) (ports.RouteResult, error) {
	return ports.RouteResult{
		Polyline:   geo.SynthesizePolyline(start, end, 5, 20),
		DistanceKm: geo.DistanceKm(start, end),
	}, nil
}

func defaultCfg() config.MotionConfig {
	c := config.MotionConfig{}
	c.SetDefaults()
	c.SpeedKmh = 3600 // 1 km/sec, so dt math stays simple in tests
	return c
}

func seedTrip(t *testing.T, s *store.Store, phase domain.TripPhase) (domain.Vehicle, domain.Load, domain.Trip) {
	origin := domain.Location{Lat: 33.0, Lng: -112.0}
	dest := domain.Location{Lat: 34.0, Lng: -111.0}

	v := domain.Vehicle{
		VehicleID:        "veh-1",
		Status:           domain.VehicleEnRouteEmpty,
		CurrentLocation:  origin,
		FuelPercent:      100,
		DrivingHoursLeft: 10,
	}
	// A trip past loading carries an in_transit load; earlier phases a
	// matched one, as the store's status transitions require.
	status := domain.LoadMatched
	if phase == domain.TripInTransit || phase == domain.TripUnloading {
		status = domain.LoadInTransit
	}
	l := domain.Load{
		LoadID:      "load-1",
		Origin:      origin,
		Destination: dest,
		WeightTons:  5,
		Status:      status,
	}
	require.NoError(t, s.InsertVehicle(v))
	require.NoError(t, s.InsertLoad(l))

	tr := domain.Trip{
		TripID:    "trip-1",
		VehicleID: v.VehicleID,
		LoadID:    l.LoadID,
		Phase:     phase,
	}
	require.NoError(t, s.InsertTrip(tr))
	return v, l, tr
}

func TestTickFetchesRouteForPlanningTripWithoutPolyline(t *testing.T) {
	s := store.New(100, nil)
	seedTrip(t, s, domain.TripPlanning)

	eng := New(s, stubRoutes{}, defaultCfg(), nil)
	require.NoError(t, eng.Tick(context.Background(), time.Second))

	snap := s.Snapshot()
	tr := snap.Trips["trip-1"]
	assert.NotEmpty(t, tr.Route.Points)
	assert.Equal(t, domain.TripPlanning, tr.Phase)
	assert.Greater(t, tr.RouteTotalKm, 0.0)
}

func TestTickTransitionsPlanningToEnRouteOnceRouteExists(t *testing.T) {
	s := store.New(100, nil)
	_, _, tr := seedTrip(t, s, domain.TripPlanning)

	require.NoError(t, s.UpdateTrip(tr.TripID, func(t *domain.Trip) error {
		t.Route = domain.Polyline{Points: []domain.Location{{Lat: 33, Lng: -112}, {Lat: 34, Lng: -111}}}
		t.EmptyLegKm = 50
		t.LoadedLegKm = 80
		t.RouteTotalKm = 130
		return nil
	}))

	eng := New(s, stubRoutes{}, defaultCfg(), nil)
	require.NoError(t, eng.Tick(context.Background(), time.Second))

	snap := s.Snapshot()
	assert.Equal(t, domain.TripEnRouteToPickup, snap.Trips["trip-1"].Phase)
	assert.Equal(t, domain.VehicleEnRouteEmpty, snap.Vehicles["veh-1"].Status)
}

func TestTickAdvancesProgressAndCrossesPickupThreshold(t *testing.T) {
	s := store.New(100, nil)
	_, _, tr := seedTrip(t, s, domain.TripEnRouteToPickup)

	require.NoError(t, s.UpdateTrip(tr.TripID, func(t *domain.Trip) error {
		t.Route = domain.Polyline{Points: []domain.Location{{Lat: 33, Lng: -112}, {Lat: 34, Lng: -111}}}
		t.EmptyLegKm = 1
		t.LoadedLegKm = 99
		t.RouteTotalKm = 100
		t.Progress = 0
		return nil
	}))

	cfg := defaultCfg()
	cfg.SpeedKmh = 3600 // 1km/sec * 1 tick second = crosses the 1km empty leg
	eng := New(s, stubRoutes{}, cfg, nil)
	require.NoError(t, eng.Tick(context.Background(), time.Second))

	snap := s.Snapshot()
	assert.Equal(t, domain.TripLoading, snap.Trips["trip-1"].Phase)
	assert.Equal(t, domain.VehicleAtPickup, snap.Vehicles["veh-1"].Status)
}

func TestTickLoadingCompletesToInTransitWithCargo(t *testing.T) {
	s := store.New(100, nil)
	seedTrip(t, s, domain.TripLoading)

	eng := New(s, stubRoutes{}, defaultCfg(), nil)
	require.NoError(t, eng.Tick(context.Background(), time.Second))

	snap := s.Snapshot()
	assert.Equal(t, domain.TripInTransit, snap.Trips["trip-1"].Phase)
	assert.Equal(t, domain.VehicleEnRouteLoaded, snap.Vehicles["veh-1"].Status)
	assert.Equal(t, 5.0, snap.Vehicles["veh-1"].CargoTons)
	assert.Equal(t, domain.LoadInTransit, snap.Loads["load-1"].Status)
}

func TestTickUnloadingCompletesTripAndReturnsVehicleIdle(t *testing.T) {
	s := store.New(100, nil)
	seedTrip(t, s, domain.TripUnloading)

	eng := New(s, stubRoutes{}, defaultCfg(), nil)
	require.NoError(t, eng.Tick(context.Background(), time.Second))

	snap := s.Snapshot()
	_, stillExists := snap.Trips["trip-1"]
	assert.False(t, stillExists)
	assert.Equal(t, domain.VehicleIdle, snap.Vehicles["veh-1"].Status)
	assert.Equal(t, domain.LoadDelivered, snap.Loads["load-1"].Status)
}

func TestTickUnloadingWithFollowupStartsNewTripInPlanning(t *testing.T) {
	s := store.New(100, nil)
	_, _, tr := seedTrip(t, s, domain.TripUnloading)
	require.NoError(t, s.InsertLoad(domain.Load{LoadID: "load-2", Status: domain.LoadMatched}))
	require.NoError(t, s.UpdateTrip(tr.TripID, func(t *domain.Trip) error {
		t.FollowupLoadID = "load-2"
		return nil
	}))

	eng := New(s, stubRoutes{}, defaultCfg(), nil)
	require.NoError(t, eng.Tick(context.Background(), time.Second))

	snap := s.Snapshot()
	_, oldExists := snap.Trips["trip-1"]
	assert.False(t, oldExists)

	var followup *domain.Trip
	for _, tr := range snap.Trips {
		if tr.VehicleID == "veh-1" {
			followup = &tr
		}
	}
	require.NotNil(t, followup)
	assert.Equal(t, domain.TripPlanning, followup.Phase)
	assert.Equal(t, "load-2", followup.LoadID)
}

func TestTickRefetchesClearedRouteInsteadOfTeleportingToNullIsland(t *testing.T) {
	s := store.New(100, nil)
	_, _, tr := seedTrip(t, s, domain.TripInTransit)

	require.NoError(t, s.UpdateVehicle("veh-1", func(v *domain.Vehicle) error {
		v.CurrentLocation = domain.Location{Lat: 33.5, Lng: -111.5}
		return nil
	}))
	require.NoError(t, s.UpdateTrip(tr.TripID, func(t *domain.Trip) error {
		t.Route = domain.Polyline{} // ADJUST_ROUTE cleared the cached polyline
		t.EmptyLegKm = 0
		t.LoadedLegKm = 80
		t.RouteTotalKm = 80
		t.Progress = 40
		return nil
	}))

	eng := New(s, stubRoutes{}, defaultCfg(), nil)
	require.NoError(t, eng.Tick(context.Background(), time.Second))

	snap := s.Snapshot()
	loc := snap.Vehicles["veh-1"].CurrentLocation
	assert.NotEqual(t, domain.Location{}, loc)
	assert.NotEmpty(t, snap.Trips["trip-1"].Route.Points)
	assert.Greater(t, snap.Trips["trip-1"].RouteTotalKm, 0.0)
	// the refetch must not re-base progress to 0: it only replaces the
	// remaining-leg polyline, so progress keeps climbing from where it was.
	assert.GreaterOrEqual(t, snap.Trips["trip-1"].Progress, 40.0)
	assert.Equal(t, 80.0, snap.Trips["trip-1"].RouteTotalKm)
}

func TestTickEmitsDriverRestRequiredWhenHoursExhausted(t *testing.T) {
	s := store.New(100, nil)
	_, _, tr := seedTrip(t, s, domain.TripEnRouteToPickup)
	require.NoError(t, s.UpdateVehicle("veh-1", func(v *domain.Vehicle) error {
		v.DrivingHoursLeft = 0
		return nil
	}))
	require.NoError(t, s.UpdateTrip(tr.TripID, func(t *domain.Trip) error {
		t.Route = domain.Polyline{Points: []domain.Location{{Lat: 33, Lng: -112}, {Lat: 34, Lng: -111}}}
		t.EmptyLegKm = 50
		t.LoadedLegKm = 80
		t.RouteTotalKm = 130
		return nil
	}))

	eng := New(s, stubRoutes{}, defaultCfg(), nil)
	require.NoError(t, eng.Tick(context.Background(), time.Second))

	snap := s.Snapshot()
	require.NotEmpty(t, snap.Events)
	found := false
	for _, e := range snap.Events {
		if e.Type == domain.EventDriverRestRequired {
			found = true
		}
	}
	assert.True(t, found)
	assert.Equal(t, 0.0, snap.Trips["trip-1"].Progress)
}

func TestTickReplenishesDrivingHoursAfterRestInsteadOfLivelocking(t *testing.T) {
	s := store.New(100, nil)
	_, _, tr := seedTrip(t, s, domain.TripEnRouteToPickup)
	require.NoError(t, s.UpdateVehicle("veh-1", func(v *domain.Vehicle) error {
		v.DrivingHoursLeft = 0
		return nil
	}))
	require.NoError(t, s.UpdateTrip(tr.TripID, func(t *domain.Trip) error {
		t.Route = domain.Polyline{Points: []domain.Location{{Lat: 33, Lng: -112}, {Lat: 34, Lng: -111}}}
		t.EmptyLegKm = 50
		t.LoadedLegKm = 80
		t.RouteTotalKm = 130
		return nil
	}))

	cfg := defaultCfg()
	eng := New(s, stubRoutes{}, cfg, nil)
	require.NoError(t, eng.Tick(context.Background(), time.Second))

	snap := s.Snapshot()
	assert.Equal(t, cfg.MaxDrivingHoursPerShift, snap.Vehicles["veh-1"].DrivingHoursLeft)

	require.NoError(t, eng.Tick(context.Background(), time.Second))
	snap = s.Snapshot()
	assert.Greater(t, snap.Trips["trip-1"].Progress, 0.0, "trip must resume advancing on the next tick, not stay held forever")
}
