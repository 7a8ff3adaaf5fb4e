package matcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-dispatch-engine/internal/adapters/advisor"
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

func testMatcherCfg() config.MatcherConfig {
	c := config.MatcherConfig{}
	c.SetDefaults()
	return c
}

func seedFleet(t *testing.T, s *store.Store) {
	require.NoError(t, s.InsertVehicle(domain.Vehicle{
		VehicleID: "veh-1", Status: domain.VehicleIdle, CapacityTons: 10,
		CurrentLocation: domain.Location{Lat: 33.4, Lng: -112.0},
	}))
	require.NoError(t, s.InsertLoad(domain.Load{
		LoadID: "load-1", Status: domain.LoadAvailable, WeightTons: 5,
		Origin:      domain.Location{Lat: 33.4, Lng: -112.0},
		Destination: domain.Location{Lat: 34.0, Lng: -111.0},
		DistanceKm:  100, RatePerKm: 5,
	}))
}

func TestRunWithFallbackCommitsProfitablePair(t *testing.T) {
	s := store.New(100, nil)
	seedFleet(t, s)

	m := New(s, stubRoutes{}, nil, testMatcherCfg(), nil)
	created, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	snap := s.Snapshot()
	assert.Equal(t, domain.LoadMatched, snap.Loads["load-1"].Status)
	assert.NotEqual(t, domain.VehicleIdle, snap.Vehicles["veh-1"].Status)
	assert.Len(t, snap.Trips, 1)
}

func TestRunSkipsLoadReservedAsAnotherTripsFollowup(t *testing.T) {
	s := store.New(100, nil)
	seedFleet(t, s)
	require.NoError(t, s.InsertVehicle(domain.Vehicle{VehicleID: "veh-2", Status: domain.VehicleEnRouteLoaded}))
	require.NoError(t, s.InsertLoad(domain.Load{LoadID: "load-other", Status: domain.LoadMatched}))
	require.NoError(t, s.InsertTrip(domain.Trip{
		TripID: "trip-1", VehicleID: "veh-2", LoadID: "load-other",
		Phase: domain.TripInTransit, FollowupLoadID: "load-1",
	}))

	m := New(s, stubRoutes{}, nil, testMatcherCfg(), nil)
	created, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created, "load-1 is reserved as trip-1's followup and must not be matched to veh-1")
}

func TestRunSkipsOverweightLoad(t *testing.T) {
	s := store.New(100, nil)
	require.NoError(t, s.InsertVehicle(domain.Vehicle{VehicleID: "veh-1", Status: domain.VehicleIdle, CapacityTons: 2}))
	require.NoError(t, s.InsertLoad(domain.Load{LoadID: "load-1", Status: domain.LoadAvailable, WeightTons: 5, RatePerKm: 5, DistanceKm: 100}))

	m := New(s, stubRoutes{}, nil, testMatcherCfg(), nil)
	created, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestApproveParsesAdvisorArrowPairs(t *testing.T) {
	s := store.New(100, nil)
	seedFleet(t, s)
	adv := &advisor.MockAdvisor{Response: "Approved:\nveh-1 -> load-1\n"}

	m := New(s, stubRoutes{}, adv, testMatcherCfg(), nil)
	created, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestApproveFallsBackOnAdvisorError(t *testing.T) {
	s := store.New(100, nil)
	seedFleet(t, s)
	adv := &advisor.MockAdvisor{Err: assert.AnError}

	m := New(s, stubRoutes{}, adv, testMatcherCfg(), nil)
	created, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}

func TestParseApprovedIgnoresUnknownPairs(t *testing.T) {
	m := New(nil, nil, nil, testMatcherCfg(), nil)
	candidates := []Feasibility{{VehicleID: "veh-1", LoadID: "load-1"}}

	approved := m.parseApproved("veh-9 -> load-9\nveh-1 -> load-1", candidates)
	require.Len(t, approved, 1)
	assert.Equal(t, "veh-1", approved[0].VehicleID)
}
