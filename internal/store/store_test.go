package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"fleet-dispatch-engine/internal/apperrors"
	"fleet-dispatch-engine/internal/domain"
)

func newTestVehicle(id string) domain.Vehicle {
	return domain.Vehicle{VehicleID: id, Status: domain.VehicleIdle, CapacityTons: 10}
}

func newTestLoad(id string) domain.Load {
	return domain.Load{LoadID: id, Status: domain.LoadAvailable, WeightTons: 5}
}

func TestInsertAndSnapshotRoundTrip(t *testing.T) {
	s := New(10, nil)

	require.NoError(t, s.InsertVehicle(newTestVehicle("veh-1")))
	require.NoError(t, s.InsertLoad(newTestLoad("load-1")))

	snap := s.Snapshot()
	assert.Len(t, snap.Vehicles, 1)
	assert.Len(t, snap.Loads, 1)
	assert.Equal(t, domain.VehicleIdle, snap.Vehicles["veh-1"].Status)
}

func TestInsertVehicleConflict(t *testing.T) {
	s := New(10, nil)
	require.NoError(t, s.InsertVehicle(newTestVehicle("veh-1")))

	err := s.InsertVehicle(newTestVehicle("veh-1"))
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
}

func TestUpdateVehicleNotFound(t *testing.T) {
	s := New(10, nil)
	err := s.UpdateVehicle("missing", func(v *domain.Vehicle) error { return nil })
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestUpdateLoadAllowsLegalTransition(t *testing.T) {
	s := New(10, nil)
	require.NoError(t, s.InsertLoad(newTestLoad("load-1")))

	err := s.UpdateLoad("load-1", func(l *domain.Load) error {
		l.Status = domain.LoadMatched
		return nil
	})
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.Equal(t, domain.LoadMatched, snap.Loads["load-1"].Status)
}

func TestUpdateLoadRejectsIllegalTransition(t *testing.T) {
	s := New(10, nil)
	require.NoError(t, s.InsertLoad(newTestLoad("load-1")))

	err := s.UpdateLoad("load-1", func(l *domain.Load) error {
		l.Status = domain.LoadDelivered
		return nil
	})
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))

	snap := s.Snapshot()
	assert.Equal(t, domain.LoadAvailable, snap.Loads["load-1"].Status)
}

func TestInsertTripEnforcesVehicleAndLoadUniqueness(t *testing.T) {
	s := New(10, nil)
	require.NoError(t, s.InsertVehicle(newTestVehicle("veh-1")))
	require.NoError(t, s.InsertLoad(newTestLoad("load-1")))

	trip := domain.Trip{TripID: "trip-1", VehicleID: "veh-1", LoadID: "load-1", Phase: domain.TripPlanning}
	require.NoError(t, s.InsertTrip(trip))

	dup := domain.Trip{TripID: "trip-2", VehicleID: "veh-1", LoadID: "load-2", Phase: domain.TripPlanning}
	err := s.InsertTrip(dup)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
}

func TestRemoveTripReleasesIndexes(t *testing.T) {
	s := New(10, nil)
	require.NoError(t, s.InsertVehicle(newTestVehicle("veh-1")))
	require.NoError(t, s.InsertLoad(newTestLoad("load-1")))
	trip := domain.Trip{TripID: "trip-1", VehicleID: "veh-1", LoadID: "load-1", Phase: domain.TripPlanning}
	require.NoError(t, s.InsertTrip(trip))

	require.NoError(t, s.RemoveTrip("trip-1"))

	again := domain.Trip{TripID: "trip-2", VehicleID: "veh-1", LoadID: "load-1", Phase: domain.TripPlanning}
	assert.NoError(t, s.InsertTrip(again))
}

func TestApplyEventsBoundsRingAndAssignsSeq(t *testing.T) {
	s := New(3, nil)

	s.ApplyEvents([]domain.Event{
		{Type: domain.EventTripStarted, Payload: domain.TripStartedPayload{TripID: "t1"}},
		{Type: domain.EventTripStarted, Payload: domain.TripStartedPayload{TripID: "t2"}},
		{Type: domain.EventTripStarted, Payload: domain.TripStartedPayload{TripID: "t3"}},
		{Type: domain.EventTripStarted, Payload: domain.TripStartedPayload{TripID: "t4"}},
	})

	snap := s.Snapshot()
	require.Len(t, snap.Events, 3)
	assert.Equal(t, domain.TripStartedPayload{TripID: "t2"}, snap.Events[0].Payload)
	assert.Equal(t, uint64(4), snap.Events[2].Seq)
}

func TestConcurrentWritesDoNotLeakGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := New(100, nil)
	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			id := domain.NewID("veh")
			_ = s.InsertVehicle(domain.Vehicle{VehicleID: id, Status: domain.VehicleIdle})
		}(i)
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.Len(t, snap.Vehicles, n)
}
