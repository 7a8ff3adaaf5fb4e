package signals

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fleet-dispatch-engine/internal/domain"
)

func snapshotWithVehicle(status domain.VehicleStatus) domain.Snapshot {
	return domain.Snapshot{
		Vehicles: map[string]domain.Vehicle{
			"veh-1": {VehicleID: "veh-1", Status: status},
		},
	}
}

func TestGenerateIsDeterministicForAFixedSeed(t *testing.T) {
	g1 := NewGenerator(rand.NewSource(42))
	g2 := NewGenerator(rand.NewSource(42))

	snap := snapshotWithVehicle(domain.VehicleEnRouteLoaded)

	s1, err := g1.Generate(context.Background(), snap)
	require.NoError(t, err)
	s2, err := g2.Generate(context.Background(), snap)
	require.NoError(t, err)

	assert.Equal(t, s1, s2)
}

func TestGenerateNeverProducesTrafficAlertWithoutEligibleVehicle(t *testing.T) {
	g := NewGenerator(rand.NewSource(1))
	empty := domain.Snapshot{Vehicles: map[string]domain.Vehicle{}}

	signals, err := g.Generate(context.Background(), empty)
	require.NoError(t, err)

	for _, s := range signals {
		assert.NotEqual(t, domain.EventTrafficAlert, s.Type)
		assert.NotEqual(t, domain.EventFuelLow, s.Type)
		assert.NotEqual(t, domain.EventMaintenanceRequired, s.Type)
	}
}

func TestRandomLoadPayloadHasDistinctOriginAndDestination(t *testing.T) {
	g := NewGenerator(rand.NewSource(7))
	p := g.randomLoadPayload()

	assert.NotEqual(t, p.Origin, p.Destination)
	assert.NotEmpty(t, p.LoadID)
}
