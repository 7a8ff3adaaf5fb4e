// Package signals provides the reference ports.SignalSource: a stochastic
// generator seeded from a fixed table of city coordinates, reimplementing
// the shape of the original simulator's city/corridor tables as plain Go
// data instead of hand-maintained Python dicts.
package signals

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/ports"
)

// Cities is the fixed set of depot/city coordinates new loads and vehicles
// are scattered over.
var Cities = map[string]domain.Location{
	"phoenix":     {Lat: 33.4484, Lng: -112.0740, Name: "Phoenix"},
	"los_angeles": {Lat: 34.0522, Lng: -118.2437, Name: "Los Angeles"},
	"las_vegas":   {Lat: 36.1699, Lng: -115.1398, Name: "Las Vegas"},
	"san_diego":   {Lat: 32.7157, Lng: -117.1611, Name: "San Diego"},
	"tucson":      {Lat: 32.2226, Lng: -110.9747, Name: "Tucson"},
	"albuquerque": {Lat: 35.0844, Lng: -106.6504, Name: "Albuquerque"},
	"el_paso":     {Lat: 31.7619, Lng: -106.4850, Name: "El Paso"},
	"denver":      {Lat: 39.7392, Lng: -104.9903, Name: "Denver"},
	"salt_lake":   {Lat: 40.7608, Lng: -111.8910, Name: "Salt Lake City"},
	"sacramento":  {Lat: 38.5816, Lng: -121.4944, Name: "Sacramento"},
}

var corridors = []string{
	"I-10 Phoenix-Tucson", "I-15 Las Vegas-SLC", "I-40 Albuquerque-ElPaso",
	"I-5 LA-Sacramento", "I-25 Denver-Albuquerque", "US-93 Vegas-Phoenix",
}

var trafficReasons = []string{"accident", "roadwork", "weather", "congestion"}
var maintenanceReasons = []string{"scheduled_inspection", "tire_wear", "engine_check"}

// Generator is the stochastic reference SignalSource. It is deterministic
// given a seeded rand.Rand, which lets tests exercise it without flakiness.
type Generator struct {
	rng *rand.Rand

	trafficProbability      float64
	newLoadProbability      float64
	fuelLowProbability      float64
	maintenanceProbability  float64

	cityNames []string
}

// NewGenerator builds a Generator with default probabilities, seeded from
// the given source (pass rand.NewSource(time.Now().UnixNano()) for the
// running server, or a fixed seed in tests).
func NewGenerator(src rand.Source) *Generator {
	names := make([]string, 0, len(Cities))
	for name := range Cities {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Generator{
		rng:                    rand.New(src),
		trafficProbability:     0.3,
		newLoadProbability:     0.25,
		fuelLowProbability:     0.05,
		maintenanceProbability: 0.03,
		cityNames:              names,
	}
}

var _ ports.SignalSource = (*Generator)(nil)

// Generate produces zero or more signals for this Observer cycle: at most
// one traffic alert, one new load, and a low-probability fuel/maintenance
// condition surfaced against a random active vehicle in the snapshot.
func (g *Generator) Generate(ctx context.Context, snapshot domain.Snapshot) ([]ports.Signal, error) {
	var out []ports.Signal

	if g.rng.Float64() < g.trafficProbability {
		if v := g.randomVehicle(snapshot, domain.VehicleEnRouteEmpty, domain.VehicleEnRouteLoaded); v != nil {
			out = append(out, ports.Signal{
				Type: domain.EventTrafficAlert,
				Payload: domain.TrafficAlertPayload{
					VehicleID:    v.VehicleID,
					DelayMinutes: 15 + g.rng.Float64()*75,
					Reason:       fmt.Sprintf("%s (%s)", trafficReasons[g.rng.Intn(len(trafficReasons))], corridors[g.rng.Intn(len(corridors))]),
				},
			})
		}
	}

	if g.rng.Float64() < g.newLoadProbability {
		out = append(out, ports.Signal{
			Type:    domain.EventNewLoadPosted,
			Payload: g.randomLoadPayload(),
		})
	}

	if g.rng.Float64() < g.fuelLowProbability {
		if v := g.randomVehicle(snapshot, domain.VehicleEnRouteEmpty, domain.VehicleEnRouteLoaded, domain.VehicleIdle); v != nil {
			out = append(out, ports.Signal{
				Type:    domain.EventFuelLow,
				Payload: domain.FuelLowPayload{VehicleID: v.VehicleID, Percent: g.rng.Float64() * 9},
			})
		}
	}

	if g.rng.Float64() < g.maintenanceProbability {
		if v := g.randomVehicle(snapshot, domain.VehicleIdle, domain.VehicleEnRouteEmpty, domain.VehicleEnRouteLoaded); v != nil {
			out = append(out, ports.Signal{
				Type: domain.EventMaintenanceRequired,
				Payload: domain.MaintenanceRequiredPayload{
					VehicleID: v.VehicleID,
					Reason:    maintenanceReasons[g.rng.Intn(len(maintenanceReasons))],
				},
			})
		}
	}

	return out, nil
}

func (g *Generator) randomVehicle(snapshot domain.Snapshot, statuses ...domain.VehicleStatus) *domain.Vehicle {
	var candidates []domain.Vehicle
	for _, v := range snapshot.Vehicles {
		for _, s := range statuses {
			if v.Status == s {
				candidates = append(candidates, v)
				break
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	v := candidates[g.rng.Intn(len(candidates))]
	return &v
}

// randomLoadPayload builds a LoadPostedPayload between two distinct random
// cities with a plausible weight and rate.
func (g *Generator) randomLoadPayload() domain.LoadPostedPayload {
	origin := g.cityNames[g.rng.Intn(len(g.cityNames))]
	dest := origin
	for dest == origin {
		dest = g.cityNames[g.rng.Intn(len(g.cityNames))]
	}

	// The id is drawn from g.rng too, so a fixed seed repeats it.
	id, _ := uuid.NewRandomFromReader(g.rng)

	return domain.LoadPostedPayload{
		LoadID:      "load-" + id.String(),
		Origin:      Cities[origin],
		Destination: Cities[dest],
		WeightTons:  2 + g.rng.Float64()*18,
		RatePerKm:   1.2 + g.rng.Float64()*1.8,
	}
}
