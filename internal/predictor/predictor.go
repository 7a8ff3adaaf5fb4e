// Package predictor computes per-trip ETA, fuel-at-arrival, and advisory
// recommendations from a snapshot. It is a pure function over its inputs:
// no store dependency, no external calls, no mutation.
package predictor

import (
	"time"

	"fleet-dispatch-engine/internal/config"
	"fleet-dispatch-engine/internal/domain"
)

// Prediction is the Predictor's per-trip output.
type Prediction struct {
	TripID              string
	VehicleID           string
	LoadID              string
	RemainingKm         float64
	CurrentSpeedKmh     float64
	ETA                 time.Time
	ETASeconds          float64
	FuelPercentAtArrival float64
	OnTime              domain.OnTimeStatus
	Advisories          []domain.AdvisoryKind
}

// Predictor holds the tunables that are not part of the snapshot itself.
type Predictor struct {
	cfg    config.PredictorConfig
	motion config.MotionConfig
}

func New(cfg config.PredictorConfig, motion config.MotionConfig) *Predictor {
	return &Predictor{cfg: cfg, motion: motion}
}

// Predict returns one Prediction per non-terminal trip in the snapshot, in
// no particular order (callers sort if they need determinism).
func (p *Predictor) Predict(now time.Time, snapshot domain.Snapshot) []Prediction {
	out := make([]Prediction, 0, len(snapshot.Trips))

	for _, trip := range snapshot.Trips {
		if trip.IsTerminal() {
			continue
		}
		vehicle, ok := snapshot.Vehicles[trip.VehicleID]
		if !ok {
			continue
		}
		load, ok := snapshot.Loads[trip.LoadID]
		if !ok {
			continue
		}
		out = append(out, p.predictTrip(now, snapshot, trip, vehicle, load))
	}

	return out
}

func (p *Predictor) predictTrip(now time.Time, snapshot domain.Snapshot, trip domain.Trip, vehicle domain.Vehicle, load domain.Load) Prediction {
	remainingKm := (1 - trip.Progress/100) * trip.RouteTotalKm

	trafficFactor := p.trafficFactor(snapshot, trip.VehicleID)
	speed := p.motion.SpeedKmh * trafficFactor

	etaSeconds := trip.DelaySeconds
	if speed > 0 {
		etaSeconds += remainingKm / speed * 3600
	}
	eta := now.Add(time.Duration(etaSeconds) * time.Second)

	loaded := trip.Phase == domain.TripInTransit || trip.Phase == domain.TripUnloading
	fuelRate := p.motion.FuelEmptyPer10Km
	if loaded {
		fuelRate = p.motion.FuelLoadedPer10Km
	}
	fuelAtArrival := vehicle.FuelPercent - fuelRate*remainingKm/10
	if fuelAtArrival < 0 {
		fuelAtArrival = 0
	}

	onTime := domain.OnTime
	if !load.DeliveryDeadline.IsZero() && eta.After(load.DeliveryDeadline) {
		onTime = domain.Delayed
	}

	etaHours := etaSeconds / 3600

	return Prediction{
		TripID:               trip.TripID,
		VehicleID:            trip.VehicleID,
		LoadID:               trip.LoadID,
		RemainingKm:          remainingKm,
		CurrentSpeedKmh:      speed,
		ETA:                  eta,
		ETASeconds:           etaSeconds,
		FuelPercentAtArrival: fuelAtArrival,
		OnTime:               onTime,
		Advisories:           p.advisories(vehicle, onTime, fuelAtArrival, etaHours),
	}
}

// trafficFactor looks at the most recent traffic_alert event for vehicleID
// and converts its delay minutes into a speed multiplier in (0, 1]. No
// matching event means no slowdown.
func (p *Predictor) trafficFactor(snapshot domain.Snapshot, vehicleID string) float64 {
	var latestDelay float64
	var latestSeq uint64
	found := false

	for _, e := range snapshot.Events {
		alert, ok := e.Payload.(domain.TrafficAlertPayload)
		if !ok || alert.VehicleID != vehicleID {
			continue
		}
		if !found || e.Seq > latestSeq {
			latestDelay = alert.DelayMinutes
			latestSeq = e.Seq
			found = true
		}
	}

	if !found || latestDelay <= 0 {
		return 1.0
	}
	return p.cfg.TrafficDelayDivisorMins / (p.cfg.TrafficDelayDivisorMins + latestDelay)
}

// advisories emits, in priority order, the recommendations that apply;
// refuel and rest are independent high-priority flags, delay-notification
// follows if the trip is running late, and on-track is the default when
// nothing else fires.
func (p *Predictor) advisories(vehicle domain.Vehicle, onTime domain.OnTimeStatus, fuelAtArrival, etaHours float64) []domain.AdvisoryKind {
	var out []domain.AdvisoryKind

	if fuelAtArrival < p.cfg.FuelLowThresholdPercent {
		out = append(out, domain.AdvisoryRefuel)
	}
	if vehicle.DrivingHoursLeft < etaHours {
		out = append(out, domain.AdvisoryRest)
	}
	if onTime == domain.Delayed {
		out = append(out, domain.AdvisoryDelay)
	}
	if len(out) == 0 {
		out = append(out, domain.AdvisoryOnTrack)
	}

	return out
}
