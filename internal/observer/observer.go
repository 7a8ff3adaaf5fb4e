// Package observer implements the Observer agent: it polls a pluggable
// ports.SignalSource each cycle, turns signals into store events (thinning
// any signal that carries data belonging to a new entity down to the
// public event shape), and raises triggers that let the Dispatch Loop run
// Matcher or Adapter ahead of schedule.
package observer

import (
	"context"
	"time"

	"fleet-dispatch-engine/internal/config"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/platform/logging"
	"fleet-dispatch-engine/internal/ports"
)

// Result is one cycle's output: events ready for the store's event ring,
// new Load entities the caller must insert before applying the events, and
// triggers for the Dispatch Loop.
type Result struct {
	Events   []domain.Event
	NewLoads []domain.Load
	Triggers []domain.TriggerKind
}

type Observer struct {
	source ports.SignalSource
	cfg    config.ObserverConfig
	log    logging.Logger
}

func New(source ports.SignalSource, cfg config.ObserverConfig, log logging.Logger) *Observer {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Observer{source: source, cfg: cfg, log: log}
}

// Cycle polls the signal source and derives events/triggers from the
// result and from the snapshot itself (idle vehicles, near-complete
// trips). A signal-source error never propagates: it is swallowed into an
// internal_error event and the cycle still returns its other findings.
func (o *Observer) Cycle(ctx context.Context, snapshot domain.Snapshot) Result {
	var res Result

	signals, err := o.source.Generate(ctx, snapshot)
	if err != nil {
		o.log.Warnf("observer: signal source error: %v", err)
		res.Events = append(res.Events, domain.Event{
			Type:    domain.EventInternalError,
			Payload: domain.InternalErrorPayload{Component: "observer.signal_source", Message: err.Error()},
		})
	}

	for _, sig := range signals {
		o.absorb(&res, sig)
	}

	o.scanSnapshot(&res, snapshot)

	return res
}

func (o *Observer) absorb(res *Result, sig ports.Signal) {
	if sig.Type == domain.EventNewLoadPosted {
		full, ok := sig.Payload.(domain.LoadPostedPayload)
		if !ok {
			res.Events = append(res.Events, domain.Event{
				Type:    domain.EventInternalError,
				Payload: domain.InternalErrorPayload{Component: "observer", Message: "malformed new_load_posted signal payload"},
			})
			return
		}

		load := domain.Load{
			LoadID:      full.LoadID,
			Origin:      full.Origin,
			Destination: full.Destination,
			WeightTons:  full.WeightTons,
			RatePerKm:   full.RatePerKm,
			Status:      domain.LoadAvailable,
		}
		res.NewLoads = append(res.NewLoads, load)
		res.Events = append(res.Events, domain.Event{
			Type:    domain.EventNewLoadPosted,
			Payload: domain.NewLoadPostedPayload{LoadID: load.LoadID},
		})

		if full.RatePerKm > o.cfg.HighPriorityRatePerKm {
			res.Triggers = append(res.Triggers, domain.TriggerHighPriorityLoadPosted)
		}
		return
	}

	res.Events = append(res.Events, domain.Event{Type: sig.Type, Payload: sig.Payload})

	if sig.Type == domain.EventTrafficAlert {
		res.Triggers = append(res.Triggers, domain.TriggerTrafficEvent)
	}
}

// scanSnapshot raises triggers from the state itself rather than from an
// external signal: an idle vehicle sitting past the timeout, or a trip
// close enough to delivery that Adapter should look at it now.
func (o *Observer) scanSnapshot(res *Result, snapshot domain.Snapshot) {
	idleTimeout := time.Duration(o.cfg.IdleTimeoutMinutes * float64(time.Minute))

	for _, v := range snapshot.Vehicles {
		if v.Status == domain.VehicleIdle && !v.LastActivityAt.IsZero() &&
			snapshot.SnapshotAt.Sub(v.LastActivityAt) >= idleTimeout {
			res.Triggers = append(res.Triggers, domain.TriggerIdleTimeout)
			break
		}
	}

	for _, t := range snapshot.Trips {
		if !t.IsTerminal() && t.Progress >= o.cfg.NearDeliveryProgress {
			res.Triggers = append(res.Triggers, domain.TriggerNearDelivery)
			break
		}
	}
}
