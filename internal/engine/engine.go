// Package engine is the composition root the HTTP API talks to: it wires
// the Store together with the Motion Engine, Predictor, Observer, Matcher,
// and Adapter agents and exposes the handful of operations a handler needs,
// so no handler ever imports an agent package directly.
package engine

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"fleet-dispatch-engine/internal/adapter"
	"fleet-dispatch-engine/internal/adapters/signals"
	"fleet-dispatch-engine/internal/apperrors"
	"fleet-dispatch-engine/internal/config"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/matcher"
	"fleet-dispatch-engine/internal/motion"
	"fleet-dispatch-engine/internal/observer"
	"fleet-dispatch-engine/internal/platform/logging"
	"fleet-dispatch-engine/internal/predictor"
	"fleet-dispatch-engine/internal/store"
)

// Engine holds every long-lived collaborator the API surface delegates to.
type Engine struct {
	store     *store.Store
	motion    *motion.Engine
	predictor *predictor.Predictor
	observer  *observer.Observer
	matcher   *matcher.Matcher
	adapter   *adapter.Adapter
	cfg       config.Config
	log       logging.Logger
	rng       *rand.Rand
	cityNames []string
}

// New wires an Engine from its already-constructed collaborators. src
// seeds the random fleet/load generator behind Initialize; pass
// rand.NewSource(time.Now().UnixNano()) for the running server and a fixed
// seed in tests.
func New(s *store.Store, mo *motion.Engine, pred *predictor.Predictor, ob *observer.Observer, ma *matcher.Matcher, ad *adapter.Adapter, cfg config.Config, src rand.Source, log logging.Logger) *Engine {
	if log == nil {
		log = logging.NopLogger{}
	}
	names := make([]string, 0, len(signals.Cities))
	for name := range signals.Cities {
		names = append(names, name)
	}
	sort.Strings(names)
	return &Engine{
		store: s, motion: mo, predictor: pred, observer: ob, matcher: ma, adapter: ad,
		cfg: cfg, log: log, rng: rand.New(src), cityNames: names,
	}
}

// State returns the full current Snapshot.
func (e *Engine) State() domain.Snapshot {
	return e.store.Snapshot()
}

// Vehicles returns vehicles filtered by status; an empty status returns the
// whole fleet.
func (e *Engine) Vehicles(status domain.VehicleStatus) []domain.Vehicle {
	return e.store.Snapshot().VehiclesByStatus(status)
}

// Loads returns loads filtered by status; an empty status returns every
// load.
func (e *Engine) Loads(status domain.LoadStatus) []domain.Load {
	return e.store.Snapshot().LoadsByStatus(status)
}

// Events returns up to limit of the most recent events, newest first,
// optionally filtered to one event type. limit <= 0 means no cap.
func (e *Engine) Events(limit int, eventType domain.EventType) []domain.Event {
	all := e.store.Snapshot().Events

	out := make([]domain.Event, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if eventType != "" && all[i].Type != eventType {
			continue
		}
		out = append(out, all[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Cycle runs the Observer once against the current snapshot, inserting any
// newly observed loads and applying its events/triggers exactly as the
// Dispatch Loop's own Observer cadence does.
func (e *Engine) Cycle(ctx context.Context) observer.Result {
	snapshot := e.store.Snapshot()
	res := e.observer.Cycle(ctx, snapshot)

	for _, l := range res.NewLoads {
		if err := e.store.InsertLoad(l); err != nil {
			e.log.Warnf("engine: cycle new load insert failed: %v", err)
		}
	}
	e.store.ApplyEvents(res.Events)

	return res
}

// MatchLoads runs the Matcher once and returns its full report.
func (e *Engine) MatchLoads(ctx context.Context) (matcher.Report, error) {
	return e.matcher.RunReport(ctx)
}

// ManageRoutes runs the Adapter once and returns the decision made for
// every trip it evaluated.
func (e *Engine) ManageRoutes(ctx context.Context) ([]adapter.Decision, error) {
	return e.adapter.RunReport(ctx)
}

// SimulateMovement advances the Motion Engine by one configured tick and
// returns the Predictor's output against the resulting state.
func (e *Engine) SimulateMovement(ctx context.Context) ([]predictor.Prediction, error) {
	if err := e.motion.Tick(ctx, e.cfg.Tick.Motion()); err != nil {
		return nil, err
	}
	snapshot := e.store.Snapshot()
	return e.predictor.Predict(time.Now(), snapshot), nil
}

// CancelLoad cancels a posted load. A load still available is simply marked
// cancelled. A matched load's referencing trip is torn down first and its
// vehicle released to idle, since a matched load is never left without the
// one trip that references it (nor a trip left referencing a cancelled
// load); an in_transit load is rejected by the store's own transition table
// since cancellation only reaches it from available or matched.
func (e *Engine) CancelLoad(loadID string) (domain.Event, error) {
	snapshot := e.store.Snapshot()
	if _, ok := snapshot.Loads[loadID]; !ok {
		return domain.Event{}, apperrors.NotFound("engine.CancelLoad", fmt.Errorf("load %q not found", loadID))
	}

	var trip domain.Trip
	var hasTrip bool
	for _, t := range snapshot.Trips {
		if t.LoadID == loadID {
			trip, hasTrip = t, true
			break
		}
	}

	if err := e.store.UpdateLoad(loadID, func(l *domain.Load) error {
		l.Status = domain.LoadCancelled
		l.AssignedVehicleID = ""
		return nil
	}); err != nil {
		return domain.Event{}, err
	}

	if hasTrip {
		if err := e.store.RemoveTrip(trip.TripID); err != nil {
			return domain.Event{}, err
		}
		if err := e.store.UpdateVehicle(trip.VehicleID, func(v *domain.Vehicle) error {
			v.Status = domain.VehicleIdle
			v.CargoTons = 0
			return nil
		}); err != nil {
			return domain.Event{}, err
		}
	}

	evt := domain.Event{Type: domain.EventLoadCancelled, Payload: domain.LoadCancelledPayload{LoadID: loadID}}
	e.store.ApplyEvents([]domain.Event{evt})
	return evt, nil
}
