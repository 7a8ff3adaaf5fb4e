// Package adapter implements the Adapter agent: for each in-flight trip it
// decides among CONTINUE, ADJUST_ROUTE, and FOLLOW_UP_LOAD and applies the
// decision, consulting an external advisor with a rule-based fallback.
package adapter

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"fleet-dispatch-engine/internal/config"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/geo"
	"fleet-dispatch-engine/internal/platform/logging"
	"fleet-dispatch-engine/internal/platform/obs"
	"fleet-dispatch-engine/internal/ports"
	"fleet-dispatch-engine/internal/store"
)

// situation summarizes recent disturbances for one trip's vehicle.
type situation struct {
	TotalDelayMinutes float64
	FuelLow           bool
	DriverHoursLow    bool
}

// opportunity is a candidate follow-up load reachable within the detour
// budget of a trip's destination.
type opportunity struct {
	LoadID       string
	DetourKm     float64
	LoadedKm     float64
	Cost         float64
	Revenue      float64
	Profit       float64
	ProfitMargin float64
}

type Adapter struct {
	store   *store.Store
	advisor ports.Advisor
	cfg     config.AdapterConfig
	matcher config.MatcherConfig // shares cost coefficients with the Matcher
	log     logging.Logger
}

func New(s *store.Store, advisor ports.Advisor, cfg config.AdapterConfig, matcherCfg config.MatcherConfig, log logging.Logger) *Adapter {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Adapter{store: s, advisor: advisor, cfg: cfg, matcher: matcherCfg, log: log}
}

// Decision is one trip's outcome from a Run, surfaced by the /manage-routes
// endpoint.
type Decision struct {
	TripID    string
	VehicleID string
	Decision  domain.AdapterDecision
	Changed   bool
}

// Run evaluates every trip in en_route_to_pickup or in_transit and applies
// a decision to each. It returns the number of trips whose decision
// changed trip state (ADJUST_ROUTE or FOLLOW_UP_LOAD).
func (a *Adapter) Run(ctx context.Context) (applied int, err error) {
	decisions, err := a.RunReport(ctx)
	for _, d := range decisions {
		if d.Changed {
			applied++
		}
	}
	return applied, err
}

// RunReport is Run's full-detail counterpart, reporting the decision made
// for every trip evaluated, not just the count that changed state.
func (a *Adapter) RunReport(ctx context.Context) (decisions []Decision, err error) {
	defer obs.Time(ctx, a.log, "adapter.Run")(&err)

	snapshot := a.store.Snapshot()

	for _, tripID := range a.store.TripIDsSorted() {
		trip, ok := snapshot.Trips[tripID]
		if !ok || (trip.Phase != domain.TripEnRouteToPickup && trip.Phase != domain.TripInTransit) {
			continue
		}
		vehicle, ok := snapshot.Vehicles[trip.VehicleID]
		if !ok {
			continue
		}

		decision, opp := a.decide(ctx, snapshot, trip, vehicle)
		changed, applyErr := a.apply(trip, decision, opp)
		if applyErr != nil {
			a.log.Warnf("adapter: apply %s on trip %s failed: %v", decision, tripID, applyErr)
			continue
		}
		decisions = append(decisions, Decision{TripID: tripID, VehicleID: trip.VehicleID, Decision: decision, Changed: changed})
	}

	return decisions, nil
}

func (a *Adapter) decide(ctx context.Context, snapshot domain.Snapshot, trip domain.Trip, vehicle domain.Vehicle) (domain.AdapterDecision, opportunity) {
	sit := a.detectDisturbance(snapshot, trip.VehicleID)
	opportunities := a.searchOpportunities(snapshot, trip)

	decision, opp, err := a.consultAdvisor(ctx, sit, opportunities)
	if err != nil {
		a.log.Warnf("adapter: advisor unavailable for trip %s, using fallback: %v", trip.TripID, err)
		return a.fallback(sit, opportunities)
	}
	return decision, opp
}

// detectDisturbance scans the event ring for signals concerning this
// vehicle: accumulated traffic delay and fuel/driver-hours warnings.
func (a *Adapter) detectDisturbance(snapshot domain.Snapshot, vehicleID string) situation {
	var sit situation
	for _, e := range snapshot.Events {
		switch p := e.Payload.(type) {
		case domain.TrafficAlertPayload:
			if p.VehicleID == vehicleID {
				sit.TotalDelayMinutes += p.DelayMinutes
			}
		case domain.FuelLowPayload:
			if p.VehicleID == vehicleID {
				sit.FuelLow = true
			}
		case domain.DriverRestRequiredPayload:
			if p.VehicleID == vehicleID {
				sit.DriverHoursLow = true
			}
		}
	}
	return sit
}

// searchOpportunities finds available loads whose origin lies within the
// detour budget of the trip's destination, keeping only positive-profit
// candidates, capped to the top M by profit.
func (a *Adapter) searchOpportunities(snapshot domain.Snapshot, trip domain.Trip) []opportunity {
	load, ok := snapshot.Loads[trip.LoadID]
	if !ok {
		return nil
	}

	reserved := snapshot.ReservedLoadIDs()
	var out []opportunity
	for _, candidate := range snapshot.LoadsByStatus(domain.LoadAvailable) {
		if reserved[candidate.LoadID] {
			continue
		}
		detourKm := geo.DistanceKm(load.Destination, candidate.Origin)
		if detourKm > a.cfg.DetourBudgetKm {
			continue
		}
		loadedKm := candidate.DistanceKm
		if loadedKm <= 0 {
			loadedKm = geo.DistanceKm(candidate.Origin, candidate.Destination)
		}

		totalKm := detourKm + loadedKm
		revenue := candidate.RatePerKm * loadedKm
		cost := a.matcher.FuelCostPerKm * totalKm
		profit := revenue - cost
		if profit <= 0 {
			continue
		}
		margin := profit / revenue

		out = append(out, opportunity{
			LoadID: candidate.LoadID, DetourKm: detourKm, LoadedKm: loadedKm,
			Cost: cost, Revenue: revenue, Profit: profit, ProfitMargin: margin,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Profit > out[j].Profit })
	if len(out) > a.cfg.OpportunitiesTopM {
		out = out[:a.cfg.OpportunitiesTopM]
	}
	return out
}

// consultAdvisor submits the situation and opportunities to the advisor
// and parses a leading DECISION: token from the reply.
func (a *Adapter) consultAdvisor(ctx context.Context, sit situation, opportunities []opportunity) (domain.AdapterDecision, opportunity, error) {
	if a.advisor == nil {
		return "", opportunity{}, fmt.Errorf("no advisor configured")
	}

	timeout := time.Duration(a.cfg.AdvisorTimeoutS) * time.Second
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply, err := a.advisor.Complete(callCtx, a.systemPrompt(), a.userPrompt(sit, opportunities))
	if err != nil {
		return "", opportunity{}, err
	}

	decision, loadID, ok := parseDecision(reply)
	if !ok {
		return "", opportunity{}, fmt.Errorf("unparseable advisor reply")
	}

	if decision == domain.DecisionFollowUpLoad {
		for _, opp := range opportunities {
			if opp.LoadID == loadID {
				return decision, opp, nil
			}
		}
		return "", opportunity{}, fmt.Errorf("advisor chose unknown load %q", loadID)
	}

	return decision, opportunity{}, nil
}

func (a *Adapter) systemPrompt() string {
	return "You manage an in-flight delivery trip. Reply with a single leading line " +
		"`DECISION: CONTINUE`, `DECISION: ADJUST_ROUTE`, or `DECISION: FOLLOW_UP_LOAD <load-id>`."
}

func (a *Adapter) userPrompt(sit situation, opportunities []opportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total traffic delay: %.1f minutes. Fuel low: %v. Driver hours low: %v.\n",
		sit.TotalDelayMinutes, sit.FuelLow, sit.DriverHoursLow)
	b.WriteString("Follow-up opportunities:\n")
	for _, o := range opportunities {
		fmt.Fprintf(&b, "%s: detour_km=%.1f profit=%.2f margin=%.2f\n", o.LoadID, o.DetourKm, o.Profit, o.ProfitMargin)
	}
	return b.String()
}

var decisionLinePrefix = "DECISION:"

// parseDecision looks for the first line beginning with DECISION: and
// extracts the decision token, and for FOLLOW_UP_LOAD the load id after it.
func parseDecision(reply string) (domain.AdapterDecision, string, bool) {
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, decisionLinePrefix) {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(line, decisionLinePrefix))
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			continue
		}
		switch domain.AdapterDecision(fields[0]) {
		case domain.DecisionContinue:
			return domain.DecisionContinue, "", true
		case domain.DecisionAdjustRoute:
			return domain.DecisionAdjustRoute, "", true
		case domain.DecisionFollowUpLoad:
			if len(fields) < 2 {
				return "", "", false
			}
			return domain.DecisionFollowUpLoad, fields[1], true
		}
	}
	return "", "", false
}

// fallback applies the rule-based decision when the advisor cannot be
// consulted: a large enough delay with a strong enough opportunity
// triggers a follow-up; any delay otherwise triggers a route adjustment;
// no delay means continue.
func (a *Adapter) fallback(sit situation, opportunities []opportunity) (domain.AdapterDecision, opportunity) {
	if sit.TotalDelayMinutes >= a.cfg.FollowupDelayMinMin && len(opportunities) > 0 {
		top := opportunities[0]
		if top.ProfitMargin >= a.cfg.FollowupMarginMin {
			return domain.DecisionFollowUpLoad, top
		}
	}
	if sit.TotalDelayMinutes > 0 {
		return domain.DecisionAdjustRoute, opportunity{}
	}
	return domain.DecisionContinue, opportunity{}
}

// apply writes the decision's effect. CONTINUE is a true no-op. Any
// failure path here defaults the trip to CONTINUE behavior: no trip is
// ever left in an inconsistent phase.
func (a *Adapter) apply(trip domain.Trip, decision domain.AdapterDecision, opp opportunity) (changed bool, err error) {
	switch decision {
	case domain.DecisionAdjustRoute:
		if err := a.store.UpdateTrip(trip.TripID, func(t *domain.Trip) error {
			t.Route = domain.Polyline{}
			t.DelaySeconds += 15 * 60
			return nil
		}); err != nil {
			return false, err
		}
		a.store.ApplyEvents([]domain.Event{{
			Type:    domain.EventDeliveryDelay,
			Payload: domain.DeliveryDelayPayload{TripID: trip.TripID, DelayMinutes: 15, Reason: "adapter_route_adjustment"},
		}})
		return true, nil

	case domain.DecisionFollowUpLoad:
		// The load stays available — it isn't handed to this vehicle until
		// Motion actually starts the follow-up trip when the current one
		// completes (Load.AssignedVehicleID is only ever set alongside
		// matched/in_transit). Until then, searchOpportunities and the
		// Matcher both exclude it via ReservedLoadIDs so it can't be
		// double-booked to a second vehicle.
		if err := a.store.UpdateTrip(trip.TripID, func(t *domain.Trip) error {
			t.FollowupLoadID = opp.LoadID
			return nil
		}); err != nil {
			return false, err
		}
		return true, nil

	default:
		// CONTINUE: no state change. The closed event-type enumeration has no
		// generic "info" shape, so this is a true no-op rather than a
		// synthesized event.
		return false, nil
	}
}
