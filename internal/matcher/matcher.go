// Package matcher implements the Matcher agent: enumerates feasible
// vehicle/load pairs, asks an external advisor which to commit, and
// instantiates trips for the approved, de-duplicated set.
package matcher

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"fleet-dispatch-engine/internal/apperrors"
	"fleet-dispatch-engine/internal/config"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/geo"
	"fleet-dispatch-engine/internal/platform/logging"
	"fleet-dispatch-engine/internal/platform/obs"
	"fleet-dispatch-engine/internal/ports"
	"fleet-dispatch-engine/internal/store"
)

// Feasibility is one vehicle/load pairing's computed economics.
type Feasibility struct {
	VehicleID      string
	LoadID         string
	PickupKm       float64
	LoadedKm       float64
	TotalKm        float64
	Revenue        float64
	Cost           float64
	Profit         float64
	ProfitMargin   float64
	Utilization    float64
	EstimatedHours float64
}

func (f Feasibility) meetsTargets(cfg config.MatcherConfig) bool {
	return f.ProfitMargin >= cfg.ProfitMarginMin && f.Utilization >= cfg.UtilizationMin
}

var pairPattern = regexp.MustCompile(`(\S+)\s*(?:→|->)\s*(\S+)`)

type Matcher struct {
	store   *store.Store
	routes  ports.RouteProvider
	advisor ports.Advisor
	cfg     config.MatcherConfig
	log     logging.Logger
}

func New(s *store.Store, routes ports.RouteProvider, advisor ports.Advisor, cfg config.MatcherConfig, log logging.Logger) *Matcher {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Matcher{store: s, routes: routes, advisor: advisor, cfg: cfg, log: log}
}

// Report is the detailed account of one Run, surfaced by the /match-loads
// endpoint alongside the plain count the Dispatch Loop needs.
type Report struct {
	OpportunitiesAnalyzed int
	MatchesCreated        int
	ApprovedMatches       []Feasibility
	AdvisorReasoning      string
}

// Run enumerates feasible pairs, consults the advisor (or falls back to a
// rule), and instantiates trips for the committed set. It returns the
// number of trips created.
func (m *Matcher) Run(ctx context.Context) (created int, err error) {
	report, err := m.RunReport(ctx)
	return report.MatchesCreated, err
}

// RunReport is Run's full-detail counterpart, reporting how many pairs were
// analyzed, which ones were approved, and the advisor's own reasoning text
// (empty when the fallback rule decided instead).
func (m *Matcher) RunReport(ctx context.Context) (report Report, err error) {
	defer obs.Time(ctx, m.log, "matcher.Run")(&err)

	snapshot := m.store.Snapshot()
	records := m.enumerate(snapshot)
	report.OpportunitiesAnalyzed = len(records)
	if len(records) == 0 {
		return report, nil
	}

	sort.Slice(records, func(i, j int) bool { return records[i].ProfitMargin > records[j].ProfitMargin })

	topK := records
	if len(topK) > m.cfg.TopK {
		topK = topK[:m.cfg.TopK]
	}

	approved, reasoning := m.approve(ctx, topK)
	report.AdvisorReasoning = reasoning

	committedVehicles := make(map[string]bool)
	committedLoads := make(map[string]bool)

	for _, f := range approved {
		if committedVehicles[f.VehicleID] || committedLoads[f.LoadID] {
			continue
		}
		if err := m.instantiate(ctx, f); err != nil {
			if apperrors.Is(err, apperrors.KindConflict) {
				m.log.Warnf("matcher: store conflict committing %s/%s, skipping: %v", f.VehicleID, f.LoadID, err)
				continue
			}
			m.log.Warnf("matcher: failed to instantiate trip for %s/%s: %v", f.VehicleID, f.LoadID, err)
			continue
		}
		committedVehicles[f.VehicleID] = true
		committedLoads[f.LoadID] = true
		report.ApprovedMatches = append(report.ApprovedMatches, f)
		report.MatchesCreated++
	}

	return report, nil
}

// enumerate computes one Feasibility record per (idle vehicle, available
// load) pair that can physically carry the load before its pickup window
// closes.
func (m *Matcher) enumerate(snapshot domain.Snapshot) []Feasibility {
	now := time.Now()
	reserved := snapshot.ReservedLoadIDs()
	var out []Feasibility

	for _, v := range snapshot.VehiclesByStatus(domain.VehicleIdle) {
		for _, l := range snapshot.LoadsByStatus(domain.LoadAvailable) {
			if reserved[l.LoadID] {
				continue
			}
			if l.WeightTons > v.CapacityTons {
				continue
			}
			if !l.PickupWindowEnd.IsZero() && now.After(l.PickupWindowEnd) {
				continue
			}

			pickupKm := geo.DistanceKm(v.CurrentLocation, l.Origin)
			loadedKm := l.DistanceKm
			if loadedKm <= 0 {
				loadedKm = geo.DistanceKm(l.Origin, l.Destination)
			}
			totalKm := pickupKm + loadedKm

			revenue := l.RatePerKm * loadedKm
			estHours := totalKm / m.cfg.AssumedSpeedKmh
			cost := m.cfg.FuelCostPerKm*totalKm + m.cfg.DriverCostPerHr*estHours
			profit := revenue - cost

			margin := 0.0
			if revenue > 0 {
				margin = profit / revenue
			}
			utilization := 0.0
			if totalKm > 0 {
				utilization = loadedKm / totalKm
			}

			out = append(out, Feasibility{
				VehicleID: v.VehicleID, LoadID: l.LoadID,
				PickupKm: pickupKm, LoadedKm: loadedKm, TotalKm: totalKm,
				Revenue: revenue, Cost: cost, Profit: profit,
				ProfitMargin: margin, Utilization: utilization, EstimatedHours: estHours,
			})
		}
	}

	return out
}

// approve submits the top-K records to the advisor and parses the approved
// set from its response, falling back to a rule on error or timeout; an
// unparseable reply yields an empty approved set. The second return is the advisor's raw reply, empty
// whenever the fallback rule decided instead.
func (m *Matcher) approve(ctx context.Context, topK []Feasibility) ([]Feasibility, string) {
	if m.advisor == nil {
		return m.fallback(topK), ""
	}

	timeout := time.Duration(m.cfg.AdvisorTimeoutS) * time.Second
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	reply, err := m.advisor.Complete(callCtx, m.systemPrompt(), m.userPrompt(topK))
	if err != nil {
		m.log.Warnf("matcher: advisor call failed, using fallback: %v", err)
		return m.fallback(topK), ""
	}

	return m.parseApproved(reply, topK), reply
}

func (m *Matcher) systemPrompt() string {
	return fmt.Sprintf(
		"You assign trucks to freight loads to maximize profit. "+
			"Approve a pair only by writing its identifiers on one line as `vehicle-id -> load-id`. "+
			"Prefer pairs with profit margin at least %.0f%% and utilization at least %.0f%%.",
		m.cfg.ProfitMarginMin*100, m.cfg.UtilizationMin*100,
	)
}

func (m *Matcher) userPrompt(records []Feasibility) string {
	var b strings.Builder
	b.WriteString("Candidate vehicle/load pairs:\n")
	for _, f := range records {
		fmt.Fprintf(&b, "%s -> %s: margin=%.2f utilization=%.2f profit=%.2f total_km=%.1f\n",
			f.VehicleID, f.LoadID, f.ProfitMargin, f.Utilization, f.Profit, f.TotalKm)
	}
	return b.String()
}

// parseApproved scans reply line by line for `vehicle-id -> load-id` (or
// the unicode arrow), keeping only matches against a known candidate pair.
func (m *Matcher) parseApproved(reply string, candidates []Feasibility) []Feasibility {
	byPair := make(map[string]Feasibility, len(candidates))
	for _, f := range candidates {
		byPair[f.VehicleID+"\x00"+f.LoadID] = f
	}

	var approved []Feasibility
	for _, line := range strings.Split(reply, "\n") {
		match := pairPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		key := strings.TrimSpace(match[1]) + "\x00" + strings.TrimSpace(match[2])
		if f, ok := byPair[key]; ok {
			approved = append(approved, f)
		}
	}

	return approved
}

// fallback approves the top-scoring pairs whose metrics satisfy both
// targets, up to the configured fan-out.
func (m *Matcher) fallback(candidates []Feasibility) []Feasibility {
	var approved []Feasibility
	for _, f := range candidates {
		if len(approved) >= m.cfg.FallbackFanout {
			break
		}
		if f.meetsTargets(m.cfg) {
			approved = append(approved, f)
		}
	}
	return approved
}

// instantiate builds the trip for a committed pair: fetches pickup and
// loaded leg polylines, then applies the trip/load/vehicle/event writes.
// Store conflicts (another writer raced this pair) propagate unchanged so
// Run can skip and continue.
func (m *Matcher) instantiate(ctx context.Context, f Feasibility) error {
	snapshot := m.store.Snapshot()
	v, ok := snapshot.Vehicles[f.VehicleID]
	if !ok {
		return apperrors.NotFound("matcher.instantiate", fmt.Errorf("vehicle %q vanished", f.VehicleID))
	}
	l, ok := snapshot.Loads[f.LoadID]
	if !ok {
		return apperrors.NotFound("matcher.instantiate", fmt.Errorf("load %q vanished", f.LoadID))
	}

	pickup, err := m.routes.Route(ctx, v.CurrentLocation, l.Origin)
	if err != nil {
		return fmt.Errorf("fetch pickup leg: %w", err)
	}
	loaded, err := m.routes.Route(ctx, l.Origin, l.Destination)
	if err != nil {
		return fmt.Errorf("fetch loaded leg: %w", err)
	}

	points := make([]domain.Location, 0, len(pickup.Polyline.Points)+len(loaded.Polyline.Points))
	points = append(points, pickup.Polyline.Points...)
	points = append(points, loaded.Polyline.Points...)

	trip := domain.Trip{
		TripID:       domain.NewID("trip"),
		VehicleID:    f.VehicleID,
		LoadID:       f.LoadID,
		Phase:        domain.TripPlanning,
		Route:        domain.Polyline{Points: points, Fallback: pickup.Polyline.Fallback || loaded.Polyline.Fallback},
		RouteTotalKm: pickup.DistanceKm + loaded.DistanceKm,
		EmptyLegKm:   pickup.DistanceKm,
		LoadedLegKm:  loaded.DistanceKm,
		Revenue:      f.Revenue,
		FuelCost:     f.Cost,
		NetProfit:    f.Profit,
		StartedAt:    time.Now(),
	}

	if err := m.store.InsertTrip(trip); err != nil {
		return err
	}

	vehicleStatus := domain.VehicleEnRouteEmpty
	if pickup.DistanceKm <= 0.01 {
		vehicleStatus = domain.VehicleEnRouteLoaded
	}
	if err := m.store.UpdateVehicle(f.VehicleID, func(v *domain.Vehicle) error {
		v.Status = vehicleStatus
		return nil
	}); err != nil {
		return fmt.Errorf("set vehicle status: %w", err)
	}

	if err := m.store.UpdateLoad(f.LoadID, func(l *domain.Load) error {
		l.Status = domain.LoadMatched
		l.AssignedVehicleID = f.VehicleID
		return nil
	}); err != nil {
		return fmt.Errorf("mark load matched: %w", err)
	}

	m.store.ApplyEvents([]domain.Event{
		{Type: domain.EventLoadMatched, Payload: domain.LoadMatchedPayload{LoadID: f.LoadID, VehicleID: f.VehicleID}},
		{Type: domain.EventTripStarted, Payload: domain.TripStartedPayload{TripID: trip.TripID, VehicleID: f.VehicleID, LoadID: f.LoadID}},
	})

	return nil
}
