// Package store implements the engine's single authoritative in-memory
// state container: the vehicle, load, and trip maps plus a bounded event
// ring, behind one sync.RWMutex. It is the in-memory analogue of the
// teacher's single-connection-pool discipline: one writer lock, many
// cheap readers.
package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"fleet-dispatch-engine/internal/apperrors"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/platform/logging"
)

// VehicleMutator mutates a vehicle in place. Returning an error aborts the
// write; the store is left unchanged.
type VehicleMutator func(v *domain.Vehicle) error

// LoadMutator mutates a load in place.
type LoadMutator func(l *domain.Load) error

// TripMutator mutates a trip in place.
type TripMutator func(t *domain.Trip) error

// Store is the engine's single source of truth. All fields are guarded by
// mu; callers never retain pointers into it.
type Store struct {
	mu sync.RWMutex

	vehicles map[string]domain.Vehicle
	loads    map[string]domain.Load
	trips    map[string]domain.Trip

	// tripByVehicle/tripByLoad enforce the "exactly one active trip per
	// en_route vehicle/matched load" invariant without a linear scan.
	tripByVehicle map[string]string
	tripByLoad    map[string]string

	events   []domain.Event
	ringSize int
	seq      uint64

	log logging.Logger
}

// New creates an empty Store with the given event ring capacity.
func New(ringSize int, log logging.Logger) *Store {
	if ringSize <= 0 {
		ringSize = 500
	}
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Store{
		vehicles:      make(map[string]domain.Vehicle),
		loads:         make(map[string]domain.Load),
		trips:         make(map[string]domain.Trip),
		tripByVehicle: make(map[string]string),
		tripByLoad:    make(map[string]string),
		ringSize:      ringSize,
		log:           log,
	}
}

// Snapshot returns a point-in-time consistent view. The returned maps are
// fresh copies; mutating them never affects the store.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vehicles := make(map[string]domain.Vehicle, len(s.vehicles))
	for k, v := range s.vehicles {
		vehicles[k] = v
	}
	loads := make(map[string]domain.Load, len(s.loads))
	for k, v := range s.loads {
		loads[k] = v
	}
	trips := make(map[string]domain.Trip, len(s.trips))
	for k, v := range s.trips {
		trips[k] = v
	}
	events := make([]domain.Event, len(s.events))
	copy(events, s.events)

	return domain.Snapshot{
		SnapshotAt: time.Now(),
		Vehicles:   vehicles,
		Loads:      loads,
		Trips:      trips,
		Events:     events,
	}
}

// ApplyEvents appends events to the ring in order, assigning each an
// intra-tick sequence number, and drops the oldest entries once the ring
// exceeds its configured size.
func (s *Store) ApplyEvents(events []domain.Event) {
	if len(events) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range events {
		s.seq++
		e.Seq = s.seq
		if e.EventID == "" {
			e.EventID = domain.NewID("evt")
		}
		s.events = append(s.events, e)
	}

	if over := len(s.events) - s.ringSize; over > 0 {
		s.events = s.events[over:]
	}
}

// InsertVehicle adds a vehicle to the fleet (used by initialization and by
// the Observer when it ingests a new vehicle signal). It is a Conflict to
// insert a vehicle id that already exists.
func (s *Store) InsertVehicle(v domain.Vehicle) error {
	const op = "store.InsertVehicle"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vehicles[v.VehicleID]; exists {
		return apperrors.Conflict(op, fmt.Errorf("vehicle %q already exists", v.VehicleID))
	}
	s.vehicles[v.VehicleID] = v
	return nil
}

// InsertLoad adds a load (used by initialization and by Observer's
// new_load_posted ingestion). It is a Conflict to insert a load id that
// already exists.
func (s *Store) InsertLoad(l domain.Load) error {
	const op = "store.InsertLoad"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.loads[l.LoadID]; exists {
		return apperrors.Conflict(op, fmt.Errorf("load %q already exists", l.LoadID))
	}
	s.loads[l.LoadID] = l
	return nil
}

// UpdateVehicle applies mut to the vehicle identified by id. NotFound if
// unknown; any error returned by mut propagates unmodified (callers may
// wrap it with a more specific apperrors.Kind).
func (s *Store) UpdateVehicle(id string, mut VehicleMutator) error {
	const op = "store.UpdateVehicle"
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vehicles[id]
	if !ok {
		return apperrors.NotFound(op, fmt.Errorf("vehicle %q not found", id))
	}
	if err := mut(&v); err != nil {
		return err
	}
	s.vehicles[id] = v
	return nil
}

// validLoadTransitions enumerates the load-status edges the engine's own
// agents ever drive: Matcher/Adapter take available -> matched, Motion
// takes matched -> in_transit -> delivered, and engine.CancelLoad takes
// available/matched -> cancelled. expired is reachable from available but
// nothing in this engine sets it yet.
var validLoadTransitions = map[domain.LoadStatus][]domain.LoadStatus{
	domain.LoadAvailable: {domain.LoadMatched, domain.LoadCancelled, domain.LoadExpired},
	domain.LoadMatched:   {domain.LoadInTransit, domain.LoadCancelled},
	domain.LoadInTransit: {domain.LoadDelivered},
}

func isValidLoadTransition(from, to domain.LoadStatus) bool {
	if from == to {
		return true
	}
	for _, allowed := range validLoadTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// UpdateLoad applies mut to the load identified by id. NotFound if unknown;
// Conflict if mut moves the load's status along an edge the state machine
// doesn't allow (e.g. delivered -> matched).
func (s *Store) UpdateLoad(id string, mut LoadMutator) error {
	const op = "store.UpdateLoad"
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.loads[id]
	if !ok {
		return apperrors.NotFound(op, fmt.Errorf("load %q not found", id))
	}
	before := l.Status
	if err := mut(&l); err != nil {
		return err
	}
	if !isValidLoadTransition(before, l.Status) {
		return apperrors.Conflict(op, fmt.Errorf("load %q: invalid status transition %s -> %s", id, before, l.Status))
	}
	s.loads[id] = l
	return nil
}

// InsertTrip inserts a new trip. Conflict if the vehicle or load is already
// referenced by another active trip, or if the trip id already exists.
func (s *Store) InsertTrip(t domain.Trip) error {
	const op = "store.InsertTrip"
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trips[t.TripID]; exists {
		return apperrors.Conflict(op, fmt.Errorf("trip %q already exists", t.TripID))
	}
	if existing, ok := s.tripByVehicle[t.VehicleID]; ok {
		return apperrors.Conflict(op, fmt.Errorf("vehicle %q already committed to trip %q", t.VehicleID, existing))
	}
	if existing, ok := s.tripByLoad[t.LoadID]; ok {
		return apperrors.Conflict(op, fmt.Errorf("load %q already committed to trip %q", t.LoadID, existing))
	}

	s.trips[t.TripID] = t
	s.tripByVehicle[t.VehicleID] = t.TripID
	s.tripByLoad[t.LoadID] = t.TripID
	return nil
}

// UpdateTrip applies mut to the trip identified by id. NotFound if unknown.
func (s *Store) UpdateTrip(id string, mut TripMutator) error {
	const op = "store.UpdateTrip"
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trips[id]
	if !ok {
		return apperrors.NotFound(op, fmt.Errorf("trip %q not found", id))
	}
	if err := mut(&t); err != nil {
		return err
	}
	s.trips[id] = t
	return nil
}

// RemoveTrip deletes a completed or cancelled trip and releases its
// vehicle/load index entries. NotFound if unknown.
func (s *Store) RemoveTrip(id string) error {
	const op = "store.RemoveTrip"
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trips[id]
	if !ok {
		return apperrors.NotFound(op, fmt.Errorf("trip %q not found", id))
	}
	delete(s.trips, id)
	if s.tripByVehicle[t.VehicleID] == id {
		delete(s.tripByVehicle, t.VehicleID)
	}
	if s.tripByLoad[t.LoadID] == id {
		delete(s.tripByLoad, t.LoadID)
	}
	return nil
}

// TripIDsSorted returns every trip id in lexicographic order, the
// deterministic processing order Motion and Adapter iterate in.
func (s *Store) TripIDsSorted() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.trips))
	for id := range s.trips {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
