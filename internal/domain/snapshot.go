package domain

import "time"

// Snapshot is a read-only, point-in-time view of the store. Readers always
// observe a Snapshot; they never observe mid-mutation state, and any entity
// value in it is safe to retain without further synchronization.
type Snapshot struct {
	SnapshotAt time.Time
	Vehicles   map[string]Vehicle
	Loads      map[string]Load
	Trips      map[string]Trip
	Events     []Event // tail of the ring, oldest first
}

// VehiclesByStatus filters the snapshot's vehicles by status. An empty
// status returns every vehicle.
func (s Snapshot) VehiclesByStatus(status VehicleStatus) []Vehicle {
	out := make([]Vehicle, 0, len(s.Vehicles))
	for _, v := range s.Vehicles {
		if status == "" || v.Status == status {
			out = append(out, v)
		}
	}
	return out
}

// LoadsByStatus filters the snapshot's loads by status. An empty status
// returns every load.
func (s Snapshot) LoadsByStatus(status LoadStatus) []Load {
	out := make([]Load, 0, len(s.Loads))
	for _, l := range s.Loads {
		if status == "" || l.Status == status {
			out = append(out, l)
		}
	}
	return out
}

// ReservedLoadIDs returns the set of load ids named as some active trip's
// FollowupLoadID. Such a load is still available in status (it isn't
// assigned to a trip yet), but it is earmarked for that trip's vehicle once
// the trip completes, so callers enumerating available loads for fresh
// matching must exclude it.
func (s Snapshot) ReservedLoadIDs() map[string]bool {
	out := make(map[string]bool)
	for _, t := range s.Trips {
		if t.FollowupLoadID != "" {
			out[t.FollowupLoadID] = true
		}
	}
	return out
}
