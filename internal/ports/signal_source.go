package ports

import (
	"context"

	"fleet-dispatch-engine/internal/domain"
)

// Signal is a unit of external input the Observer agent turns into a store
// event (and possibly a Trigger). Payload reuses the store's own tagged
// union of event payload types so a Signal converts to an Event by adding
// an id, timestamp, and sequence number.
type Signal struct {
	Type    domain.EventType
	Payload domain.EventPayload
}

// SignalSource is the pluggable port the Observer agent polls each cycle.
// The reference adapter is a stochastic generator; tests substitute a fixed
// or scripted source.
type SignalSource interface {
	Generate(ctx context.Context, snapshot domain.Snapshot) ([]Signal, error)
}
