package ports

import (
	"context"

	"fleet-dispatch-engine/internal/domain"
)

// RouteResult is a road-following path between two points, plus its
// aggregate distance and duration as reported (or estimated) by the
// provider.
type RouteResult struct {
	Polyline        domain.Polyline
	DistanceKm      float64
	DurationSeconds int
}

// RouteProvider fetches a drivable polyline between two coordinates. The
// contract never fails: implementations substitute a synthetic fallback
// polyline on timeout or error and flag it via Polyline.Fallback.
type RouteProvider interface {
	Route(ctx context.Context, start, end domain.Location) (RouteResult, error)
}
