// Package routing implements the Route Cache & Client: a bounded,
// TTL-expiring cache in front of an external directions service, with
// single-flight collapsing of concurrent misses and a synthetic fallback
// polyline when the service cannot be reached in time.
package routing

import (
	"context"
	"fmt"
	"math"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"fleet-dispatch-engine/internal/config"
	"fleet-dispatch-engine/internal/domain"
	"fleet-dispatch-engine/internal/geo"
	"fleet-dispatch-engine/internal/platform/logging"
	"fleet-dispatch-engine/internal/platform/obs"
	"fleet-dispatch-engine/internal/ports"
)

type cacheEntry struct {
	result    ports.RouteResult
	expiresAt time.Time
}

// Cache implements ports.RouteProvider. Its public contract never fails: a
// fallback polyline is substituted on timeout, error, or missing
// credentials, and Polyline.Fallback tells the caller so.
type Cache struct {
	lru     *lru.Cache[string, cacheEntry]
	sf      singleflight.Group
	client  *DirectionsClient
	timeout time.Duration
	ttl     time.Duration
	log     logging.Logger
}

// New builds a Cache from the engine's route configuration. If cfg.APIKey
// is empty, Route always returns a synthesized polyline without attempting
// a network call.
func New(cfg config.RouteConfig, log logging.Logger) (*Cache, error) {
	l, err := lru.New[string, cacheEntry](cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("routing.New: create lru: %w", err)
	}
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Cache{
		lru:     l,
		client:  NewDirectionsClient(cfg.BaseURL, cfg.APIKey, time.Duration(cfg.TimeoutS)*time.Second),
		timeout: time.Duration(cfg.TimeoutS) * time.Second,
		ttl:     time.Duration(cfg.CacheTTLS) * time.Second,
		log:     log,
	}, nil
}

// roundKey keys the cache by endpoint pairs rounded to 3 decimal places
// (~110m resolution), so nearby lookups share a cache entry.
func roundKey(start, end domain.Location) string {
	round := func(f float64) float64 {
		return math.Round(f*1000) / 1000
	}
	return fmt.Sprintf("%.3f,%.3f|%.3f,%.3f", round(start.Lat), round(start.Lng), round(end.Lat), round(end.Lng))
}

// Route returns a cached or freshly fetched polyline, falling back to a
// synthetic straight-line approximation when the external call cannot
// complete within its budget.
func (c *Cache) Route(ctx context.Context, start, end domain.Location) (_ ports.RouteResult, err error) {
	defer obs.Time(ctx, c.log, "routing.Route")(&err)

	key := roundKey(start, end)

	if entry, ok := c.lru.Get(key); ok && time.Now().Before(entry.expiresAt) {
		return entry.result, nil
	}

	v, _, _ := c.sf.Do(key, func() (any, error) {
		result := c.fetchOrFallback(ctx, start, end)
		c.lru.Add(key, cacheEntry{result: result, expiresAt: time.Now().Add(c.ttl)})
		return result, nil
	})

	return v.(ports.RouteResult), nil
}

// fetchOrFallback attempts the external call under a bounded deadline and
// substitutes a synthesized polyline on any failure. It never returns an
// error: the contract is that a usable route is always produced.
func (c *Cache) fetchOrFallback(ctx context.Context, start, end domain.Location) ports.RouteResult {
	if c.client.apiKey == "" {
		return c.synthesize(start, end)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	poly, distanceKm, durationSeconds, err := c.client.Directions(callCtx, start, end)
	if err != nil {
		c.log.Warnf("directions call failed, falling back to synthetic route: %v", err)
		return c.synthesize(start, end)
	}

	return ports.RouteResult{Polyline: poly, DistanceKm: distanceKm, DurationSeconds: durationSeconds}
}

func (c *Cache) synthesize(start, end domain.Location) ports.RouteResult {
	poly := geo.SynthesizePolyline(start, end, 5, 20)
	distanceKm := geo.PolylineLengthKm(poly)
	return ports.RouteResult{
		Polyline:        poly,
		DistanceKm:      distanceKm,
		DurationSeconds: int(distanceKm / 60 * 3600),
	}
}
