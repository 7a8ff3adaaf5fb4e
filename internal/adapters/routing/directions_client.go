package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fleet-dispatch-engine/internal/domain"
)

// DirectionsClient calls an OpenRouteService-style directions endpoint: a
// generalization of the teacher's matrix/geocode client (ors_matrix.go,
// ors_geocode.go) to a route-geometry call that returns an ordered
// polyline instead of a scalar distance.
type DirectionsClient struct {
	session *http.Client
	apiKey  string
	baseURL string
	profile string
}

func NewDirectionsClient(baseURL, apiKey string, timeout time.Duration) *DirectionsClient {
	return &DirectionsClient{
		session: &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		baseURL: baseURL,
		profile: "driving-hgv",
	}
}

type directionsResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"` // [lng, lat] pairs
		} `json:"geometry"`
		Properties struct {
			Summary struct {
				Distance float64 `json:"distance"` // meters
				Duration float64 `json:"duration"`  // seconds
			} `json:"summary"`
		} `json:"properties"`
	} `json:"features"`
}

// Directions fetches a drivable polyline from start to end. The external
// service reports coordinates in [lng, lat] order; the returned Polyline
// is converted to this engine's [lat, lng] convention.
func (c *DirectionsClient) Directions(ctx context.Context, start, end domain.Location) (domain.Polyline, float64, int, error) {
	endpoint := fmt.Sprintf("%s/v2/directions/%s/geojson", c.baseURL, c.profile)

	body, err := json.Marshal(map[string]any{
		"coordinates": [][]float64{
			{start.Lng, start.Lat},
			{end.Lng, end.Lat},
		},
	})
	if err != nil {
		return domain.Polyline{}, 0, 0, fmt.Errorf("marshal directions request: %w", err)
	}

	resp, err := c.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := c.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return domain.Polyline{}, 0, 0, fmt.Errorf("directions request failed: %w", err)
	}
	defer resp.Body.Close()

	var decoded directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return domain.Polyline{}, 0, 0, fmt.Errorf("decode directions response: %w", err)
	}
	if len(decoded.Features) == 0 {
		return domain.Polyline{}, 0, 0, fmt.Errorf("directions response has no features")
	}

	coords := decoded.Features[0].Geometry.Coordinates
	if len(coords) < 2 {
		return domain.Polyline{}, 0, 0, fmt.Errorf("directions response has too few coordinates")
	}

	points := make([]domain.Location, len(coords))
	for i, c := range coords {
		if len(c) != 2 {
			return domain.Polyline{}, 0, 0, fmt.Errorf("malformed coordinate at index %d", i)
		}
		points[i] = domain.Location{Lng: c[0], Lat: c[1]}
	}

	summary := decoded.Features[0].Properties.Summary
	distanceKm := summary.Distance / 1000
	durationSeconds := int(summary.Duration)

	return domain.Polyline{Points: points}, distanceKm, durationSeconds, nil
}
