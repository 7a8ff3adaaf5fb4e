package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fleet-dispatch-engine/internal/domain"
)

func TestDistanceKmKnownPair(t *testing.T) {
	phoenix := domain.Location{Lat: 33.4484, Lng: -112.0740}
	tucson := domain.Location{Lat: 32.2226, Lng: -110.9747}

	d := DistanceKm(phoenix, tucson)

	assert.InDelta(t, 174, d, 10)
}

func TestDistanceKmSamePoint(t *testing.T) {
	p := domain.Location{Lat: 40, Lng: -90}
	assert.InDelta(t, 0, DistanceKm(p, p), 1e-9)
}

func TestSynthesizePolylineMinPoints(t *testing.T) {
	start := domain.Location{Lat: 0, Lng: 0}
	end := domain.Location{Lat: 0.01, Lng: 0.01}

	poly := SynthesizePolyline(start, end, 5, 20)

	assert.True(t, poly.Fallback)
	assert.Len(t, poly.Points, 20)
	assert.Equal(t, start, poly.Points[0])
	assert.Equal(t, end, poly.Points[len(poly.Points)-1])
}

func TestSynthesizePolylineDensityScalesPointCount(t *testing.T) {
	start := domain.Location{Lat: 33.4484, Lng: -112.0740}
	end := domain.Location{Lat: 40.7128, Lng: -74.0060}

	poly := SynthesizePolyline(start, end, 5, 20)

	assert.Greater(t, len(poly.Points), 20)
}

func TestSampleAtBoundaries(t *testing.T) {
	poly := domain.Polyline{Points: []domain.Location{
		{Lat: 0, Lng: 0},
		{Lat: 1, Lng: 1},
		{Lat: 2, Lng: 2},
	}}

	assert.Equal(t, poly.Points[0], SampleAt(poly, 0))
	assert.Equal(t, poly.Points[2], SampleAt(poly, 1))
}

func TestSampleAtMidpoint(t *testing.T) {
	poly := domain.Polyline{Points: []domain.Location{
		{Lat: 0, Lng: 0},
		{Lat: 2, Lng: 2},
	}}

	got := SampleAt(poly, 0.5)
	assert.InDelta(t, 1, got.Lat, 1e-9)
	assert.InDelta(t, 1, got.Lng, 1e-9)
}

func TestPolylineLengthKmSumsSegments(t *testing.T) {
	a := domain.Location{Lat: 0, Lng: 0}
	b := domain.Location{Lat: 0, Lng: 1}
	c := domain.Location{Lat: 0, Lng: 2}

	poly := domain.Polyline{Points: []domain.Location{a, b, c}}

	assert.InDelta(t, DistanceKm(a, b)+DistanceKm(b, c), PolylineLengthKm(poly), 1e-6)
}
