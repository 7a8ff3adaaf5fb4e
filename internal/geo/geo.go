// Package geo provides pure, stateless geographic helpers shared by the
// motion engine, matcher, adapter, and predictor: great-circle distance,
// bearing, and polyline progress sampling.
package geo

import (
	"math"

	"fleet-dispatch-engine/internal/domain"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle (haversine) distance between two
// points in kilometers.
func DistanceKm(a, b domain.Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	s := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Asin(math.Sqrt(s))

	return earthRadiusKm * c
}

// Interpolate returns the point a fraction t in [0, 1] of the way along the
// straight line from a to b. It is not great-circle accurate, but it is
// good enough for synthetic fallback polylines and for sub-segment motion
// sampling over short hops.
func Interpolate(a, b domain.Location, t float64) domain.Location {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return domain.Location{
		Lat: a.Lat + (b.Lat-a.Lat)*t,
		Lng: a.Lng + (b.Lng-a.Lng)*t,
	}
}

// SynthesizePolyline builds a linear-interpolation fallback route between
// start and end, with roughly one point per densityKm and never fewer than
// minPoints, for use when the routing service cannot be reached in time.
func SynthesizePolyline(start, end domain.Location, densityKm float64, minPoints int) domain.Polyline {
	if densityKm <= 0 {
		densityKm = 5
	}
	if minPoints < 2 {
		minPoints = 2
	}

	dist := DistanceKm(start, end)
	n := int(math.Ceil(dist/densityKm)) + 1
	if n < minPoints {
		n = minPoints
	}

	points := make([]domain.Location, n)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(n-1)
		points[i] = Interpolate(start, end, t)
	}

	return domain.Polyline{Points: points, Fallback: true}
}

// SampleAt returns the point on the polyline at progress fraction p in
// [0, 1], linearly interpolating between the two nearest points by index.
func SampleAt(poly domain.Polyline, p float64) domain.Location {
	n := len(poly.Points)
	if n == 0 {
		return domain.Location{}
	}
	if n == 1 {
		return poly.Points[0]
	}
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}

	idxF := p * float64(n-1)
	idx := int(idxF)
	if idx >= n-1 {
		return poly.Points[n-1]
	}
	frac := idxF - float64(idx)
	return Interpolate(poly.Points[idx], poly.Points[idx+1], frac)
}

// Bearing returns the initial great-circle bearing from a to b, in degrees
// clockwise from true north, in [0, 360).
func Bearing(a, b domain.Location) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// PolylineLengthKm sums the great-circle length of consecutive segments.
func PolylineLengthKm(poly domain.Polyline) float64 {
	total := 0.0
	for i := 1; i < len(poly.Points); i++ {
		total += DistanceKm(poly.Points[i-1], poly.Points[i])
	}
	return total
}
