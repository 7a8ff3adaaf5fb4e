package domain

// Location is an immutable geographic point with an optional human-readable
// label (a city or depot name). Latitude is in [-90, 90], longitude in
// [-180, 180].
type Location struct {
	Lat  float64
	Lng  float64
	Name string
}

// LatLng returns the point as a [lat, lng] pair, the ordering used
// throughout the engine's own polylines and JSON payloads.
func (l Location) LatLng() [2]float64 { return [2]float64{l.Lat, l.Lng} }
