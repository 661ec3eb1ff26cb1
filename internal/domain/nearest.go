package domain

import "math"

const earthRadiusKm = 6371.0

// NearestStation is a station with its great-circle distance from a query point.
type NearestStation struct {
	Station    Station `json:"station"`
	DistanceKm float64 `json:"distanceKm"`
}

// ValidateCoordinates checks WGS-84 latitude and longitude ranges.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrInvalidCoordinates
	}
	return nil
}

// HaversineKm is the great-circle distance between two points in kilometers.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(d float64) float64 { return d * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// FindNearest returns the station closest to (lat, lng). Stations without
// coordinates are skipped; ok is false when none qualify.
func FindNearest(stations []Station, lat, lng float64) (NearestStation, bool) {
	var best NearestStation
	found := false
	for _, s := range stations {
		if !s.HasCoordinates() {
			continue
		}
		d := HaversineKm(lat, lng, s.Lat, s.Lng)
		if !found || d < best.DistanceKm {
			best = NearestStation{Station: s, DistanceKm: d}
			found = true
		}
	}
	return best, found
}
