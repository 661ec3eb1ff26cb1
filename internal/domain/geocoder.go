package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
	PlaceName        string
	Region           string
	Confidence       float64 // 0.0–1.0 provider confidence score
}

// Geocoder resolves station positions and place names.
type Geocoder interface {
	// ForwardGeocode converts a place name and district to coordinates.
	ForwardGeocode(ctx context.Context, name, district string) (GeocodingResult, error)

	// ReverseGeocode converts coordinates to place details.
	ReverseGeocode(ctx context.Context, lat, lng float64) (GeocodingResult, error)
}
