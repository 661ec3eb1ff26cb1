package domain

import (
	"context"
	"log/slog"
)

// EnrichStationLocation fills gaps in an imported station's location. A
// station with coordinates but an unknown district is reverse geocoded; a
// station without coordinates but with a known name and district is forward
// geocoded. Geocoding failures leave the station unchanged apart from
// GeoSource (graceful degradation).
func EnrichStationLocation(ctx context.Context, station Station, geocoder Geocoder, logger *slog.Logger) Station {
	if geocoder == nil {
		return station
	}

	hasCoords := station.HasCoordinates()
	hasName := station.Name != Unknown && station.District != Unknown

	if !hasCoords && hasName {
		result, err := geocoder.ForwardGeocode(ctx, station.Name, station.District)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"station_id", station.ID,
				"name", station.Name,
				"district", station.District,
				"error", err,
			)
			station.GeoSource = "failed"
			return station
		}
		if result.Lat != 0 || result.Lng != 0 {
			station.Lat = result.Lat
			station.Lng = result.Lng
			station.Address = result.FormattedAddress
			station.GeoSource = "forward"
			return station
		}
		station.GeoSource = "original"
		return station
	}

	if hasCoords && (station.District == Unknown || station.State == Unknown) {
		result, err := geocoder.ReverseGeocode(ctx, station.Lat, station.Lng)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"station_id", station.ID,
				"lat", station.Lat,
				"lng", station.Lng,
				"error", err,
			)
			station.GeoSource = "failed"
			return station
		}
		if result.FormattedAddress != "" {
			station.Address = result.FormattedAddress
			if station.District == Unknown && result.PlaceName != "" {
				station.District = result.PlaceName
			}
			if station.State == Unknown && result.Region != "" {
				station.State = result.Region
			}
			station.GeoSource = "reverse"
			return station
		}
	}

	station.GeoSource = "original"
	return station
}
