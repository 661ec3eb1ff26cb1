package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
)

// StationEnricher fills location gaps in loaded stations using an optional
// geocoder.
type StationEnricher struct {
	geocoder domain.Geocoder
	logger   *slog.Logger
}

// NewEnricher creates a StationEnricher. Pass a nil geocoder to disable
// geocoding enrichment.
func NewEnricher(geocoder domain.Geocoder, logger *slog.Logger) *StationEnricher {
	return &StationEnricher{
		geocoder: geocoder,
		logger:   logger,
	}
}

// Enrich returns a copy of stations with locations completed where possible.
// Stations are geocoded sequentially to stay within provider rate limits.
func (e *StationEnricher) Enrich(ctx context.Context, stations []domain.Station) []domain.Station {
	out := make([]domain.Station, len(stations))
	for i, s := range stations {
		if ctx.Err() != nil {
			copy(out[i:], stations[i:])
			break
		}
		out[i] = domain.EnrichStationLocation(ctx, s, e.geocoder, e.logger)
	}
	return out
}
