package domain

import "errors"

var (
	// ErrEmptySeries is returned when a statistic is requested over no values.
	ErrEmptySeries = errors.New("domain: empty series")
	// ErrStationCount is returned when a correlation request names fewer than 2 or more than 6 stations.
	ErrStationCount = errors.New("domain: correlation needs 2 to 6 stations")
	// ErrStationNotFound is returned when a station id is not in the dataset.
	ErrStationNotFound = errors.New("domain: station not found")
	// ErrMissingStationID is returned when a station has no id.
	ErrMissingStationID = errors.New("domain: missing station id")
	// ErrDuplicateStationID is returned when two stations share an id.
	ErrDuplicateStationID = errors.New("domain: duplicate station id")
	// ErrUnknownSeasonalMode is returned for an unsupported aggregation mode.
	ErrUnknownSeasonalMode = errors.New("domain: unknown seasonal mode")
	// ErrInvalidCoordinates is returned when a position is outside WGS-84 ranges.
	ErrInvalidCoordinates = errors.New("domain: invalid coordinates")
)
