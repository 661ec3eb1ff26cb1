package domain

import (
	"fmt"
	"time"
)

// Dataset is the immutable set of stations served for the lifetime of a
// process. It is built once and shared read-only.
type Dataset struct {
	stations []Station
	byID     map[string]int
	loadedAt time.Time
}

// NewDataset indexes stations by id. Duplicate ids are rejected.
func NewDataset(stations []Station) (*Dataset, error) {
	byID := make(map[string]int, len(stations))
	for i, s := range stations {
		if s.ID == "" {
			return nil, fmt.Errorf("station at index %d: %w", i, ErrMissingStationID)
		}
		if _, dup := byID[s.ID]; dup {
			return nil, fmt.Errorf("station %q: %w", s.ID, ErrDuplicateStationID)
		}
		byID[s.ID] = i
	}
	cp := make([]Station, len(stations))
	copy(cp, stations)
	return &Dataset{stations: cp, byID: byID, loadedAt: clock.Now()}, nil
}

// Len returns the number of stations.
func (d *Dataset) Len() int { return len(d.stations) }

// LoadedAt is when the dataset was built.
func (d *Dataset) LoadedAt() time.Time { return d.loadedAt }

// Stations returns a copy of the station slice in input order. Daily series
// are shared with the dataset and must not be modified.
func (d *Dataset) Stations() []Station {
	out := make([]Station, len(d.stations))
	copy(out, d.stations)
	return out
}

// Station looks up a station by id.
func (d *Dataset) Station(id string) (Station, error) {
	i, ok := d.byID[id]
	if !ok {
		return Station{}, fmt.Errorf("station %q: %w", id, ErrStationNotFound)
	}
	return d.stations[i], nil
}
