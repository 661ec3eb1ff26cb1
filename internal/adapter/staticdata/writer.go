package staticdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
)

// WriteDocuments writes stations as a stations document without embedded
// series plus a time-series document keyed by station id, the layout
// Loader reads back.
func WriteDocuments(dir string, stations []domain.Station) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	bare := make([]domain.Station, len(stations))
	series := make(map[string][]domain.DailyRecord, len(stations))
	for i, s := range stations {
		series[s.ID] = s.Data
		s.Data = nil
		bare[i] = s
	}

	if err := writeJSON(filepath.Join(dir, StationsDocument), bare); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, TimeSeriesDocument), series)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
