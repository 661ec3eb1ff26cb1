package staticdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
	"golang.org/x/sync/errgroup"
)

// Loader builds the station list from a stations document and an optional
// time-series document.
type Loader struct {
	src Source
}

// NewLoader creates a loader reading from src.
func NewLoader(src Source) *Loader {
	return &Loader{src: src}
}

// LoadStations fetches both documents in parallel and waits for both. Any
// fetch failure other than a missing time-series document fails the load;
// nothing is retried.
func (l *Loader) LoadStations(ctx context.Context) ([]domain.Station, error) {
	var stationsDoc, seriesDoc []byte

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := l.src.Fetch(gctx, StationsDocument)
		if err != nil {
			return err
		}
		stationsDoc = data
		return nil
	})
	g.Go(func() error {
		data, err := l.src.Fetch(gctx, TimeSeriesDocument)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		seriesDoc = data
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}

	stations, err := domain.ParseStations(stationsDoc)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	if seriesDoc == nil {
		return stations, nil
	}

	series, err := domain.ParseTimeSeries(seriesDoc)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	return domain.MergeTimeSeries(stations, series), nil
}
