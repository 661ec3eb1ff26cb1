package mockdata

import (
	"context"

	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Loader serves a generated dataset. Every call regenerates from the seed,
// so repeated loads return identical stations for the same clock date.
type Loader struct {
	seed  uint64
	count int
	clock clockwork.Clock
}

// NewLoader creates a loader producing count stations. A nil clock uses the real clock.
func NewLoader(seed uint64, count int, clock clockwork.Clock) *Loader {
	return &Loader{seed: seed, count: count, clock: clock}
}

func (l *Loader) LoadStations(ctx context.Context) ([]domain.Station, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return New(l.seed, l.clock).Generate(l.count), nil
}
