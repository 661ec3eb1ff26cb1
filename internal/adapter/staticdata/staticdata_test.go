package staticdata

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
	"github.com/couchcryptid/groundwater-dashboard/internal/mockdata"
	"github.com/couchcryptid/groundwater-dashboard/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	stationsJSON = `[
		{"id": "A", "location": "Alpha", "district": "Pune", "state": "Maharashtra", "lat": 18.5, "long": 73.8, "currentLevel": 12},
		{"id": "B", "name": "Beta", "district": "Kolar", "state": "Karnataka", "lat": 13.1, "lng": 78.1, "currentLevel": 35,
		 "data": [{"date": "2024-07-01", "level": 35, "rainfall": 0}]}
	]`
	seriesJSON = `{
		"A": [{"date": "2024-07-02", "level": 12.5}, {"date": "2024-07-01", "level": 12, "rainfall": 20}],
		"B": [{"date": "2024-07-01", "level": 99}]
	}`
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- fake source ---

type mapSource struct {
	docs  map[string][]byte
	errs  map[string]error
	calls atomic.Int64
}

func (m *mapSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	m.calls.Add(1)
	if err := m.errs[name]; err != nil {
		return nil, err
	}
	data, ok := m.docs[name]
	if !ok {
		return nil, ErrNotFound
	}
	return data, nil
}

// --- HTTPSource ---

func TestHTTPSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/stations.json":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(stationsJSON))
		case "/data/broken.json":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/", time.Second, discardLogger())

	data, err := src.Fetch(context.Background(), StationsDocument)
	require.NoError(t, err)
	assert.JSONEq(t, stationsJSON, string(data))

	_, err = src.Fetch(context.Background(), TimeSeriesDocument)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = src.Fetch(context.Background(), "broken.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestHTTPSource_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL, 50*time.Millisecond, discardLogger())
	_, err := src.Fetch(context.Background(), StationsDocument)
	require.Error(t, err)
}

// --- DirSource ---

func TestDirSource_Fetch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, StationsDocument), []byte(stationsJSON), 0o600))
	src := NewDirSource(dir)

	data, err := src.Fetch(context.Background(), StationsDocument)
	require.NoError(t, err)
	assert.JSONEq(t, stationsJSON, string(data))

	_, err = src.Fetch(context.Background(), TimeSeriesDocument)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDirSource_RejectsTraversal(t *testing.T) {
	src := NewDirSource(t.TempDir())
	for _, name := range []string{"", "..", "../etc/passwd", "sub/stations.json"} {
		_, err := src.Fetch(context.Background(), name)
		require.Error(t, err, name)
		assert.NotErrorIs(t, err, ErrNotFound, name)
	}
}

// --- CachedSource ---

func TestCachedSource(t *testing.T) {
	inner := &mapSource{docs: map[string][]byte{StationsDocument: []byte(stationsJSON)}}
	metrics := observability.NewMetricsForTesting()
	src := NewCachedSource(inner, 4, metrics)

	for range 3 {
		_, err := src.Fetch(context.Background(), StationsDocument)
		require.NoError(t, err)
	}
	_, err := src.Fetch(context.Background(), TimeSeriesDocument)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = src.Fetch(context.Background(), TimeSeriesDocument)
	require.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, int64(3), inner.calls.Load(), "hits are served from cache, failures are not cached")
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.DocumentCache.WithLabelValues("hit")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(metrics.DocumentCache.WithLabelValues("miss")), 0)
}

// --- Loader ---

func TestLoader_MergesSeries(t *testing.T) {
	src := &mapSource{docs: map[string][]byte{
		StationsDocument:   []byte(stationsJSON),
		TimeSeriesDocument: []byte(seriesJSON),
	}}

	stations, err := NewLoader(src).LoadStations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 2)

	assert.Equal(t, "Alpha", stations[0].Name)
	assert.Equal(t, []domain.DailyRecord{
		{Date: "2024-07-01", Level: 12, Rainfall: 20},
		{Date: "2024-07-02", Level: 12.5},
	}, stations[0].Data)
	assert.Equal(t, 35.0, stations[1].Data[0].Level, "embedded data wins over the series document")
	assert.Equal(t, int64(2), src.calls.Load())
}

func TestLoader_MissingSeriesTolerated(t *testing.T) {
	src := &mapSource{docs: map[string][]byte{StationsDocument: []byte(stationsJSON)}}

	stations, err := NewLoader(src).LoadStations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 2)
	assert.Empty(t, stations[0].Data)
}

func TestLoader_Failures(t *testing.T) {
	boom := errors.New("connection refused")
	tests := []struct {
		name string
		src  *mapSource
	}{
		{"missing stations", &mapSource{docs: map[string][]byte{TimeSeriesDocument: []byte(seriesJSON)}}},
		{"stations fetch error", &mapSource{errs: map[string]error{StationsDocument: boom}}},
		{"series fetch error", &mapSource{
			docs: map[string][]byte{StationsDocument: []byte(stationsJSON)},
			errs: map[string]error{TimeSeriesDocument: boom},
		}},
		{"invalid stations", &mapSource{docs: map[string][]byte{StationsDocument: []byte(`{oops`)}}},
		{"invalid series", &mapSource{docs: map[string][]byte{
			StationsDocument:   []byte(stationsJSON),
			TimeSeriesDocument: []byte(`42`),
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(tt.src).LoadStations(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), "load dataset")
		})
	}
}

func TestWriteDocuments_RoundTrip(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, time.July, 30, 0, 0, 0, 0, time.UTC))
	stations := mockdata.New(3, clock).Generate(5)
	dir := filepath.Join(t.TempDir(), "data")

	require.NoError(t, WriteDocuments(dir, stations))

	loaded, err := NewLoader(NewDirSource(dir)).LoadStations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stations, loaded)
}
