package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataset(t *testing.T) {
	fixed := time.Date(2024, time.July, 30, 6, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { SetClock(nil) })

	input := []Station{{ID: "A", Name: "Alpha"}, {ID: "B", Name: "Beta"}}
	ds, err := NewDataset(input)
	require.NoError(t, err)

	assert.Equal(t, 2, ds.Len())
	assert.Equal(t, fixed, ds.LoadedAt())

	b, err := ds.Station("B")
	require.NoError(t, err)
	assert.Equal(t, "Beta", b.Name)

	_, err = ds.Station("Z")
	require.ErrorIs(t, err, ErrStationNotFound)

	input[0].Name = "mutated"
	a, err := ds.Station("A")
	require.NoError(t, err)
	assert.Equal(t, "Alpha", a.Name, "dataset must not alias the input slice")

	list := ds.Stations()
	list[1].Name = "mutated"
	b, err = ds.Station("B")
	require.NoError(t, err)
	assert.Equal(t, "Beta", b.Name)
}

func TestNewDataset_Invalid(t *testing.T) {
	_, err := NewDataset([]Station{{ID: "A"}, {ID: "A"}})
	require.ErrorIs(t, err, ErrDuplicateStationID)

	_, err = NewDataset([]Station{{Name: "nameless"}})
	require.ErrorIs(t, err, ErrMissingStationID)
}

func TestFilterStations(t *testing.T) {
	stations := []Station{
		{ID: "A", Status: StatusSafe, District: "Pune", State: "Maharashtra", AquiferType: AquiferBasalt},
		{ID: "B", Status: StatusCritical, District: "Pune", State: "Maharashtra", AquiferType: AquiferAlluvial},
		{ID: "C", Status: StatusCritical, District: "Kolar", State: "Karnataka", AquiferType: AquiferLaterite},
	}

	ids := func(ss []Station) []string {
		out := make([]string, 0, len(ss))
		for _, s := range ss {
			out = append(out, s.ID)
		}
		return out
	}

	assert.Equal(t, []string{"A", "B", "C"}, ids(FilterStations(stations, StationFilter{})))
	assert.Equal(t, []string{"B", "C"}, ids(FilterStations(stations, StationFilter{Status: StatusCritical})))
	assert.Equal(t, []string{"B"}, ids(FilterStations(stations, StationFilter{Status: StatusCritical, District: "pune"})))
	assert.Equal(t, []string{"C"}, ids(FilterStations(stations, StationFilter{Aquifer: "laterite"})))
	assert.Empty(t, FilterStations(stations, StationFilter{State: "Goa"}))
}

func TestFindNearest(t *testing.T) {
	stations := []Station{
		{ID: "nowhere"},
		{ID: "pune", Lat: 18.52, Lng: 73.86},
		{ID: "delhi", Lat: 28.61, Lng: 77.21},
	}

	n, ok := FindNearest(stations, 18.6, 73.9)
	require.True(t, ok)
	assert.Equal(t, "pune", n.Station.ID)
	assert.InDelta(t, 9.8, n.DistanceKm, 1.0)

	_, ok = FindNearest([]Station{{ID: "nowhere"}}, 18.6, 73.9)
	assert.False(t, ok)
}

func TestValidateCoordinates(t *testing.T) {
	require.NoError(t, ValidateCoordinates(18.5, 73.8))
	require.ErrorIs(t, ValidateCoordinates(91, 0), ErrInvalidCoordinates)
	require.ErrorIs(t, ValidateCoordinates(0, -181), ErrInvalidCoordinates)
}

func TestSummarize(t *testing.T) {
	stations := []Station{
		{ID: "A", Status: StatusSafe, District: "Pune", State: "Maharashtra", AquiferType: AquiferBasalt, CurrentLevel: 10},
		{ID: "B", Status: StatusCritical, District: "Pune", State: "Maharashtra", AquiferType: AquiferBasalt, CurrentLevel: 50},
		{ID: "C", Status: StatusSemiCritical, District: "Kolar", State: "Karnataka", AquiferType: AquiferLaterite, CurrentLevel: 33,
			Data: series([2]float64{15, 10}, [2]float64{5, 10.5}, [2]float64{0, 10.9}, [2]float64{0, 10.9})},
	}

	sum := Summarize(stations)

	assert.Equal(t, 3, sum.TotalStations)
	assert.Equal(t, 1, sum.ByStatus[StatusCritical])
	assert.Equal(t, 2, sum.ByAquifer[AquiferBasalt])
	assert.InDelta(t, 31.0, sum.AvgLevel, 1e-9)
	assert.Equal(t, 1, sum.RechargeEvents)
	require.Len(t, sum.Districts, 2)
	assert.Equal(t, "Kolar", sum.Districts[0].District)
	assert.Equal(t, "Pune", sum.Districts[1].District)
	assert.Equal(t, 2, sum.Districts[1].Stations)
	assert.Equal(t, 30.0, sum.Districts[1].AvgLevel)
	assert.Equal(t, 1, sum.Districts[1].CriticalCount)
}
