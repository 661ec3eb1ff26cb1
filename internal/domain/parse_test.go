package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStations_Coalescing(t *testing.T) {
	doc := []byte(`[
		{
			"id": "DWLR_001",
			"location": "Anantapur Rural",
			"district": "Anantapur",
			"state": "Andhra Pradesh",
			"lat": "14.68",
			"long": 77.6,
			"currentLevel": 42.5,
			"minLevel": 35,
			"trend": "INCREASING",
			"status": "semi_critical",
			"aquiferType": "basalt",
			"specificYield": 0.15,
			"area": 55.4,
			"data": [
				{"date": "2024-07-03", "level": 12.0, "rainfall": 0},
				{"date": "2024-07-01", "level": 10.0, "rainfall": 15},
				{"date": "not-a-date", "level": 99, "rainfall": 1},
				{"date": "2024-07-02T06:00:00Z", "level": "11.5", "rainfall": "N/A"},
				{"date": "2024-07-01", "level": 10.2, "rainfall": 16}
			]
		},
		{"lon": 80.1, "latitude": 13.0, "water_level": 45}
	]`)

	stations, err := ParseStations(doc)
	require.NoError(t, err)
	require.Len(t, stations, 2)

	s := stations[0]
	assert.Equal(t, "DWLR_001", s.ID)
	assert.Equal(t, "Anantapur Rural", s.Name)
	assert.Equal(t, 14.68, s.Lat)
	assert.Equal(t, 77.6, s.Lng)
	assert.Equal(t, TrendIncreasing, s.Trend)
	assert.Equal(t, StatusSemiCritical, s.Status, "explicit status wins over level thresholds")
	assert.Equal(t, AquiferBasalt, s.AquiferType)
	assert.Equal(t, 55, s.Area)
	assert.Equal(t, []DailyRecord{
		{Date: "2024-07-01", Level: 10.2, Rainfall: 16},
		{Date: "2024-07-02", Level: 11.5, Rainfall: 0},
		{Date: "2024-07-03", Level: 12.0, Rainfall: 0},
	}, s.Data)

	fallback := stations[1]
	assert.Equal(t, "STN_002", fallback.ID)
	assert.Equal(t, Unknown, fallback.Name)
	assert.Equal(t, Unknown, fallback.District)
	assert.Equal(t, Unknown, fallback.State)
	assert.Equal(t, 13.0, fallback.Lat)
	assert.Equal(t, 80.1, fallback.Lng)
	assert.Equal(t, StatusCritical, fallback.Status, "status derived from level when missing")
	assert.Equal(t, AquiferUnknown, fallback.AquiferType)
	assert.Equal(t, TrendDecreasing, fallback.Trend)
	assert.Empty(t, fallback.Data)
}

func TestParseStations_NegativeRainfallSentinel(t *testing.T) {
	doc := []byte(`[{
		"id": "DWLR_009",
		"data": [
			{"date": "2024-07-01", "level": 10, "rainfall": 15},
			{"date": "2024-07-02", "level": 10.5, "rainfall": -999},
			{"date": "2024-07-03", "level": 10.9, "rainfall": "-1.5"},
			{"date": "2024-07-04", "level": 10.9, "rainfall": 0}
		]
	}]`)

	stations, err := ParseStations(doc)
	require.NoError(t, err)
	require.Len(t, stations, 1)
	for _, rec := range stations[0].Data[1:] {
		assert.Zero(t, rec.Rainfall, rec.Date)
	}

	var events []RechargeEvent
	require.NotPanics(t, func() { events = DetectAllRechargeEvents(stations) })
	require.Len(t, events, 1)
	assert.Equal(t, 15.0, events[0].RainfallMm)
	assert.InDelta(t, 6.0, events[0].EfficiencyPct, 1e-9)
}

func TestParseStations_WrappedDocument(t *testing.T) {
	stations, err := ParseStations([]byte(`{"stations": [{"id": "A", "name": "Alpha"}]}`))
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, "Alpha", stations[0].Name)
}

func TestParseStations_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid JSON", `{invalid`},
		{"object without stations", `{"items": []}`},
		{"scalar", `42`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStations([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "parse stations")
		})
	}
}

func TestParseTimeSeries(t *testing.T) {
	t.Run("keyed by station", func(t *testing.T) {
		out, err := ParseTimeSeries([]byte(`{
			"A": [{"date": "2024-07-02", "level": 11}, {"date": "2024-07-01", "level": 10, "rainfall": 12}],
			"B": "garbage"
		}`))
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, []DailyRecord{
			{Date: "2024-07-01", Level: 10, Rainfall: 12},
			{Date: "2024-07-02", Level: 11},
		}, out["A"])
	})

	t.Run("flat records", func(t *testing.T) {
		out, err := ParseTimeSeries([]byte(`[
			{"station_id": "A", "date": "2024-07-01", "water_level": 10},
			{"stationId": "B", "date": "2024-07-01", "level": 20, "rainfall_mm": 3},
			{"date": "2024-07-01", "level": 30},
			{"stationId": "B", "date": "2024-07-02"}
		]`))
		require.NoError(t, err)
		assert.Equal(t, []DailyRecord{{Date: "2024-07-01", Level: 10}}, out["A"])
		assert.Equal(t, []DailyRecord{{Date: "2024-07-01", Level: 20, Rainfall: 3}}, out["B"])
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := ParseTimeSeries([]byte(`"nope"`))
		require.Error(t, err)
	})
}

func TestMergeTimeSeries(t *testing.T) {
	embedded := []DailyRecord{{Date: "2024-07-01", Level: 1}}
	stations := []Station{
		{ID: "A"},
		{ID: "B", Data: embedded},
		{ID: "C"},
	}
	series := map[string][]DailyRecord{
		"A": {{Date: "2024-07-01", Level: 5}, {Date: "2024-07-02", Level: 6}},
		"B": {{Date: "2024-07-01", Level: 9}},
	}

	merged := MergeTimeSeries(stations, series)

	assert.Len(t, merged[0].Data, 2)
	assert.Equal(t, TrendIncreasing, merged[0].Trend)
	assert.Equal(t, embedded, merged[1].Data)
	assert.Empty(t, merged[2].Data)
	assert.Empty(t, stations[0].Data, "input must not be modified")
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		in       string
		expected Status
		ok       bool
	}{
		{"safe", StatusSafe, true},
		{"Semi-Critical", StatusSemiCritical, true},
		{"semi critical", StatusSemiCritical, true},
		{"semicritical", StatusSemiCritical, true},
		{"CRITICAL", StatusCritical, true},
		{"bad", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			st, ok := ParseStatus(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expected, st)
			}
		})
	}
}

func TestStatusForLevel(t *testing.T) {
	assert.Equal(t, StatusSafe, StatusForLevel(30))
	assert.Equal(t, StatusSemiCritical, StatusForLevel(30.01))
	assert.Equal(t, StatusSemiCritical, StatusForLevel(40))
	assert.Equal(t, StatusCritical, StatusForLevel(40.5))
}
