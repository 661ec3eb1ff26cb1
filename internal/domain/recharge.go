package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// Recharge detection thresholds.
const (
	// RechargeMinRainfallMm is the trigger-day rainfall a day must exceed.
	RechargeMinRainfallMm = 10.0
	// RechargeMinRiseM is the level rise within three days that must be exceeded.
	RechargeMinRiseM = 0.3
	// responseRiseM is the rise that marks the day the aquifer responded.
	responseRiseM = 0.2
	// rechargeWindow is the trigger day plus three look-ahead days.
	rechargeWindow = 4
)

// ResponseTime buckets how quickly the level reacted to rainfall.
type ResponseTime string

const (
	Response12To24h ResponseTime = "12-24 hours"
	Response24To48h ResponseTime = "24-48 hours"
	Response48To72h ResponseTime = "48-72 hours"
)

// RechargeEvent is a rainfall-driven level rise found in a station series.
type RechargeEvent struct {
	ID            string       `json:"id"`
	StationID     string       `json:"stationId"`
	StartIndex    int          `json:"startIndex"`
	Date          string       `json:"date"`
	EndDate       string       `json:"endDate"`
	RainfallMm    float64      `json:"rainfallMm"` // trigger day plus the next two days
	LevelRiseM    float64      `json:"levelRiseM"`
	EfficiencyPct float64      `json:"efficiencyPct"`
	ResponseTime  ResponseTime `json:"responseTime"`
	DetectedAt    time.Time    `json:"detectedAt,omitzero"`
}

// DetectRechargeEvents scans a station's series for rainfall-driven rises.
//
// For each day i with at least three following days, the day qualifies when
// its rainfall exceeds 10 mm and the highest level over days i+1..i+3 is more
// than 0.3 m above the level on day i. Rainfall is totalled over days
// i..i+2. Overlapping windows each produce their own event.
func DetectRechargeEvents(station Station) []RechargeEvent {
	data := station.Data
	var events []RechargeEvent
	for i := 0; i+rechargeWindow <= len(data); i++ {
		day := data[i]
		if !(day.Rainfall > RechargeMinRainfallMm) {
			continue
		}

		levelBefore := day.Level
		after1 := data[i+1].Level
		after2 := data[i+2].Level
		after3 := data[i+3].Level

		rise := math.Max(after1, math.Max(after2, after3)) - levelBefore
		if !(rise > RechargeMinRiseM) {
			continue
		}

		totalRainfall := day.Rainfall + data[i+1].Rainfall + data[i+2].Rainfall
		if !(totalRainfall > 0) {
			continue
		}

		events = append(events, RechargeEvent{
			ID:            rechargeEventID(station.ID, day.Date, i),
			StationID:     station.ID,
			StartIndex:    i,
			Date:          day.Date,
			EndDate:       data[i+3].Date,
			RainfallMm:    totalRainfall,
			LevelRiseM:    rise,
			EfficiencyPct: rise / totalRainfall * 100,
			ResponseTime:  classifyResponse(levelBefore, after1, after2),
		})
	}
	return events
}

// DetectAllRechargeEvents runs the detector over every station in order and
// stamps each event with the detection time.
func DetectAllRechargeEvents(stations []Station) []RechargeEvent {
	now := clock.Now().UTC()
	var out []RechargeEvent
	for i := range stations {
		for _, ev := range DetectRechargeEvents(stations[i]) {
			ev.DetectedAt = now
			out = append(out, ev)
		}
	}
	return out
}

func classifyResponse(levelBefore, after1, after2 float64) ResponseTime {
	switch {
	case after1 > levelBefore+responseRiseM:
		return Response12To24h
	case after2 > levelBefore+responseRiseM:
		return Response24To48h
	default:
		return Response48To72h
	}
}

// rechargeEventID hashes station, trigger date and index so re-running the
// detector over the same series yields the same ids.
func rechargeEventID(stationID, date string, index int) string {
	input := fmt.Sprintf("%s|%s|%d", stationID, date, index)
	hash := sha256.Sum256([]byte(input))
	return "rch-" + hex.EncodeToString(hash[:8])
}
