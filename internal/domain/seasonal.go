package domain

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf16"
)

// SeasonalMode selects how season buckets are filled.
type SeasonalMode string

const (
	// SeasonalSynthetic derives season figures from a hash of the station id
	// and a per-year penalty. It does not read the daily series.
	SeasonalSynthetic SeasonalMode = "synthetic"
	// SeasonalCalendar buckets the daily series by calendar month.
	SeasonalCalendar SeasonalMode = "calendar"
)

// ParseSeasonalMode validates a mode name (case-insensitive).
func ParseSeasonalMode(s string) (SeasonalMode, error) {
	switch m := SeasonalMode(strings.ToLower(strings.TrimSpace(s))); m {
	case SeasonalSynthetic, SeasonalCalendar:
		return m, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownSeasonalMode)
	}
}

// Season is one of the four hydrological windows of the year.
type Season string

const (
	SeasonPreMonsoon  Season = "pre-monsoon"  // Mar-May
	SeasonMonsoon     Season = "monsoon"      // Jun-Sep
	SeasonPostMonsoon Season = "post-monsoon" // Oct-Nov
	SeasonWinter      Season = "winter"       // Dec-Feb
)

// SeasonForMonth maps a calendar month to its season.
func SeasonForMonth(m time.Month) Season {
	switch m {
	case time.March, time.April, time.May:
		return SeasonPreMonsoon
	case time.June, time.July, time.August, time.September:
		return SeasonMonsoon
	case time.October, time.November:
		return SeasonPostMonsoon
	default:
		return SeasonWinter
	}
}

const (
	// FiveYearAverage is the pseudo-year requesting a multi-year average.
	FiveYearAverage = 0
	// SyntheticBaselineYear is the latest year without a penalty.
	SyntheticBaselineYear = 2024
	// SyntheticYearPenaltyM is added to levels per year before the baseline.
	SyntheticYearPenaltyM = 0.3
	averageYears          = 5
	daysPerMonth          = 30
)

// SeasonStats holds the level figures common to every season.
type SeasonStats struct {
	AvgLevel float64 `json:"avgLevel"`
	MinLevel float64 `json:"minLevel"`
	MaxLevel float64 `json:"maxLevel"`
	Samples  int     `json:"samples"`
}

// PreMonsoonStats adds the pre-monsoon decline rate.
type PreMonsoonStats struct {
	SeasonStats
	DeclineRate float64 `json:"declineRate"` // m/month
}

// MonsoonStats adds the total monsoon recharge.
type MonsoonStats struct {
	SeasonStats
	TotalRecharge float64 `json:"totalRecharge"` // m
}

// PostMonsoonStats adds post-monsoon retention.
type PostMonsoonStats struct {
	SeasonStats
	Retention float64 `json:"retention"` // percent
}

// WinterStats adds the winter depletion rate.
type WinterStats struct {
	SeasonStats
	DepletionRate float64 `json:"depletionRate"` // m/month
}

// Effectiveness is the monsoon effectiveness score and its rating.
type Effectiveness struct {
	Score  int    `json:"score"`
	Rating string `json:"rating"`
}

// SeasonalReport is the four-season breakdown for one station and year.
type SeasonalReport struct {
	StationID     string           `json:"stationId"`
	Year          int              `json:"year"` // 0 for the five-year average
	Mode          SeasonalMode     `json:"mode"`
	PreMonsoon    PreMonsoonStats  `json:"preMonsoon"`
	Monsoon       MonsoonStats     `json:"monsoon"`
	PostMonsoon   PostMonsoonStats `json:"postMonsoon"`
	Winter        WinterStats      `json:"winter"`
	Effectiveness Effectiveness    `json:"effectiveness"`
}

// MonsoonEffectivenessScore combines monsoon recharge (m) and post-monsoon
// retention (%) into a 0-100 score.
func MonsoonEffectivenessScore(recharge, retention float64) int {
	score := math.Round((recharge*10 + retention) / 2)
	return int(math.Min(100, score))
}

// EffectivenessRating labels a score.
func EffectivenessRating(score int) string {
	switch {
	case score >= 80:
		return "Excellent"
	case score >= 60:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Poor"
	}
}

// SeasonalAggregator builds seasonal reports in a fixed mode.
type SeasonalAggregator struct {
	mode SeasonalMode
}

// NewSeasonalAggregator creates an aggregator for a validated mode.
func NewSeasonalAggregator(mode SeasonalMode) (*SeasonalAggregator, error) {
	if _, err := ParseSeasonalMode(string(mode)); err != nil {
		return nil, err
	}
	return &SeasonalAggregator{mode: mode}, nil
}

// Mode returns the aggregation mode.
func (a *SeasonalAggregator) Mode() SeasonalMode { return a.mode }

// Aggregate builds the report for a station and year. Year 0 requests the
// five-year average.
func (a *SeasonalAggregator) Aggregate(station Station, year int) SeasonalReport {
	var r SeasonalReport
	if a.mode == SeasonalCalendar {
		r = calendarReport(station, year)
	} else {
		r = syntheticReport(station.ID, year)
	}
	r.StationID = station.ID
	r.Year = year
	r.Mode = a.mode
	r.Effectiveness = effectivenessOf(r)
	return r
}

func effectivenessOf(r SeasonalReport) Effectiveness {
	score := MonsoonEffectivenessScore(r.Monsoon.TotalRecharge, r.PostMonsoon.Retention)
	return Effectiveness{Score: score, Rating: EffectivenessRating(score)}
}

// --- synthetic ---

// StationHash is the 32-bit rolling string hash (h = h*31 + c) over the
// UTF-16 code units of a station id, returned as a non-negative value.
func StationHash(id string) int64 {
	var h int32
	for _, c := range utf16.Encode([]rune(id)) {
		h = h*31 + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

func yearPenalty(year int) float64 {
	if year >= SyntheticBaselineYear {
		return 0
	}
	return float64(SyntheticBaselineYear-year) * SyntheticYearPenaltyM
}

func syntheticReport(stationID string, year int) SeasonalReport {
	if year == FiveYearAverage {
		reports := make([]SeasonalReport, 0, averageYears)
		for y := SyntheticBaselineYear - averageYears + 1; y <= SyntheticBaselineYear; y++ {
			reports = append(reports, syntheticYear(stationID, y))
		}
		return roundReport(averageReports(reports))
	}
	return roundReport(syntheticYear(stationID, year))
}

func syntheticYear(stationID string, year int) SeasonalReport {
	seed := StationHash(stationID)
	p := yearPenalty(year)
	base := 8 + float64(seed%1500)/100

	band := func(avg, below, above float64) SeasonStats {
		return SeasonStats{AvgLevel: avg, MinLevel: avg - below, MaxLevel: avg + above}
	}

	var r SeasonalReport
	r.PreMonsoon = PreMonsoonStats{
		SeasonStats: band(base+2.5+p, 1.2, 1.5),
		DeclineRate: 0.4 + float64(seed%7)*0.05 + p*0.1,
	}
	r.Monsoon = MonsoonStats{
		SeasonStats:   band(base-1.5+p, 2.0, 1.0),
		TotalRecharge: math.Max(0, 2.5+float64(seed%9)*0.3-p),
	}
	r.PostMonsoon = PostMonsoonStats{
		SeasonStats: band(base-0.5+p, 0.8, 0.8),
		Retention:   clamp(60+float64(seed%30)-p*5, 0, 100),
	}
	r.Winter = WinterStats{
		SeasonStats:   band(base+0.8+p, 1.0, 1.0),
		DepletionRate: 0.3 + float64(seed%5)*0.05 + p*0.1,
	}
	return r
}

// --- calendar ---

func calendarReport(station Station, year int) SeasonalReport {
	if year != FiveYearAverage {
		return calendarYear(station.Data, year)
	}

	years := recentYears(station.Data, averageYears)
	if len(years) == 0 {
		return SeasonalReport{}
	}
	reports := make([]SeasonalReport, 0, len(years))
	for _, y := range years {
		reports = append(reports, calendarYear(station.Data, y))
	}
	return averageReports(reports)
}

func calendarYear(data []DailyRecord, year int) SeasonalReport {
	buckets := make(map[Season][]float64, 4)
	for _, rec := range data {
		t := rec.Time()
		if t.IsZero() || t.Year() != year {
			continue
		}
		s := SeasonForMonth(t.Month())
		buckets[s] = append(buckets[s], rec.Level)
	}

	pre := buckets[SeasonPreMonsoon]
	mon := buckets[SeasonMonsoon]
	post := buckets[SeasonPostMonsoon]
	win := buckets[SeasonWinter]

	var r SeasonalReport
	r.PreMonsoon = PreMonsoonStats{SeasonStats: bucketStats(pre), DeclineRate: fallingRate(pre)}
	r.Monsoon = MonsoonStats{SeasonStats: bucketStats(mon), TotalRecharge: totalRise(mon)}
	r.PostMonsoon = PostMonsoonStats{SeasonStats: bucketStats(post)}
	if r.Monsoon.MaxLevel > 0 && len(post) > 0 {
		r.PostMonsoon.Retention = clamp(r.PostMonsoon.AvgLevel/r.Monsoon.MaxLevel*100, 0, 100)
	}
	r.Winter = WinterStats{SeasonStats: bucketStats(win), DepletionRate: fallingRate(win)}
	return r
}

func bucketStats(levels []float64) SeasonStats {
	st, err := ComputeStatistics(levels)
	if err != nil {
		return SeasonStats{}
	}
	return SeasonStats{AvgLevel: st.Average, MinLevel: st.Min, MaxLevel: st.Max, Samples: st.Count}
}

// fallingRate is the downward least-squares slope scaled to a 30-day month.
func fallingRate(levels []float64) float64 {
	return math.Max(0, -Slope(levels)) * daysPerMonth
}

// totalRise sums the positive day-to-day level changes.
func totalRise(levels []float64) float64 {
	var total float64
	for i := 1; i < len(levels); i++ {
		if d := levels[i] - levels[i-1]; d > 0 {
			total += d
		}
	}
	return total
}

// recentYears returns up to n distinct calendar years present in data, newest first.
func recentYears(data []DailyRecord, n int) []int {
	seen := make(map[int]bool)
	var years []int
	for _, rec := range data {
		t := rec.Time()
		if t.IsZero() || seen[t.Year()] {
			continue
		}
		seen[t.Year()] = true
		years = append(years, t.Year())
	}
	slices.Sort(years)
	slices.Reverse(years)
	if len(years) > n {
		years = years[:n]
	}
	return years
}

// --- helpers ---

func averageReports(reports []SeasonalReport) SeasonalReport {
	var out SeasonalReport
	if len(reports) == 0 {
		return out
	}
	n := float64(len(reports))
	avgStats := func(get func(SeasonalReport) SeasonStats) SeasonStats {
		var s SeasonStats
		for _, r := range reports {
			v := get(r)
			s.AvgLevel += v.AvgLevel / n
			s.MinLevel += v.MinLevel / n
			s.MaxLevel += v.MaxLevel / n
			s.Samples += v.Samples
		}
		return s
	}

	out.PreMonsoon.SeasonStats = avgStats(func(r SeasonalReport) SeasonStats { return r.PreMonsoon.SeasonStats })
	out.Monsoon.SeasonStats = avgStats(func(r SeasonalReport) SeasonStats { return r.Monsoon.SeasonStats })
	out.PostMonsoon.SeasonStats = avgStats(func(r SeasonalReport) SeasonStats { return r.PostMonsoon.SeasonStats })
	out.Winter.SeasonStats = avgStats(func(r SeasonalReport) SeasonStats { return r.Winter.SeasonStats })
	for _, r := range reports {
		out.PreMonsoon.DeclineRate += r.PreMonsoon.DeclineRate / n
		out.Monsoon.TotalRecharge += r.Monsoon.TotalRecharge / n
		out.PostMonsoon.Retention += r.PostMonsoon.Retention / n
		out.Winter.DepletionRate += r.Winter.DepletionRate / n
	}
	return out
}

func roundReport(r SeasonalReport) SeasonalReport {
	roundStats := func(s *SeasonStats) {
		s.AvgLevel = round2(s.AvgLevel)
		s.MinLevel = round2(s.MinLevel)
		s.MaxLevel = round2(s.MaxLevel)
	}
	roundStats(&r.PreMonsoon.SeasonStats)
	roundStats(&r.Monsoon.SeasonStats)
	roundStats(&r.PostMonsoon.SeasonStats)
	roundStats(&r.Winter.SeasonStats)
	r.PreMonsoon.DeclineRate = round2(r.PreMonsoon.DeclineRate)
	r.Monsoon.TotalRecharge = round2(r.Monsoon.TotalRecharge)
	r.PostMonsoon.Retention = round2(r.PostMonsoon.Retention)
	r.Winter.DepletionRate = round2(r.Winter.DepletionRate)
	return r
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func clamp(v, lo, hi float64) float64 { return math.Max(lo, math.Min(hi, v)) }
