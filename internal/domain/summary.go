package domain

import (
	"slices"
	"strings"
)

// DistrictSummary aggregates the stations of one district.
type DistrictSummary struct {
	District      string  `json:"district"`
	State         string  `json:"state"`
	Stations      int     `json:"stations"`
	AvgLevel      float64 `json:"avgLevel"`
	CriticalCount int     `json:"criticalCount"`
}

// Summary is the dashboard overview of a dataset.
type Summary struct {
	TotalStations  int                 `json:"totalStations"`
	ByStatus       map[Status]int      `json:"byStatus"`
	ByAquifer      map[AquiferType]int `json:"byAquifer"`
	AvgLevel       float64             `json:"avgLevel"`
	RechargeEvents int                 `json:"rechargeEvents"`
	Districts      []DistrictSummary   `json:"districts"`
}

// Summarize computes status and aquifer counts, the average current level
// and per-district aggregates ordered by district name.
func Summarize(stations []Station) Summary {
	sum := Summary{
		TotalStations: len(stations),
		ByStatus:      make(map[Status]int),
		ByAquifer:     make(map[AquiferType]int),
	}

	type key struct{ district, state string }
	districts := make(map[key]*DistrictSummary)
	var total float64
	for i := range stations {
		s := &stations[i]
		sum.ByStatus[s.Status]++
		sum.ByAquifer[s.AquiferType]++
		sum.RechargeEvents += len(DetectRechargeEvents(*s))
		total += s.CurrentLevel

		k := key{s.District, s.State}
		d, ok := districts[k]
		if !ok {
			d = &DistrictSummary{District: s.District, State: s.State}
			districts[k] = d
		}
		d.Stations++
		d.AvgLevel += s.CurrentLevel
		if s.Status == StatusCritical {
			d.CriticalCount++
		}
	}
	if len(stations) > 0 {
		sum.AvgLevel = total / float64(len(stations))
	}

	sum.Districts = make([]DistrictSummary, 0, len(districts))
	for _, d := range districts {
		d.AvgLevel /= float64(d.Stations)
		sum.Districts = append(sum.Districts, *d)
	}
	slices.SortFunc(sum.Districts, func(a, b DistrictSummary) int {
		if c := strings.Compare(a.District, b.District); c != 0 {
			return c
		}
		return strings.Compare(a.State, b.State)
	})
	return sum
}
