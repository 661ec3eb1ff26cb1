package domain

import "strings"

// StationFilter selects stations by attribute. Empty fields match everything;
// string comparisons ignore case.
type StationFilter struct {
	Status   Status
	District string
	State    string
	Aquifer  AquiferType
}

// Match reports whether s satisfies every set field of f.
func (f StationFilter) Match(s Station) bool {
	if f.Status != "" && f.Status != s.Status {
		return false
	}
	if f.District != "" && !strings.EqualFold(f.District, s.District) {
		return false
	}
	if f.State != "" && !strings.EqualFold(f.State, s.State) {
		return false
	}
	if f.Aquifer != "" && !strings.EqualFold(string(f.Aquifer), string(s.AquiferType)) {
		return false
	}
	return true
}

// FilterStations returns the stations matching f, preserving order.
func FilterStations(stations []Station, f StationFilter) []Station {
	out := make([]Station, 0, len(stations))
	for _, s := range stations {
		if f.Match(s) {
			out = append(out, s)
		}
	}
	return out
}
