package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Imported station documents come from several exporters that disagree on
// field names. Each attribute lists the accepted keys in priority order.
var (
	idKeys            = []string{"id", "stationId", "station_id", "Station_ID"}
	nameKeys          = []string{"name", "location", "stationName", "station_name"}
	districtKeys      = []string{"district", "District"}
	stateKeys         = []string{"state", "State"}
	latKeys           = []string{"lat", "latitude", "Lat"}
	lngKeys           = []string{"lng", "long", "lon", "longitude", "Lon"}
	currentLevelKeys  = []string{"currentLevel", "current_level", "waterLevel", "water_level", "level"}
	minLevelKeys      = []string{"minLevel", "min_level"}
	trendKeys         = []string{"trend"}
	statusKeys        = []string{"status", "Status"}
	aquiferKeys       = []string{"aquiferType", "aquifer_type", "aquifer", "Aquifer_Type"}
	specificYieldKeys = []string{"specificYield", "specific_yield"}
	areaKeys          = []string{"area", "area_km2"}
	dataKeys          = []string{"data", "timeseries", "readings"}
	addressKeys       = []string{"address"}
	geoSourceKeys     = []string{"geoSource", "geo_source"}

	dateKeys     = []string{"date", "Date", "timestamp", "time"}
	levelKeys    = []string{"level", "waterLevel", "water_level", "Water_Level_m"}
	rainfallKeys = []string{"rainfall", "rainfall_mm", "Rainfall_mm", "rain"}
)

// dateLayouts are tried in order when normalizing record dates.
var dateLayouts = []string{DateLayout, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}

// ParseStations decodes a stations document: either a JSON array of station
// objects or an object with a "stations" array. Missing or malformed fields
// are coalesced to fallbacks; only undecodable JSON is an error.
func ParseStations(data []byte) ([]Station, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse stations: %w", err)
	}

	items, err := objectList(doc, "stations")
	if err != nil {
		return nil, fmt.Errorf("parse stations: %w", err)
	}

	stations := make([]Station, 0, len(items))
	for i, item := range items {
		stations = append(stations, stationFromMap(item, i))
	}
	return stations, nil
}

// ParseTimeSeries decodes a time-series document into per-station series.
// Accepted shapes are an object keyed by station id whose values are record
// arrays, or a flat array of records each carrying a station id.
func ParseTimeSeries(data []byte) (map[string][]DailyRecord, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse time series: %w", err)
	}

	out := make(map[string][]DailyRecord)
	switch v := doc.(type) {
	case map[string]any:
		for id, raw := range v {
			list, ok := raw.([]any)
			if !ok {
				continue
			}
			out[id] = NormalizeSeries(recordsFromList(list))
		}
	case []any:
		grouped := make(map[string][]DailyRecord)
		for _, raw := range v {
			m, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			id := pickString(m, idKeys...)
			if id == "" {
				continue
			}
			if rec, ok := recordFromMap(m); ok {
				grouped[id] = append(grouped[id], rec)
			}
		}
		for id, recs := range grouped {
			out[id] = NormalizeSeries(recs)
		}
	default:
		return nil, fmt.Errorf("parse time series: unexpected document type %T", doc)
	}
	return out, nil
}

// MergeTimeSeries attaches series to stations that carry no embedded data.
// Stations with their own data keep it.
func MergeTimeSeries(stations []Station, series map[string][]DailyRecord) []Station {
	out := make([]Station, len(stations))
	for i, s := range stations {
		if len(s.Data) == 0 {
			if recs, ok := series[s.ID]; ok {
				s.Data = recs
				if !s.Trend.IsValid() {
					s.Trend = trendFromSeries(recs)
				}
			}
		}
		out[i] = s
	}
	return out
}

// NormalizeSeries sorts records ascending by date, drops records whose date
// cannot be parsed, and collapses duplicate dates keeping the last one seen.
func NormalizeSeries(records []DailyRecord) []DailyRecord {
	byDate := make(map[string]DailyRecord, len(records))
	for _, r := range records {
		d, ok := normalizeDate(r.Date)
		if !ok {
			continue
		}
		r.Date = d
		byDate[d] = r
	}

	out := make([]DailyRecord, 0, len(byDate))
	for _, r := range byDate {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b DailyRecord) int { return strings.Compare(a.Date, b.Date) })
	return out
}

// ParseAquiferType matches a label case-insensitively, falling back to AquiferUnknown.
func ParseAquiferType(s string) AquiferType {
	s = strings.TrimSpace(s)
	for _, a := range AquiferTypes {
		if strings.EqualFold(s, string(a)) {
			return a
		}
	}
	return AquiferUnknown
}

// ParseStatus matches a status label, accepting "semi_critical" and
// "semicritical" spellings. ok is false for unknown labels.
func ParseStatus(s string) (Status, bool) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	if norm == "semicritical" {
		norm = string(StatusSemiCritical)
	}
	st := Status(norm)
	return st, st.IsValid()
}

func stationFromMap(m map[string]any, index int) Station {
	s := Station{
		ID:       pickString(m, idKeys...),
		Name:     orUnknown(pickString(m, nameKeys...)),
		District: orUnknown(pickString(m, districtKeys...)),
		State:    orUnknown(pickString(m, stateKeys...)),

		Address:   pickString(m, addressKeys...),
		GeoSource: pickString(m, geoSourceKeys...),
	}
	if s.ID == "" {
		s.ID = fmt.Sprintf("STN_%03d", index+1)
	}

	s.Lat, _ = pickFloat(m, latKeys...)
	s.Lng, _ = pickFloat(m, lngKeys...)
	s.CurrentLevel, _ = pickFloat(m, currentLevelKeys...)
	s.MinLevel, _ = pickFloat(m, minLevelKeys...)
	s.SpecificYield, _ = pickFloat(m, specificYieldKeys...)
	if area, ok := pickFloat(m, areaKeys...); ok {
		s.Area = int(math.Round(area))
	}
	s.AquiferType = ParseAquiferType(pickString(m, aquiferKeys...))

	for _, k := range dataKeys {
		if list, ok := m[k].([]any); ok {
			s.Data = NormalizeSeries(recordsFromList(list))
			break
		}
	}

	if len(s.Data) > 0 && s.CurrentLevel == 0 {
		s.CurrentLevel = s.Data[len(s.Data)-1].Level
	}

	if st, ok := ParseStatus(pickString(m, statusKeys...)); ok {
		s.Status = st
	} else {
		s.Status = StatusForLevel(s.CurrentLevel)
	}

	s.Trend = Trend(strings.ToLower(pickString(m, trendKeys...)))
	if !s.Trend.IsValid() {
		s.Trend = trendFromSeries(s.Data)
	}
	return s
}

// trendFromSeries labels a series by the sign of its least-squares slope.
// Series without data are labelled decreasing.
func trendFromSeries(data []DailyRecord) Trend {
	levels := make([]float64, len(data))
	for i, r := range data {
		levels[i] = r.Level
	}
	if Slope(levels) > 0 {
		return TrendIncreasing
	}
	return TrendDecreasing
}

func recordsFromList(list []any) []DailyRecord {
	out := make([]DailyRecord, 0, len(list))
	for _, raw := range list {
		m, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if rec, ok := recordFromMap(m); ok {
			out = append(out, rec)
		}
	}
	return out
}

func recordFromMap(m map[string]any) (DailyRecord, bool) {
	date := pickString(m, dateKeys...)
	if date == "" {
		return DailyRecord{}, false
	}
	level, ok := pickFloat(m, levelKeys...)
	if !ok {
		return DailyRecord{}, false
	}
	rain, _ := pickFloat(m, rainfallKeys...)
	return DailyRecord{Date: date, Level: level, Rainfall: rainfallOrZero(rain)}, true
}

// rainfallOrZero coalesces negative readings, such as -999 sensor
// sentinels, to no rain.
func rainfallOrZero(mm float64) float64 {
	if mm < 0 {
		return 0
	}
	return mm
}

func normalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout), true
		}
	}
	return "", false
}

func objectList(doc any, key string) ([]map[string]any, error) {
	var list []any
	switch v := doc.(type) {
	case []any:
		list = v
	case map[string]any:
		inner, ok := v[key].([]any)
		if !ok {
			return nil, fmt.Errorf("object has no %q array", key)
		}
		list = inner
	default:
		return nil, fmt.Errorf("unexpected document type %T", doc)
	}

	out := make([]map[string]any, 0, len(list))
	for _, raw := range list {
		if m, ok := raw.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, nil
}

// pickString returns the first non-empty value among keys, formatting numbers.
func pickString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// pickFloat returns the first numeric value among keys. Numeric strings are
// accepted; "N/A" and other non-numeric strings are skipped.
func pickFloat(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v, true
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
				return f, true
			}
		}
	}
	return 0, false
}

func orUnknown(s string) string {
	if s == "" {
		return Unknown
	}
	return s
}
