package domain

import "time"

// DateLayout is the ISO calendar date format used by daily records.
const DateLayout = "2006-01-02"

// Unknown is the fallback label for missing string attributes.
const Unknown = "Unknown"

// Trend is the descriptive direction label attached to a station.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
)

// IsValid reports whether t is a known trend label.
func (t Trend) IsValid() bool {
	switch t {
	case TrendIncreasing, TrendDecreasing:
		return true
	default:
		return false
	}
}

// Status classifies a station by its depth to water.
type Status string

const (
	StatusSafe         Status = "safe"
	StatusSemiCritical Status = "semi-critical"
	StatusCritical     Status = "critical"
)

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusSafe, StatusSemiCritical, StatusCritical:
		return true
	default:
		return false
	}
}

// Status thresholds on depth to water, in meters below ground.
const (
	CriticalLevelM     = 40.0
	SemiCriticalLevelM = 30.0
)

// StatusForLevel maps a current depth to water onto a status:
//
//	> 40 m   critical
//	> 30 m   semi-critical
//	else     safe
func StatusForLevel(currentLevel float64) Status {
	switch {
	case currentLevel > CriticalLevelM:
		return StatusCritical
	case currentLevel > SemiCriticalLevelM:
		return StatusSemiCritical
	default:
		return StatusSafe
	}
}

// AquiferType is the geological formation a station draws from.
type AquiferType string

const (
	AquiferAlluvial  AquiferType = "Alluvial"
	AquiferBasalt    AquiferType = "Basalt"
	AquiferLaterite  AquiferType = "Laterite"
	AquiferSandstone AquiferType = "Sandstone"
	// AquiferUnknown is the fallback for imported records without a known type.
	AquiferUnknown AquiferType = Unknown
)

// AquiferTypes lists every aquifer type in display order.
var AquiferTypes = []AquiferType{AquiferAlluvial, AquiferBasalt, AquiferLaterite, AquiferSandstone}

// IsValid reports whether a is a known aquifer type.
func (a AquiferType) IsValid() bool {
	switch a {
	case AquiferAlluvial, AquiferBasalt, AquiferLaterite, AquiferSandstone:
		return true
	default:
		return false
	}
}

// DailyRecord is one day's observation for a station.
type DailyRecord struct {
	Date     string  `json:"date"`
	Level    float64 `json:"level"`    // meters below ground
	Rainfall float64 `json:"rainfall"` // millimeters
}

// Time parses the record date. The zero time is returned for malformed dates.
func (r DailyRecord) Time() time.Time {
	t, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Station is one DWLR monitoring point with its recent daily series.
type Station struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	District      string        `json:"district"`
	State         string        `json:"state"`
	Lat           float64       `json:"lat"`
	Lng           float64       `json:"lng"`
	CurrentLevel  float64       `json:"currentLevel"`
	MinLevel      float64       `json:"minLevel"`
	Trend         Trend         `json:"trend"`
	Status        Status        `json:"status"`
	AquiferType   AquiferType   `json:"aquiferType"`
	SpecificYield float64       `json:"specificYield"`
	Area          int           `json:"area"`
	Data          []DailyRecord `json:"data,omitempty"`

	// Geocoding enrichment fields.
	Address   string `json:"address,omitempty"`
	GeoSource string `json:"geoSource,omitempty"` // "forward", "reverse", "original", "failed"
}

// HasCoordinates reports whether the station carries a usable position.
func (s Station) HasCoordinates() bool {
	return s.Lat != 0 || s.Lng != 0
}

// Levels returns the chronological level series.
func (s Station) Levels() []float64 {
	out := make([]float64, len(s.Data))
	for i, r := range s.Data {
		out[i] = r.Level
	}
	return out
}
