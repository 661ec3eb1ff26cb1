// Package mockdata generates reproducible DWLR station fixtures for local
// development, demos and tests.
package mockdata

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
	"github.com/jonboulle/clockwork"
)

// Defaults used by the service when no overrides are configured.
const (
	DefaultSeed     uint64 = 42
	DefaultStations        = 24
	DefaultDays            = 30
)

// Rainfall and level dynamics.
const (
	dryDayProbability = 0.7
	maxRainfallMm     = 50.0
	minLevelM         = 1.0
	rainResponse      = 0.04 // m of rise per mm of rain
	dailyDrawdownM    = 0.08
	levelNoiseM       = 0.15
	coordJitterDeg    = 0.25
)

// District is a catalog slot stations are placed in.
type District struct {
	Name  string
	State string
	Lat   float64
	Lng   float64
}

// Districts is the fixed catalog stations cycle through.
var Districts = []District{
	{"Anantapur", "Andhra Pradesh", 14.68, 77.60},
	{"Kolar", "Karnataka", 13.13, 78.13},
	{"Pune", "Maharashtra", 18.52, 73.86},
	{"Jaipur", "Rajasthan", 26.91, 75.79},
	{"Ludhiana", "Punjab", 30.90, 75.85},
	{"Coimbatore", "Tamil Nadu", 11.02, 76.96},
	{"Mehsana", "Gujarat", 23.60, 72.37},
	{"Bundelkhand", "Uttar Pradesh", 25.45, 78.57},
	{"Nalgonda", "Telangana", 17.05, 79.27},
	{"Indore", "Madhya Pradesh", 22.72, 75.86},
	{"Kurukshetra", "Haryana", 29.97, 76.88},
	{"Thrissur", "Kerala", 10.53, 76.21},
}

// Generator produces stations from a seeded PCG source. Two generators
// built with the same seed and clock produce identical output.
type Generator struct {
	rng   *rand.Rand
	clock clockwork.Clock
	days  int
}

// New creates a generator. A nil clock uses the real clock.
func New(seed uint64, clock clockwork.Clock) *Generator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Generator{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		clock: clock,
		days:  DefaultDays,
	}
}

// Generate returns n stations, one per catalog slot, wrapping the district
// catalog when n exceeds it. Each station carries a daily series ending on
// the clock's current UTC date.
func (g *Generator) Generate(n int) []domain.Station {
	today := truncateDay(g.clock.Now())
	stations := make([]domain.Station, 0, max(n, 0))
	for i := range n {
		d := Districts[i%len(Districts)]
		stations = append(stations, g.station(i, d, today))
	}
	return stations
}

func (g *Generator) station(i int, d District, today time.Time) domain.Station {
	r := g.rng
	base := 5 + r.Float64()*40

	data := make([]domain.DailyRecord, g.days)
	level := base
	minLevel := math.Inf(1)
	for day := range g.days {
		rain := 0.0
		if r.Float64() >= dryDayProbability {
			rain = r.Float64() * maxRainfallMm
		}
		level += rain*rainResponse - dailyDrawdownM + (r.Float64()-0.5)*levelNoiseM
		level = math.Max(minLevelM, level)

		data[day] = domain.DailyRecord{
			Date:     today.AddDate(0, 0, day-g.days+1).Format(domain.DateLayout),
			Level:    round2(level),
			Rainfall: floor2(rain),
		}
		minLevel = math.Min(minLevel, data[day].Level)
	}

	current := data[len(data)-1].Level
	trend := domain.TrendDecreasing
	if r.IntN(2) == 0 {
		trend = domain.TrendIncreasing
	}

	return domain.Station{
		ID:            fmt.Sprintf("DWLR_%03d", i+1),
		Name:          fmt.Sprintf("%s DWLR %d", d.Name, i/len(Districts)+1),
		District:      d.Name,
		State:         d.State,
		Lat:           round4(d.Lat + (r.Float64()*2-1)*coordJitterDeg),
		Lng:           round4(d.Lng + (r.Float64()*2-1)*coordJitterDeg),
		CurrentLevel:  current,
		MinLevel:      minLevel,
		Trend:         trend,
		Status:        domain.StatusForLevel(current),
		AquiferType:   domain.AquiferTypes[r.IntN(len(domain.AquiferTypes))],
		SpecificYield: math.Floor((0.1+r.Float64()*0.1)*1000) / 1000,
		Area:          10 + r.IntN(100),
		Data:          data,
		GeoSource:     "original",
	}
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round4(v float64) float64 { return math.Round(v*10000) / 10000 }

// floor2 keeps values strictly below an exclusive upper bound.
func floor2(v float64) float64 { return math.Floor(v*100) / 100 }
