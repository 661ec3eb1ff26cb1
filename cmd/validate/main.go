// Command validate performs data integrity checks on a static dataset
// directory (stations.json plus timeseries_data.json). It verifies station
// identity, series ordering, status consistency, analytics sanity and that
// the readings CSV export round-trips.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -dir data \
//	  -csv data/groundwater_readings.csv
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/couchcryptid/groundwater-dashboard/internal/adapter/staticdata"
	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
	"github.com/couchcryptid/groundwater-dashboard/internal/export"
)

// levelTolerance absorbs the two-decimal rounding of stored levels.
const levelTolerance = 0.005

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dir := flag.String("dir", "", "dataset directory containing stations.json")
	csvPath := flag.String("csv", "", "optional readings CSV export to cross-check")
	flag.Parse()

	if *dir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dir, *csvPath); code != 0 {
		os.Exit(code)
	}
}

func run(dir, csvPath string) int {
	fmt.Println("=== Groundwater Data Integrity Validation ===")
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stations, err := staticdata.NewLoader(staticdata.NewDirSource(dir)).LoadStations(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}

	var imported []domain.Station
	if csvPath != "" {
		f, err := os.Open(csvPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: open CSV: %v\n", err)
			return 1
		}
		imported, err = export.ReadReadingsCSV(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: read CSV: %v\n", err)
			return 1
		}
	}

	phases := []*phase{
		validateIdentity(stations),
		validateSeries(stations),
		validateStatus(stations),
		validateAnalytics(stations),
		validateCSVRoundTrip(stations),
	}
	if imported != nil {
		phases = append(phases, validateCSVExport(stations, imported))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Stations: %d, readings: %d\n", len(stations), countReadings(stations))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phases ──

func validateIdentity(stations []domain.Station) *phase {
	p := &phase{name: "Phase 1: Station identity"}
	if len(stations) == 0 {
		p.errorf("dataset has no stations")
		return p
	}
	if _, err := domain.NewDataset(stations); err != nil {
		p.errorf("%v", err)
	}
	for _, s := range stations {
		if s.Name == "" {
			p.errorf("%s: empty name", s.ID)
		}
		if !s.AquiferType.IsValid() && s.AquiferType != domain.AquiferUnknown {
			p.errorf("%s: unknown aquifer type %q", s.ID, s.AquiferType)
		}
		if s.HasCoordinates() {
			if err := domain.ValidateCoordinates(s.Lat, s.Lng); err != nil {
				p.errorf("%s: coordinates (%v, %v) out of range", s.ID, s.Lat, s.Lng)
			}
		}
	}
	return p
}

func validateSeries(stations []domain.Station) *phase {
	p := &phase{name: "Phase 2: Daily series"}
	for _, s := range stations {
		var prev time.Time
		for i, rec := range s.Data {
			d, err := time.Parse(domain.DateLayout, rec.Date)
			if err != nil {
				p.errorf("%s[%d]: invalid date %q", s.ID, i, rec.Date)
				continue
			}
			if i > 0 && !d.After(prev) {
				p.errorf("%s[%d]: date %s not after %s", s.ID, i, rec.Date, prev.Format(domain.DateLayout))
			}
			prev = d
			if rec.Level <= 0 || math.IsNaN(rec.Level) {
				p.errorf("%s[%d]: non-positive level %v", s.ID, i, rec.Level)
			}
			if rec.Rainfall < 0 || math.IsNaN(rec.Rainfall) {
				p.errorf("%s[%d]: negative rainfall %v", s.ID, i, rec.Rainfall)
			}
		}
	}
	return p
}

func validateStatus(stations []domain.Station) *phase {
	p := &phase{name: "Phase 3: Status consistency"}
	for _, s := range stations {
		if !s.Status.IsValid() {
			p.errorf("%s: invalid status %q", s.ID, s.Status)
			continue
		}
		if len(s.Data) == 0 {
			continue
		}
		last := s.Data[len(s.Data)-1].Level
		if math.Abs(s.CurrentLevel-last) > levelTolerance {
			p.errorf("%s: current level %.2f differs from last reading %.2f", s.ID, s.CurrentLevel, last)
		}
		if want := domain.StatusForLevel(s.CurrentLevel); s.Status != want {
			p.errorf("%s: status %s, expected %s for level %.2f", s.ID, s.Status, want, s.CurrentLevel)
		}
	}
	return p
}

func validateAnalytics(stations []domain.Station) *phase {
	p := &phase{name: "Phase 4: Analytics sanity"}
	agg, err := domain.NewSeasonalAggregator(domain.SeasonalCalendar)
	if err != nil {
		p.errorf("seasonal aggregator: %v", err)
		return p
	}

	for _, s := range stations {
		if len(s.Data) > 0 {
			stats, err := domain.StationStatistics(s)
			if err != nil {
				p.errorf("%s: statistics: %v", s.ID, err)
			} else if stats.Min > stats.Average || stats.Average > stats.Max || stats.StdDev < 0 {
				p.errorf("%s: inconsistent statistics %+v", s.ID, stats)
			}
		}

		for _, ev := range domain.DetectRechargeEvents(s) {
			if ev.LevelRiseM <= domain.RechargeMinRiseM {
				p.errorf("%s: event %s rise %.3f below threshold", s.ID, ev.ID, ev.LevelRiseM)
			}
			if want := ev.LevelRiseM / ev.RainfallMm * 100; math.Abs(ev.EfficiencyPct-want) > 1e-9 {
				p.errorf("%s: event %s efficiency %.4f, expected %.4f", s.ID, ev.ID, ev.EfficiencyPct, want)
			}
		}

		report := agg.Aggregate(s, domain.FiveYearAverage)
		if report.Effectiveness.Score < 0 || report.Effectiveness.Score > 100 {
			p.errorf("%s: effectiveness score %d outside 0..100", s.ID, report.Effectiveness.Score)
		}
	}

	withData := make([]domain.Station, 0, domain.MaxCorrelationStations)
	for _, s := range stations {
		if len(s.Data) > 1 && len(withData) < domain.MaxCorrelationStations {
			withData = append(withData, s)
		}
	}
	if len(withData) >= domain.MinCorrelationStations {
		corr, err := domain.CorrelateStations(withData)
		if err != nil {
			p.errorf("correlation: %v", err)
			return p
		}
		for i, row := range corr.Matrix {
			for j, r := range row {
				if r < -1 || r > 1 || r != corr.Matrix[j][i] {
					p.errorf("correlation[%d][%d] = %v is out of range or asymmetric", i, j, r)
				}
			}
		}
	}
	return p
}

// validateCSVRoundTrip exports the readings and re-imports them.
func validateCSVRoundTrip(stations []domain.Station) *phase {
	p := &phase{name: "Phase 5: CSV round trip"}
	var buf bytes.Buffer
	if err := export.WriteReadingsCSV(&buf, stations); err != nil {
		p.errorf("write CSV: %v", err)
		return p
	}
	imported, err := export.ReadReadingsCSV(&buf)
	if err != nil {
		p.errorf("read CSV: %v", err)
		return p
	}
	compareReadings(p, stations, imported)
	return p
}

func validateCSVExport(stations, imported []domain.Station) *phase {
	p := &phase{name: "Phase 6: CSV export cross-check"}
	compareReadings(p, stations, imported)
	return p
}

func compareReadings(p *phase, stations, imported []domain.Station) {
	byID := make(map[string]domain.Station, len(imported))
	for _, s := range imported {
		byID[s.ID] = s
	}
	for _, s := range stations {
		if len(s.Data) == 0 {
			continue
		}
		got, ok := byID[s.ID]
		if !ok {
			p.errorf("%s: missing from CSV", s.ID)
			continue
		}
		if len(got.Data) != len(s.Data) {
			p.errorf("%s: %d readings in CSV, %d in dataset", s.ID, len(got.Data), len(s.Data))
			continue
		}
		for i := range s.Data {
			want, have := s.Data[i], got.Data[i]
			if want.Date != have.Date || math.Abs(want.Level-have.Level) > levelTolerance ||
				math.Abs(want.Rainfall-have.Rainfall) > levelTolerance {
				p.errorf("%s[%d]: CSV reading %+v, dataset %+v", s.ID, i, have, want)
			}
		}
	}
}

func countReadings(stations []domain.Station) int {
	n := 0
	for _, s := range stations {
		n += len(s.Data)
	}
	return n
}
