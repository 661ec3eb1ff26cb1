// Command genmock writes a seeded mock station network as static dataset
// documents (stations.json and timeseries_data.json) that the service can
// serve with DATA_SOURCE=dir. It uses the same generator as the mock source,
// so a fixed seed and end date always produce identical fixtures.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -out data \
//	  -seed 42 -stations 24 -end 2024-08-31 \
//	  -csv data/groundwater_readings.csv
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/couchcryptid/groundwater-dashboard/internal/adapter/staticdata"
	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
	"github.com/couchcryptid/groundwater-dashboard/internal/export"
	"github.com/couchcryptid/groundwater-dashboard/internal/mockdata"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for the dataset documents")
	seed := flag.Uint64("seed", mockdata.DefaultSeed, "generator seed")
	stations := flag.Int("stations", mockdata.DefaultStations, "number of stations")
	end := flag.String("end", "", "last reading date (YYYY-MM-DD); defaults to today")
	csvOut := flag.String("csv", "", "optional path for a readings CSV export")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	if *stations <= 0 {
		return fmt.Errorf("invalid -stations %d: must be positive", *stations)
	}

	endDate := time.Now().UTC()
	if *end != "" {
		d, err := time.Parse(domain.DateLayout, *end)
		if err != nil {
			return fmt.Errorf("invalid -end %q: %w", *end, err)
		}
		endDate = d
	}

	// Fixed clock so the series ends on the requested date.
	clock := clockwork.NewFakeClockAt(endDate)
	generated := mockdata.New(*seed, clock).Generate(*stations)
	log.Printf("generated %d stations (seed %d, ending %s)", len(generated), *seed, endDate.Format(domain.DateLayout))

	if err := staticdata.WriteDocuments(*outDir, generated); err != nil {
		return fmt.Errorf("writing dataset documents: %w", err)
	}
	log.Printf("wrote %s and %s to %s", staticdata.StationsDocument, staticdata.TimeSeriesDocument, *outDir)

	if *csvOut != "" {
		if err := writeCSV(*csvOut, generated); err != nil {
			return fmt.Errorf("writing readings CSV: %w", err)
		}
		log.Printf("wrote readings CSV: %s", *csvOut)
	}

	printStats(generated)
	return nil
}

func writeCSV(path string, stations []domain.Station) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteReadingsCSV(f, stations); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func printStats(stations []domain.Station) {
	sum := domain.Summarize(stations)
	events := domain.DetectAllRechargeEvents(stations)

	fmt.Println()
	fmt.Println("=== Generated Network ===")
	fmt.Printf("  stations:        %d\n", sum.TotalStations)
	fmt.Printf("  avg level:       %.2f m\n", sum.AvgLevel)
	fmt.Printf("  recharge events: %d\n", len(events))

	fmt.Println("\nBy status:")
	for _, st := range []domain.Status{domain.StatusSafe, domain.StatusSemiCritical, domain.StatusCritical} {
		fmt.Printf("  %-14s %d\n", st, sum.ByStatus[st])
	}

	fmt.Println("\nBy aquifer:")
	for _, a := range domain.AquiferTypes {
		fmt.Printf("  %-14s %d\n", a, sum.ByAquifer[a])
	}

	fmt.Println("\nBy district:")
	districts := make([]domain.DistrictSummary, len(sum.Districts))
	copy(districts, sum.Districts)
	sort.Slice(districts, func(i, j int) bool { return districts[i].Stations > districts[j].Stations })
	for _, d := range districts {
		fmt.Printf("  %-14s %-16s %d stations, %d critical\n", d.District, d.State, d.Stations, d.CriticalCount)
	}
}
