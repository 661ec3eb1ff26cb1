// Package export renders stations and recharge events as CSV and XLSX
// downloads, and reads the readings CSV back into stations.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
)

// readingTime fills the Time column; readings are daily.
const readingTime = "00:00"

// ReadingsHeader is the column order of the readings export.
var ReadingsHeader = []string{
	"Station_ID", "Date", "Time", "Water_Level_m", "Rainfall_mm",
	"Status", "Aquifer_Type", "District", "State",
}

// RechargeHeader is the column order of the recharge-event export.
var RechargeHeader = []string{
	"Event_ID", "Station_ID", "Date", "End_Date", "Rainfall_mm",
	"Level_Rise_m", "Efficiency_pct", "Response_Time",
}

// ErrMissingColumn is returned when a readings CSV lacks a required column.
var ErrMissingColumn = errors.New("export: missing required column")

// WriteReadingsCSV writes one row per daily record of every station.
func WriteReadingsCSV(w io.Writer, stations []domain.Station) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReadingsHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range stations {
		for _, rec := range s.Data {
			if err := cw.Write(readingRow(s, rec)); err != nil {
				return fmt.Errorf("write reading %s %s: %w", s.ID, rec.Date, err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func readingRow(s domain.Station, rec domain.DailyRecord) []string {
	return []string{
		s.ID,
		rec.Date,
		readingTime,
		formatFloat(rec.Level),
		formatFloat(rec.Rainfall),
		string(s.Status),
		string(s.AquiferType),
		s.District,
		s.State,
	}
}

// WriteRechargeCSV writes one row per recharge event.
func WriteRechargeCSV(w io.Writer, events []domain.RechargeEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RechargeHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, ev := range events {
		row := []string{
			ev.ID,
			ev.StationID,
			ev.Date,
			ev.EndDate,
			formatFloat(ev.RainfallMm),
			formatFloat(ev.LevelRiseM),
			strconv.FormatFloat(ev.EfficiencyPct, 'f', 2, 64),
			string(ev.ResponseTime),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write event %s: %w", ev.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadReadingsCSV parses a readings export back into stations, in order of
// first appearance. Columns are matched by header name. Rows with an
// unparsable level are skipped; an unparsable rainfall reads as 0. Station
// names are not part of the export and come back as domain.Unknown.
func ReadReadingsCSV(r io.Reader) ([]domain.Station, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, required := range []string{"Station_ID", "Date", "Water_Level_m"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}
	get := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var order []string
	byID := make(map[string]*domain.Station)
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		id := get(row, "Station_ID")
		level, err := strconv.ParseFloat(get(row, "Water_Level_m"), 64)
		if id == "" || err != nil {
			continue
		}
		rain, err := strconv.ParseFloat(get(row, "Rainfall_mm"), 64)
		if err != nil || rain < 0 || math.IsNaN(rain) || math.IsInf(rain, 0) {
			rain = 0
		}

		s, ok := byID[id]
		if !ok {
			s = &domain.Station{
				ID:          id,
				Name:        domain.Unknown,
				District:    orUnknown(get(row, "District")),
				State:       orUnknown(get(row, "State")),
				AquiferType: domain.ParseAquiferType(get(row, "Aquifer_Type")),
			}
			if st, ok := domain.ParseStatus(get(row, "Status")); ok {
				s.Status = st
			}
			byID[id] = s
			order = append(order, id)
		}
		s.Data = append(s.Data, domain.DailyRecord{Date: get(row, "Date"), Level: level, Rainfall: rain})
	}

	stations := make([]domain.Station, 0, len(order))
	for _, id := range order {
		s := byID[id]
		s.Data = domain.NormalizeSeries(s.Data)
		finishImported(s)
		stations = append(stations, *s)
	}
	return stations, nil
}

// finishImported derives the fields the export does not carry.
func finishImported(s *domain.Station) {
	if len(s.Data) == 0 {
		s.Trend = domain.TrendDecreasing
		if !s.Status.IsValid() {
			s.Status = domain.StatusSafe
		}
		return
	}
	s.CurrentLevel = s.Data[len(s.Data)-1].Level
	s.MinLevel = s.Data[0].Level
	for _, rec := range s.Data {
		s.MinLevel = min(s.MinLevel, rec.Level)
	}
	if !s.Status.IsValid() {
		s.Status = domain.StatusForLevel(s.CurrentLevel)
	}
	s.Trend = domain.TrendDecreasing
	if domain.Slope(s.Levels()) > 0 {
		s.Trend = domain.TrendIncreasing
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orUnknown(s string) string {
	if s == "" {
		return domain.Unknown
	}
	return s
}
