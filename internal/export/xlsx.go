package export

import (
	"fmt"
	"io"

	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names.
const (
	StationsSheet = "stations"
	ReadingsSheet = "readings"
)

// StationsHeader is the column order of the stations sheet.
var StationsHeader = []string{
	"Station_ID", "Name", "District", "State", "Lat", "Lng",
	"Current_Level_m", "Min_Level_m", "Trend", "Status", "Aquifer_Type",
	"Specific_Yield", "Area_km2",
	"Average_m", "Std_Dev_m", "Trend_m_per_year", "Recharge_Events",
}

// WriteStationsXLSX renders a workbook with a stations sheet and a readings
// sheet laid out like the readings CSV. Statistics cells stay empty for
// stations without readings.
func WriteStationsXLSX(w io.Writer, stations []domain.Station) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", StationsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(ReadingsSheet); err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}

	if err := setRow(f, StationsSheet, 1, toAny(StationsHeader)); err != nil {
		return err
	}
	for i, s := range stations {
		row := []any{
			s.ID, s.Name, s.District, s.State, s.Lat, s.Lng,
			s.CurrentLevel, s.MinLevel, string(s.Trend), string(s.Status), string(s.AquiferType),
			s.SpecificYield, s.Area,
		}
		if stats, err := domain.StationStatistics(s); err == nil {
			row = append(row, stats.Average, stats.StdDev, stats.TrendPerYear, len(domain.DetectRechargeEvents(s)))
		}
		if err := setRow(f, StationsSheet, i+2, row); err != nil {
			return err
		}
	}

	if err := setRow(f, ReadingsSheet, 1, toAny(ReadingsHeader)); err != nil {
		return err
	}
	next := 2
	for _, s := range stations {
		for _, rec := range s.Data {
			row := []any{
				s.ID, rec.Date, readingTime, rec.Level, rec.Rainfall,
				string(s.Status), string(s.AquiferType), s.District, s.State,
			}
			if err := setRow(f, ReadingsSheet, next, row); err != nil {
				return err
			}
			next++
		}
	}

	for _, sheet := range []string{StationsSheet, ReadingsSheet} {
		if err := f.SetPanes(sheet, frozenHeader()); err != nil {
			return fmt.Errorf("freeze %s header: %w", sheet, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func frozenHeader() *excelize.Panes {
	return &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
