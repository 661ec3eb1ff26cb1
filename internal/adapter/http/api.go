package http

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
	"github.com/couchcryptid/groundwater-dashboard/internal/export"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
)

func (s *Server) registerAPI(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stations", s.withDataset(s.handleStations))
	mux.HandleFunc("GET /api/stations/nearest", s.withDataset(s.handleNearest))
	mux.HandleFunc("GET /api/stations/{id}", s.withStation(s.handleStation))
	mux.HandleFunc("GET /api/stations/{id}/statistics", s.withStation(s.handleStatistics))
	mux.HandleFunc("GET /api/stations/{id}/recharge-events", s.withStation(s.handleStationRecharge))
	mux.HandleFunc("GET /api/stations/{id}/seasonal", s.withStation(s.handleSeasonal))
	mux.HandleFunc("GET /api/recharge-events", s.withDataset(s.handleRecharge))
	mux.HandleFunc("GET /api/correlation", s.withDataset(s.handleCorrelation))
	mux.HandleFunc("GET /api/summary", s.withDataset(s.handleSummary))
	mux.HandleFunc("GET /api/export/readings.csv", s.withDataset(s.handleExportReadings))
	mux.HandleFunc("GET /api/export/recharge-events.csv", s.withDataset(s.handleExportRecharge))
	mux.HandleFunc("GET /api/export/stations.xlsx", s.withDataset(s.handleExportXLSX))
}

type datasetHandler func(w http.ResponseWriter, r *http.Request, ds *domain.Dataset)

type stationHandler func(w http.ResponseWriter, r *http.Request, ds *domain.Dataset, st domain.Station)

// withDataset answers 503 while the dataset is unavailable.
func (s *Server) withDataset(h datasetHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ds, err := s.data.Dataset()
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "dataset unavailable: "+err.Error())
			return
		}
		h(w, r, ds)
	}
}

// withStation resolves the {id} path parameter, answering 404 for unknown ids.
func (s *Server) withStation(h stationHandler) http.HandlerFunc {
	return s.withDataset(func(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) {
		st, err := ds.Station(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h(w, r, ds, st)
	})
}

// stationView is a station without its daily series, for list responses.
type stationView struct {
	domain.Station
	Data    []domain.DailyRecord `json:"data,omitempty"`
	Records int                  `json:"records"`
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) {
	stations := filteredStations(r, ds)
	withData := r.URL.Query().Get("include") == "data"

	out := make([]stationView, len(stations))
	for i, st := range stations {
		out[i] = stationView{Station: st, Records: len(st.Data)}
		if withData {
			out[i].Data = st.Data
		}
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"stations": out, "count": len(out)})
}

func (s *Server) handleStation(w http.ResponseWriter, _ *http.Request, _ *domain.Dataset, st domain.Station) {
	sharedobs.WriteJSON(w, http.StatusOK, st)
}

func (s *Server) handleStatistics(w http.ResponseWriter, _ *http.Request, _ *domain.Dataset, st domain.Station) {
	stats, err := domain.StationStatistics(st)
	if errors.Is(err, domain.ErrEmptySeries) {
		writeError(w, http.StatusUnprocessableEntity, "station has no readings")
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"stationId": st.ID, "statistics": stats})
}

func (s *Server) handleStationRecharge(w http.ResponseWriter, _ *http.Request, _ *domain.Dataset, st domain.Station) {
	events := domain.DetectRechargeEvents(st)
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"stationId": st.ID, "events": nonNil(events), "count": len(events)})
}

func (s *Server) handleSeasonal(w http.ResponseWriter, r *http.Request, ds *domain.Dataset, st domain.Station) {
	year := ds.LoadedAt().Year()
	switch v := r.URL.Query().Get("year"); v {
	case "":
	case "average":
		year = domain.FiveYearAverage
	default:
		y, err := strconv.Atoi(v)
		if err != nil || y < 1900 || y > 9999 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid year %q: use YYYY or average", v))
			return
		}
		year = y
	}
	sharedobs.WriteJSON(w, http.StatusOK, s.seasonal.Aggregate(st, year))
}

func (s *Server) handleRecharge(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) {
	events := domain.DetectAllRechargeEvents(filteredStations(r, ds))
	sharedobs.WriteJSON(w, http.StatusOK, map[string]any{"events": nonNil(events), "count": len(events)})
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lng, errLng := strconv.ParseFloat(q.Get("lng"), 64)
	if errLat != nil || errLng != nil {
		writeError(w, http.StatusBadRequest, "lat and lng query parameters are required numbers")
		return
	}
	if err := domain.ValidateCoordinates(lat, lng); err != nil {
		writeError(w, http.StatusBadRequest, "coordinates out of range: latitude must be within ±90 and longitude within ±180")
		return
	}
	nearest, ok := domain.FindNearest(ds.Stations(), lat, lng)
	if !ok {
		writeError(w, http.StatusNotFound, "no station has coordinates")
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, nearest)
}

func (s *Server) handleCorrelation(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) {
	ids := splitIDs(r.URL.Query().Get("ids"))
	stations := make([]domain.Station, 0, len(ids))
	for _, id := range ids {
		st, err := ds.Station(id)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		stations = append(stations, st)
	}

	corr, err := domain.CorrelateStations(stations)
	if errors.Is(err, domain.ErrStationCount) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.internalError(w, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, corr)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) {
	sharedobs.WriteJSON(w, http.StatusOK, domain.Summarize(filteredStations(r, ds)))
}

func (s *Server) handleExportReadings(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) {
	var buf bytes.Buffer
	if err := export.WriteReadingsCSV(&buf, filteredStations(r, ds)); err != nil {
		s.internalError(w, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", "groundwater_readings.csv", buf.Bytes())
}

func (s *Server) handleExportRecharge(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) {
	var buf bytes.Buffer
	events := domain.DetectAllRechargeEvents(filteredStations(r, ds))
	if err := export.WriteRechargeCSV(&buf, events); err != nil {
		s.internalError(w, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", "recharge_events.csv", buf.Bytes())
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request, ds *domain.Dataset) {
	var buf bytes.Buffer
	if err := export.WriteStationsXLSX(&buf, filteredStations(r, ds)); err != nil {
		s.internalError(w, err)
		return
	}
	writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "groundwater_stations.xlsx", buf.Bytes())
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// filteredStations applies the status, district, state and aquifer query filters.
func filteredStations(r *http.Request, ds *domain.Dataset) []domain.Station {
	q := r.URL.Query()
	f := domain.StationFilter{
		District: q.Get("district"),
		State:    q.Get("state"),
		Aquifer:  domain.AquiferType(q.Get("aquifer")),
	}
	if v := q.Get("status"); v != "" {
		st, ok := domain.ParseStatus(v)
		if !ok {
			// An unknown status matches nothing rather than everything.
			return []domain.Station{}
		}
		f.Status = st
	}
	return domain.FilterStations(ds.Stations(), f)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func splitIDs(v string) []string {
	var out []string
	for _, id := range strings.Split(v, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
