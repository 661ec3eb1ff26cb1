package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/groundwater-dashboard/internal/domain"
	"github.com/couchcryptid/groundwater-dashboard/internal/observability"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DatasetProvider exposes the loaded dataset, or the reason it is unavailable.
type DatasetProvider interface {
	sharedobs.ReadinessChecker
	Dataset() (*domain.Dataset, error)
}

// Server exposes health, readiness, metrics and the analytics API.
type Server struct {
	httpServer *http.Server
	data       DatasetProvider
	seasonal   *domain.SeasonalAggregator
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the health routes and the /api routes.
func NewServer(addr string, data DatasetProvider, seasonal *domain.SeasonalAggregator, metrics *observability.Metrics, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      instrument(mux, metrics),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		data:     data,
		seasonal: seasonal,
		metrics:  metrics,
		logger:   logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(data))
	mux.Handle("GET /metrics", promhttp.Handler())

	s.registerAPI(mux)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	sharedobs.WriteJSON(w, status, map[string]string{"error": msg})
}
