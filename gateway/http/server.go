// Package http exposes the dashboard surface: system status, sensor
// snapshots, recent events, composition requests, and a websocket feed of
// everything the tracker derives. It is a pure client of the pipeline
// components; nothing here is required for the pipeline's correctness.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/c360/semhome/catalog"
	"github.com/c360/semhome/compose"
	"github.com/c360/semhome/health"
	"github.com/c360/semhome/metric"
	"github.com/c360/semhome/observe"
	"github.com/c360/semhome/service"
	"github.com/c360/semhome/tracker"
)

// Server hosts the REST and websocket surface.
type Server struct {
	catalog   *catalog.Catalog
	builder   *observe.Builder
	tracker   *tracker.Tracker
	advisor   *compose.Advisor
	collector *service.Collector
	monitor   *health.Monitor
	registry  *metric.MetricsRegistry

	hub     *Hub
	limiter *rate.Limiter
	logger  *slog.Logger
	started time.Time

	httpServer *http.Server
}

// ServerConfig wires the server's collaborators.
type ServerConfig struct {
	Addr      string
	Catalog   *catalog.Catalog
	Builder   *observe.Builder
	Tracker   *tracker.Tracker
	Advisor   *compose.Advisor
	Collector *service.Collector
	Monitor   *health.Monitor
	Registry  *metric.MetricsRegistry

	// CompositionRPS / CompositionBurst throttle the composition endpoint.
	// Zero RPS disables the limiter.
	CompositionRPS   float64
	CompositionBurst int

	Logger *slog.Logger
}

// NewServer builds the server and its routes.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var limiter *rate.Limiter
	if cfg.CompositionRPS > 0 {
		burst := cfg.CompositionBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.CompositionRPS), burst)
	}

	s := &Server{
		catalog:   cfg.Catalog,
		builder:   cfg.Builder,
		tracker:   cfg.Tracker,
		advisor:   cfg.Advisor,
		collector: cfg.Collector,
		monitor:   cfg.Monitor,
		registry:  cfg.Registry,
		hub:       NewHub(logger),
		limiter:   limiter,
		logger:    logger,
		started:   time.Now(),
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Hub returns the websocket hub; register it as a tracker subscriber to
// feed /ws/events.
func (s *Server) Hub() *Hub { return s.hub }

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/sensors", s.handleSensors)
	mux.HandleFunc("GET /api/sensors/{id}", s.handleSensor)
	mux.HandleFunc("GET /api/events/recent", s.handleRecentEvents)
	mux.HandleFunc("GET /api/compositions", s.handleCompositionHistory)
	mux.HandleFunc("POST /api/compositions", s.handleCompose)
	mux.HandleFunc("GET /ws/events", s.hub.ServeWS)

	if s.registry != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(
			s.registry.PrometheusRegistry(), promhttp.HandlerOpts{}))
	}

	return mux
}

// Start serves HTTP until the context is canceled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http gateway listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.hub.Close()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
