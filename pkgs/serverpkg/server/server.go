package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// Server exposes the event service over HTTP.
type Server struct {
	port       string
	httpServer *http.Server

	eventService EventService
	registry     *prometheus.Registry
	metrics      *metrics
}

func New(port string, eventService EventService) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		port:         port,
		eventService: eventService,
		registry:     registry,
		metrics:      newMetrics(registry),
	}
	s.httpServer = &http.Server{
		Addr:              ":" + port,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler builds the router. It is separate from Start so tests can mount it
// on httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/health", s.handleHealth)
	r.Route("/data", func(r chi.Router) {
		r.Post("/ingest", s.handleIngest)
		r.Post("/search", s.handleSearch)
		r.Get("/insights", s.handleInsights)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	return r
}

// Start blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) Start() error {
	log.WithField("caller", "Server.Start").Infof("Listening on :%s", s.port)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
