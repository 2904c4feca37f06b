// Package server exposes the planner over HTTP.
//
// A job is one document/template pair with its own convergence driver. The
// API follows the measurement loop: create a job, post measurements, request
// a plan, read the committed plan back.
package server

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jdalgard/pageplan/pkg/archive"
	"github.com/jdalgard/pageplan/pkg/driver"
	"github.com/jdalgard/pageplan/pkg/observability"
	"github.com/jdalgard/pageplan/pkg/observability/prom"
	"github.com/jdalgard/pageplan/pkg/reroute"
)

// Config configures the HTTP server.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Driver is applied to every job's convergence driver.
	Driver driver.Config

	// RedisAddr, when set, backs each job's reroute cache with Redis
	// instead of per-job memory stores.
	RedisAddr string

	// Metrics exposes Prometheus metrics on /metrics.
	Metrics bool
}

// SetDefaults fills unset config values.
func (c *Config) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
	c.Driver.SetDefaults()
}

// Server is the pageplan HTTP API.
type Server struct {
	cfg     Config
	logger  *log.Logger
	jobs    *jobStore
	archive archive.Archive
	router  chi.Router
	metrics http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithArchive persists every committed plan to the given archive.
func WithArchive(a archive.Archive) Option {
	return func(s *Server) { s.archive = a }
}

// New builds a server and mounts its routes.
func New(cfg Config, opts ...Option) *Server {
	cfg.SetDefaults()

	s := &Server{
		cfg:    cfg,
		logger: log.NewWithOptions(io.Discard, log.Options{Level: log.InfoLevel}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.jobs = newJobStore(s.newStore, cfg.Driver, s.logger)

	if cfg.Metrics {
		reg := prometheus.NewRegistry()
		collector := prom.New(reg, "pageplan")
		observability.SetPlannerHooks(collector)
		observability.SetCacheHooks(collector)
		observability.SetDriverHooks(collector)
		s.metrics = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	s.router = s.routes()
	return s
}

// newStore builds the reroute backend for a job.
func (s *Server) newStore(ctx context.Context) (reroute.Store, error) {
	if s.cfg.RedisAddr == "" {
		return reroute.NewMemoryStore(), nil
	}
	return reroute.NewRedisStore(ctx, reroute.RedisConfig{Addr: s.cfg.RedisAddr})
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/jobs", s.handleCreateJob)
		r.Route("/jobs/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetJob)
			r.Post("/measurements", s.handleMeasurements)
			r.Post("/plan", s.handlePlan)
			r.Get("/plan", s.handleGetPlan)
		})
		if s.archive != nil {
			r.Get("/plans", s.handleListArchive)
			r.Get("/plans/{id}", s.handleGetArchive)
		}
	})

	return r
}

// Handler returns the mounted router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe runs the server until ctx is canceled, then drains.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.jobs.closeAll()
	return nil
}
