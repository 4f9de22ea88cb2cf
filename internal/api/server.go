// Package api serves the leaderboards over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-metrics/internal/metrics"
)

// Config holds server configuration
type Config struct {
	Port              int
	AllowedOrigins    []string
	ReadTimeout       time.Duration
	IncludePostseason bool // default when the query flag is absent
	Logger            *logrus.Logger
	Leaderboards      Leaderboards
}

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	logger   *logrus.Logger
	handlers *Handlers
	port     int
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   cfg.Logger,
		handlers: NewHandlers(cfg.Leaderboards, cfg.IncludePostseason, cfg.Logger),
		port:     cfg.Port,
	}

	s.setupMiddleware(cfg.AllowedOrigins)
	s.setupRoutes()

	readTimeout := cfg.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 15 * time.Second
	}
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Route("/api", func(r chi.Router) {
		r.Route("/leaderboards", func(r chi.Router) {
			r.Get("/strength-of-schedule/{season}", s.handlers.HandleStrengthOfSchedule)
			r.Get("/luck/{season}", s.handlers.HandleLuck)
		})
		r.Get("/metrics/{season}", s.handlers.HandleMetrics)
		r.Get("/percentile", s.handlers.HandlePercentile)
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.WithField("port", s.port).Info("Starting API server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests and counts them per route
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.RecordAPIRequest(route, strconv.Itoa(ww.Status()))

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  middleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}
