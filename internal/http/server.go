package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"moneytracker/internal/i18n"
	"moneytracker/internal/log"
	"moneytracker/internal/middleware/security"
	"moneytracker/internal/middleware/trace"
	"moneytracker/internal/services"
)

// ReadinessCheck reports whether dependencies such as the store are
// reachable.
type ReadinessCheck func(ctx context.Context) error

type Server struct {
	http.Server
	tracker         *services.Tracker
	logger          *log.Logger
	detector        *security.Detector
	tracer          *trace.Middleware
	ready           ReadinessCheck
	metricsHandler  http.Handler
	defaultLanguage string

	shutdownOnce sync.Once
	onShutdown   []func()
}

// Option configures a Server.
type Option func(*Server)

func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithReadiness sets the check behind /readyz.
func WithReadiness(check ReadinessCheck) Option {
	return func(s *Server) { s.ready = check }
}

// WithMetricsHandler mounts h on /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) { s.metricsHandler = h }
}

// WithDefaultLanguage is used when a request names no language.
func WithDefaultLanguage(lang string) Option {
	return func(s *Server) { s.defaultLanguage = lang }
}

// OnShutdown registers fn to run once when the server shuts down.
func OnShutdown(fn func()) Option {
	return func(s *Server) { s.onShutdown = append(s.onShutdown, fn) }
}

// NewServer configures routes, returning a ready-to-run http.Server.
func NewServer(addr string, tracker *services.Tracker, opts ...Option) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		tracker:         tracker,
		logger:          log.Discard(),
		defaultLanguage: "en",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(log.ComponentHTTP)
	s.detector = security.NewDetector(s.logger)
	s.tracer = trace.NewMiddleware(s.logger, s.detector.ExtractClientIP)
	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.tracer.Middleware)
	r.Use(s.detector.Middleware)
	r.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)

	r.Get("/healthz", handleHealth)
	r.Get("/readyz", s.handleReady)
	if s.metricsHandler != nil {
		r.Handle("/metrics", s.metricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/view", s.handleView)
		r.Get("/summary", s.handleSummary)
		r.Get("/charts/monthly", s.handleMonthlyChart)
		r.Get("/charts/categories", s.handleCategoryChart)
		r.Get("/categories", s.handleCategories)

		r.Get("/transactions", s.handleTable)
		r.Post("/transactions", s.handleAdd)
		r.Get("/transactions/{id}", s.handleGet)
		r.Patch("/transactions/{id}", s.handleEdit)
		r.Delete("/transactions/{id}", s.handleDelete)

		r.Post("/page/next", s.handleNextPage)
		r.Post("/page/prev", s.handlePrevPage)

		r.Post("/import", s.handleImport)
		r.Get("/export", s.handleExport)
		r.Post("/seed", s.handleSeed)
		r.Post("/reset", s.handleReset)

		r.Get("/settings", s.handleSettings)
		r.Put("/settings/currency", s.handleSetCurrency)
		r.Put("/settings/theme", s.handleSetTheme)
		r.Post("/settings/theme/toggle", s.handleToggleTheme)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})
	return r
}

// Shutdown gracefully shuts down the server and its registered hooks.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
		for _, fn := range s.onShutdown {
			fn()
		}
	})
	return shutdownErr
}

// translator picks the dictionary from ?lang=, then Accept-Language, then
// the server default.
func (s *Server) translator(r *http.Request) *i18n.Translator {
	return i18n.New(
		r.URL.Query().Get("lang"),
		r.Header.Get("Accept-Language"),
		s.defaultLanguage,
	)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
