// Package http exposes editing sessions over HTTP: JSON endpoints for
// events and frames, a server-sent event stream of diffs and a websocket
// carrying both directions.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/quiver"
	"github.com/aretw0/quiver/internal/logging"
	"github.com/aretw0/quiver/pkg/domain"
	"github.com/aretw0/quiver/pkg/observability"
	"github.com/aretw0/quiver/pkg/session"
)

// Server serves the sessions of a Manager.
type Server struct {
	Sessions *session.Manager

	logger         *slog.Logger
	metrics        *observability.Metrics
	metricsHandler http.Handler
	allowedOrigins []string
	maxTicks       int
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics counts dispatched events and serves /metrics with handler
// (promhttp.Handler() when nil).
func WithMetrics(m *observability.Metrics, handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = m
		s.metricsHandler = handler
	}
}

// WithAllowedOrigins restricts CORS origins. Default allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// NewHandler creates a new HTTP handler for the sessions of mgr.
func NewHandler(mgr *session.Manager, opts ...Option) http.Handler {
	s := &Server{
		Sessions:       mgr,
		logger:         logging.NewNop(),
		allowedOrigins: []string{"*"},
		maxTicks:       1000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s.routes()
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.getHealth)
	r.Get("/info", s.getInfo)
	if s.metrics != nil || s.metricsHandler != nil {
		h := s.metricsHandler
		if h == nil {
			h = promhttp.Handler()
		}
		r.Method(http.MethodGet, "/metrics", h)
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.createSession)
		r.Get("/", s.listSessions)
		r.Route("/{id}", func(r chi.Router) {
			// Streams must not be cut by a request timeout.
			r.Get("/ws", s.websocket)
			r.Get("/stream", s.stream)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Timeout(30 * time.Second))
				r.Delete("/", s.deleteSession)
				r.Get("/frame", s.getFrame)
				r.Post("/events", s.postEvents)
				r.Post("/tick", s.postTick)
				r.Get("/graph", s.getGraph)
				r.Post("/save", s.saveSession)
			})
		})
	})
	return r
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "quiver-http",
		"version": strings.TrimSpace(quiver.Version),
	})
}

// -- Helpers --

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrAutomatonNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownEvent), errors.Is(err, domain.ErrUnknownState), errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "status", status, "err", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

var errBadRequest = errors.New("bad request")
