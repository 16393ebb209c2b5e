// Package httpapi exposes the dispatcher over a transport-neutral HTTP
// ingress: platform gateways POST inbound events as JSON and the engine does
// the rest.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/flow"
)

// Dispatcher is the slice of the manager the ingress needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev flow.Event) error
}

// Server routes inbound events to the dispatcher.
type Server struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewServer creates the ingress around a dispatcher.
func NewServer(d Dispatcher, opts ...Option) *Server {
	s := &Server{dispatcher: d, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the chi router: event ingress, health, and metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post("/v1/events", s.handleEvent)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var ev flow.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		http.Error(w, "invalid event body", http.StatusBadRequest)
		return
	}
	if ev.Kind == "" || ev.UserID == "" {
		http.Error(w, "kind and user_id are required", http.StatusBadRequest)
		return
	}

	if err := s.dispatcher.Dispatch(r.Context(), ev); err != nil {
		var corrupt *flow.CorruptStateError
		switch {
		case errors.Is(err, flow.ErrCannotProcess):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case errors.As(err, &corrupt):
			s.logger.Error("corrupt session state", "err", err)
			http.Error(w, "corrupt session state", http.StatusInternalServerError)
		default:
			s.logger.Error("dispatch failed", "err", err)
			http.Error(w, "dispatch failed", http.StatusInternalServerError)
		}
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
