// Package server exposes the analysis pipeline as a small JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/dyike/StockPilot/config"
	"github.com/dyike/StockPilot/models"
)

// Backend is what the HTTP layer needs from the application. pkg/app.Runtime satisfies it.
type Backend interface {
	Config() config.Config
	Analyze(ctx context.Context, query, modelID, credential string) *models.AggregateResult
}

type Server struct {
	httpServer *http.Server
}

func NewServer(addr string, backend Backend) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(backend),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
	}
}

func NewRouter(backend Backend) *mux.Router {
	h := &handler{backend: backend}

	r := mux.NewRouter()
	r.Use(requestLogger)
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.HandleFunc("/models", h.listModels).Methods(http.MethodGet)
	r.HandleFunc("/analyze", h.analyze).Methods(http.MethodPost)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Start blocks until the server stops. A graceful Shutdown is not reported as an error.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("starting HTTP server")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Str("request_id", rec.Header().Get("X-Request-ID")).
			Dur("elapsed", time.Since(start)).
			Msg("http request")
	})
}
