// Package server exposes a backend.Service over HTTP for remote clients.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/nhle/qtplanner/internal/backend"
)

// Server serves the auth, rest, and realtime endpoints.
type Server struct {
	svc       *backend.Service
	apiKey    string
	logger    *slog.Logger
	heartbeat time.Duration
}

// New creates a Server. An empty apiKey disables the API key check.
func New(svc *backend.Service, apiKey string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		svc:       svc,
		apiKey:    apiKey,
		logger:    logger,
		heartbeat: 15 * time.Second,
	}
}

// Router builds the route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.accessLog)

	r.HandleFunc(backend.PathHealth, s.handleHealth).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(s.requireAPIKey)

	api.HandleFunc(backend.PathSignUp, s.handleSignUp).Methods(http.MethodPost)
	api.HandleFunc(backend.PathToken, s.handleToken).Methods(http.MethodPost)
	api.HandleFunc(backend.PathLogout, s.handleLogout).Methods(http.MethodPost)
	api.HandleFunc(backend.PathUser, s.handleUser).Methods(http.MethodGet)

	api.HandleFunc(backend.PathRest+"{table}", s.handleList).Methods(http.MethodGet)
	api.HandleFunc(backend.PathRest+"{table}", s.handleInsert).Methods(http.MethodPost)
	api.HandleFunc(backend.PathRest+"{table}/{id}", s.handleUpdate).Methods(http.MethodPatch)
	api.HandleFunc(backend.PathRest+"{table}/{id}", s.handleDelete).Methods(http.MethodDelete)

	api.HandleFunc(backend.PathRealtime+"{table}", s.handleRealtime).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, backend.ErrorBody{Kind: "not_found", Message: "no such route"})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", addr, err)
	case <-ctx.Done():
	}

	// Event streams only end when their clients go away.
	s.svc.Hub().Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
