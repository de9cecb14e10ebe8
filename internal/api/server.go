// Package api serves the routinr HTTP API on top of the SQLite store.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/sadopc/routinr/internal/store"
)

const apiPrefix = "/api/v1"

type Options struct {
	Logger *log.Logger
	// BcryptCost defaults to bcrypt.DefaultCost. Tests lower it.
	BcryptCost int
	// Registry receives the server metrics. A private registry is created
	// when nil.
	Registry *prometheus.Registry
}

type Server struct {
	store    *store.Store
	log      *log.Logger
	cost     int
	metrics  *metrics
	registry *prometheus.Registry
	router   *mux.Router
}

func New(st *store.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	s := &Server{
		store:    st,
		log:      opts.Logger,
		cost:     opts.BcryptCost,
		metrics:  newMetrics(opts.Registry),
		registry: opts.Registry,
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.observe)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	v1 := r.PathPrefix(apiPrefix).Subrouter()
	v1.HandleFunc("/user/signup", s.handleSignUp).Methods(http.MethodPost)
	v1.HandleFunc("/user/login", s.handleLogin).Methods(http.MethodPost)

	authed := v1.NewRoute().Subrouter()
	authed.Use(s.requireUser)
	authed.HandleFunc("/user/logout", s.handleLogout).Methods(http.MethodPost)

	authed.HandleFunc("/routines", s.handleListRoutines).Methods(http.MethodGet)
	authed.HandleFunc("/routines", s.handleCreateRoutine).Methods(http.MethodPost)
	authed.HandleFunc("/routines/{id}", s.handleUpdateRoutine).Methods(http.MethodPatch)
	authed.HandleFunc("/routines/{id}", s.handleDeleteRoutine).Methods(http.MethodDelete)
	authed.HandleFunc("/routines/{id}/timer", s.handleUpdateRoutineTimer).Methods(http.MethodPatch)

	authed.HandleFunc("/projects", s.handleListProjects).Methods(http.MethodGet)
	authed.HandleFunc("/projects", s.handleCreateProject).Methods(http.MethodPost)
	authed.HandleFunc("/projects/{id}", s.handleUpdateProject).Methods(http.MethodPatch)
	authed.HandleFunc("/projects/{id}", s.handleArchiveProject).Methods(http.MethodDelete)
	authed.HandleFunc("/projects/{id}/start", s.handleStartTracking).Methods(http.MethodPost)
	authed.HandleFunc("/projects/{id}/stop", s.handleStopTracking).Methods(http.MethodPost)
	authed.HandleFunc("/projects/{id}/history", s.handleProjectHistory).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("api shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, "ok", map[string]string{"status": "ok"})
}
