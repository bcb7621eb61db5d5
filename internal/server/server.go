// Package server exposes a loaded project read-only over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"dbloada/internal/project"
	"dbloada/internal/table"
)

// Server serves the tables of one LoadedProject. The project is loaded once
// before the server starts and never changes afterwards.
type Server struct {
	loaded *project.LoadedProject
	tables map[string]*table.Table
	logger *slog.Logger
	router *chi.Mux

	mu     sync.Mutex
	server *http.Server
}

// New creates a Server for loaded.
func New(loaded *project.LoadedProject, logger *slog.Logger) *Server {
	s := &Server{
		loaded: loaded,
		tables: make(map[string]*table.Table, len(loaded.Tables)),
		logger: logger,
		router: chi.NewRouter(),
	}
	for _, t := range loaded.Tables {
		// first declaration wins, matching the listing order
		if _, ok := s.tables[t.Name]; !ok {
			s.tables[t.Name] = t
		}
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/tables", s.handleListTables)
	// {name} also carries the optional .csv suffix, see handleTable
	s.router.Get("/tables/{name}", s.handleTable)
	s.router.NotFound(s.handleNotFound)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start listens on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	s.mu.Lock()
	s.server = srv
	s.mu.Unlock()

	s.logger.Info("serving project", "project", s.loaded.Project.Name, "addr", addr, "tables", len(s.loaded.Tables))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
