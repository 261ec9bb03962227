// Package server wires handlers, middleware, and routes into the two HTTP
// servers: the globe dashboard (NewDashboard) and the scholarship API
// (NewAPI).
//
// COMPOSITION ROOT:
// Every dependency is created in one place per server, so handlers and
// services never construct their own collaborators:
//
//	NewAPI:       sqlstore.DB → services → handlers → routes
//	NewDashboard: Scheduler → Workspaces → dashboard.Handler → routes
//
// LIFECYCLE:
// A Server runs its HTTP listener plus any background loops (the rotation
// scheduler) in one errgroup. When the context is cancelled, or any member
// fails, in-flight requests get 30 seconds to finish and then the
// shutdown hooks run (waiting for background searches, closing the DB).
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long in-flight requests may run after a
// shutdown signal.
const ShutdownTimeout = 30 * time.Second

// Server is an HTTP server with the goroutines and resources it owns.
type Server struct {
	name   string
	router *chi.Mux
	port   int
	logger *slog.Logger

	background []func(ctx context.Context) error
	onShutdown []func()
}

func newServer(name string, port int, logger *slog.Logger) *Server {
	return &Server{
		name:   name,
		router: chi.NewRouter(),
		port:   port,
		logger: logger,
	}
}

// Handler returns the router, for tests that drive the server through
// httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close runs the shutdown hooks without starting the server.
func (s *Server) Close() {
	for i := len(s.onShutdown) - 1; i >= 0; i-- {
		s.onShutdown[i]()
	}
	s.onShutdown = nil
}

// Start runs the server until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled or a member of the group fails, then
// shuts down gracefully. A clean shutdown returns nil.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting",
			slog.String("server", s.name),
			slog.Int("port", s.port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.port)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server: %w", s.name, err)
		}
		return nil
	})

	for _, run := range s.background {
		g.Go(func() error {
			return run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down", slog.String("server", s.name))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully", slog.String("server", s.name))
		return nil
	})

	return g.Wait()
}
