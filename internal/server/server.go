// AngelaMos | 2026
// server.go

package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codeclash-gg/backend/internal/config"
	"github.com/codeclash-gg/backend/internal/health"
	"github.com/codeclash-gg/backend/internal/middleware"
)

type Config struct {
	ServerConfig  config.ServerConfig
	HealthHandler *health.Handler
	Logger        *slog.Logger
}

type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	health     *health.Handler
	logger     *slog.Logger
	cfg        config.ServerConfig
}

func New(cfg Config) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer(cfg.Logger))

	httpServer := &http.Server{
		Addr:              cfg.ServerConfig.Address(),
		Handler:           router,
		ReadTimeout:       cfg.ServerConfig.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.ServerConfig.WriteTimeout,
		IdleTimeout:       cfg.ServerConfig.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(cfg.Logger.Handler(), slog.LevelError),
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		health:     cfg.HealthHandler,
		logger:     cfg.Logger,
		cfg:        cfg.ServerConfig,
	}
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) Start() error {
	s.health.SetReady(true)

	s.logger.Info("server listening", "addr", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil &&
		!errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

// Shutdown flips readiness first so load balancers stop routing new
// traffic, waits drainDelay for in-flight balancer updates, then closes
// the listener.
func (s *Server) Shutdown(ctx context.Context, drainDelay time.Duration) error {
	s.health.SetShutdown(true)
	s.health.SetReady(false)

	s.logger.Info("draining connections", "delay", drainDelay)

	select {
	case <-time.After(drainDelay):
	case <-ctx.Done():
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}
