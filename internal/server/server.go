// Пакет server — HTTP-сервер Analysis Module с graceful shutdown.
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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/bigkaa/goartstore/analysis-module/internal/api/middleware"
	"github.com/bigkaa/goartstore/analysis-module/internal/config"
)

// Routes — набор маршрутов, регистрируемых в роутере (handlers.APIHandler).
type Routes interface {
	Register(r chi.Router)
}

// Server — HTTP-сервер Analysis Module.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт HTTP-сервер с маршрутами и middleware.
// Порядок middleware: request id, метрики, логирование запросов, CORS (если AN_CORS_ENABLED).
func New(cfg *config.Config, logger *slog.Logger, routes Routes) *Server {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(cfg, logger, routes),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	return &Server{
		httpServer: srv,
		logger:     logger.With(slog.String("component", "server")),
		cfg:        cfg,
	}
}

// NewRouter собирает chi-роутер с middleware и маршрутами.
func NewRouter(cfg *config.Config, logger *slog.Logger, routes Routes) chi.Router {
	router := chi.NewRouter()

	router.Use(chimw.RequestID)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))
	if cfg.CORSEnabled {
		router.Use(middleware.CORS())
	}

	routes.Register(router)
	return router
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
			slog.Bool("cors", s.cfg.CORSEnabled),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
