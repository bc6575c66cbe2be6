// Package server wires the water tracker together: it opens the store, builds
// services and handlers, mounts them on a chi router and runs the HTTP server
// until it is told to stop.
//
// Routes:
//
//	GET  /                     welcome text
//	GET  /health               database liveness
//	POST /register             create an account
//	POST /login                check credentials, return the user id
//	POST /forgot_password      reset a password by phone number
//	POST /get_water_intake     read one day's record
//	POST /update_water_intake  overwrite one day's record
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/water-tracker/internal/auth"
	"github.com/sakif/water-tracker/internal/config"
	"github.com/sakif/water-tracker/internal/handler"
	"github.com/sakif/water-tracker/internal/middleware"
	sqliteRepo "github.com/sakif/water-tracker/internal/repository/sqlite"
	"github.com/sakif/water-tracker/internal/service"
)

// Server owns the router and the database handle. The database is closed
// when Serve returns.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens (and migrates) the database and registers every route.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	passwords, err := auth.NewPasswordService(cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("configuring password hashing: %w", err)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(passwords)

	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Serve calls it on the way out.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes(passwords *auth.PasswordService) {
	// Order matters: the request ID must exist before Logger reads it, and
	// Recoverer sits inside Logger so a panic is still logged as a 500.
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	accounts := service.NewAccountService(s.db, passwords, s.logger)
	intakes := service.NewIntakeService(s.db, s.logger)

	home := handler.NewHomeHandler(s.db, s.logger)
	accountHandler := handler.NewAccountHandler(accounts, s.logger)
	intakeHandler := handler.NewIntakeHandler(intakes, s.logger)

	s.router.Get("/", home.HandleWelcome)
	s.router.Get("/health", home.HandleHealth)

	s.router.Post("/register", accountHandler.HandleRegister)
	s.router.Post("/login", accountHandler.HandleLogin)
	s.router.Post("/forgot_password", accountHandler.HandleForgotPassword)

	s.router.Post("/get_water_intake", intakeHandler.HandleGet)
	s.router.Post("/update_water_intake", intakeHandler.HandleUpdate)
}

// Start runs the server until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.Serve(ctx)
}

// Serve listens on the configured address until ctx is cancelled, then drains
// in-flight requests for up to ShutdownTimeout and closes the database.
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		if err := s.db.Close(); err != nil {
			s.logger.Error("closing database", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         s.config.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
