package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"congregationhub/config"
	"congregationhub/internal/adapters/auth"
	"congregationhub/internal/adapters/email"
	delivery "congregationhub/internal/delivery/http"
	"congregationhub/internal/delivery/http/controllers"
	"congregationhub/internal/repository/postgres"
	"congregationhub/internal/services"
	"congregationhub/migrations"
)

const serviceTimeout = 10 * time.Second

// @title CongregationHub API
// @version 1.0
// @description Event check-in and congregation management API.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	if err := db.PingContext(ctx); err != nil {
		cancel()
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}
	cancel()

	migCtx, migCancel := context.WithTimeout(context.Background(), time.Minute)
	if err := migrations.Apply(migCtx, db); err != nil {
		migCancel()
		logger.Error("failed to apply migrations", "err", err)
		os.Exit(1)
	}
	migCancel()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	memberRepo := postgres.NewMemberRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	checkInRepo := postgres.NewCheckInRepository(db)

	// Adapters
	jwtProvider := auth.NewJWTProvider(cfg.JWTSecret)
	mailer := email.NewMailer(cfg.Email, logger)

	// Services
	authService := services.NewAuthService(userRepo, roleRepo, memberRepo, jwtProvider, cfg.JWTExpiry)
	eventService := services.NewEventService(eventRepo, serviceTimeout)
	codeGen := services.NewNumericCodeGenerator()
	sessionService := services.NewSessionService(sessionRepo, codeGen, cfg.CodeMaxAttempts, serviceTimeout)
	emailService := services.NewEmailService(mailer)
	checkInService := services.NewCheckInService(sessionRepo, checkInRepo, memberRepo, eventRepo, emailService, logger, serviceTimeout)
	rosterService := services.NewRosterService(eventRepo, sessionRepo, checkInRepo, serviceTimeout)

	// Controllers
	authController := controllers.NewAuthController(logger, authService)
	eventController := controllers.NewEventController(logger, eventService, sessionService)
	checkInController := controllers.NewCheckInController(logger, checkInService, sessionService)
	rosterController := controllers.NewRosterController(logger, rosterService)

	mux := delivery.NewRouter(jwtProvider, authController, eventController, checkInController, rosterController)
	handler := delivery.WithMiddleware(mux, logger, strings.Split(cfg.CORSOrigins, ","))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", "err", err)
	}
	logger.Info("server stopped")
}
