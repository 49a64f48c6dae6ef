// Command api serves the conference API.
//
// @title Conference Central API
// @version 1.0
// @description Conferences, sessions, speakers, registrations and wishlists.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "conferencecentral/docs"

	"conferencecentral/config"
	"conferencecentral/internal/adapters/auth"
	"conferencecentral/internal/adapters/cache"
	"conferencecentral/internal/adapters/email"
	"conferencecentral/internal/adapters/taskqueue"
	deliveryhttp "conferencecentral/internal/delivery/http"
	"conferencecentral/internal/delivery/http/controllers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/repository/postgres"
	"conferencecentral/internal/services"
)

const (
	txBackoff       = 20 * time.Millisecond
	shutdownTimeout = 30 * time.Second
)

func main() {
	logger := config.NewLogger()
	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is empty, tokens are signed with an empty key. Use only in development.")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	pingCtx, cancel := context.WithTimeout(ctx, cfg.ContextTimeout)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	resultCache, err := cache.Open(cfg.CacheDir, cfg.CacheTTL)
	if err != nil {
		return err
	}
	defer resultCache.Close()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Email.Provider,
		FromAddress: cfg.Email.FromAddress,
		FromName:    cfg.Email.FromName,
		SES: email.SESConfig{
			Region:          cfg.Email.AWSRegion,
			AccessKeyID:     cfg.Email.AWSAccessKeyID,
			SecretAccessKey: cfg.Email.AWSSecretAccessKey,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}
	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("load email templates: %w", err)
	}

	queueCfg := taskqueue.DefaultConfig()
	queueCfg.MaxRetries = cfg.TaskMaxRetries
	queue, err := taskqueue.New(queueCfg, logger)
	if err != nil {
		return err
	}

	// Repositories
	conferenceRepo := postgres.NewConferenceRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	speakerRepo := postgres.NewSpeakerRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	tx := postgres.NewTransactor(db, cfg.TxMaxAttempts, txBackoff, logger)

	// Services
	timeout := cfg.ContextTimeout
	profileSvc := services.NewProfileService(profileRepo, tx, timeout)
	conferenceSvc := services.NewConferenceService(conferenceRepo, profileRepo, tx, queue, logger, timeout)
	registrationSvc := services.NewRegistrationService(conferenceRepo, profileRepo, tx, timeout)
	announcementSvc := services.NewAnnouncementService(conferenceRepo, resultCache, logger, timeout)
	speakerSvc := services.NewSpeakerService(speakerRepo, timeout)
	sessionSvc := services.NewSessionService(conferenceRepo, sessionRepo, speakerRepo, profileRepo, queue, logger, timeout)
	wishlistSvc := services.NewWishlistService(conferenceRepo, sessionRepo, profileRepo, tx, logger, timeout)
	featuredSvc := services.NewFeaturedSpeakerService(conferenceRepo, sessionRepo, speakerRepo, resultCache, logger, timeout)
	emailSvc := services.NewEmailService(mailer, renderer, logger)

	services.RegisterTasks(queue, featuredSvc, emailSvc, logger)

	router := deliveryhttp.NewRouter(deliveryhttp.Controllers{
		Profile:    controllers.NewProfileController(logger, profileSvc),
		Conference: controllers.NewConferenceController(logger, conferenceSvc, registrationSvc, announcementSvc),
		Session:    controllers.NewSessionController(logger, sessionSvc, featuredSvc),
		Speaker:    controllers.NewSpeakerController(logger, speakerSvc),
		Wishlist:   controllers.NewWishlistController(logger, wishlistSvc),
	}, auth.NewJWTVerifier(cfg.JWTSecret), logger)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, router))
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	queueDone := make(chan error, 1)
	go func() {
		queueDone <- queue.Run(ctx)
	}()
	select {
	case <-queue.Running():
	case err := <-queueDone:
		return fmt.Errorf("task queue: %w", err)
	case <-ctx.Done():
		return nil
	}

	go services.RunAnnouncements(ctx, announcementSvc, cfg.AnnouncementInterval, logger)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	if err := queue.Close(); err != nil {
		logger.Error("task queue shutdown", "error", err)
	}
	return nil
}
