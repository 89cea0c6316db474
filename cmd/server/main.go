package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fieldpilot/portal-server-go/internal/audit"
	"github.com/fieldpilot/portal-server-go/internal/config"
	"github.com/fieldpilot/portal-server-go/internal/database"
	"github.com/fieldpilot/portal-server-go/internal/handler"
	"github.com/fieldpilot/portal-server-go/internal/jobs"
	"github.com/fieldpilot/portal-server-go/internal/mailer"
	"github.com/fieldpilot/portal-server-go/internal/middleware"
	"github.com/fieldpilot/portal-server-go/internal/redis"
	"github.com/fieldpilot/portal-server-go/internal/repository"
	"github.com/fieldpilot/portal-server-go/internal/service"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("ENVIRONMENT") == "production"
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	accountRepo := repository.NewAccountRepository(db.DB)
	linkRepo := repository.NewLinkRepository(db.DB)
	inviteRepo := repository.NewInviteRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)
	auditRepo := repository.NewAuditRepository(db.DB)
	businessRepo := repository.NewBusinessRepository(db.DB)
	notificationRepo := repository.NewNotificationRepository(db.DB)

	var sender mailer.Mailer
	if cfg.MailerSendAPIKey != "" && cfg.MailFromEmail != "" {
		sender = mailer.NewMailerSend(cfg.MailerSendAPIKey, cfg.MailFromName, cfg.MailFromEmail)
	} else {
		log.Warn().Msg("no mail provider configured, using dev mailer")
		sender = mailer.NewDevMailer()
	}

	auditor := audit.NewRecorder(auditRepo)
	notifier := service.NewNotifier(businessRepo, notificationRepo, sender)
	rateLimiter := service.NewRateLimiter(redisClient.Client)

	magicLinkService := service.NewMagicLinkService(
		accountRepo, linkRepo, sessionRepo, businessRepo, inviteRepo,
		auditor, notifier, sender, rateLimiter, cfg.SessionSecret, cfg.PortalBaseURL,
	)
	passwordService := service.NewPasswordService(
		accountRepo, linkRepo, sessionRepo, businessRepo,
		auditor, notifier, rateLimiter, cfg.SessionSecret,
	)
	sessionService := service.NewSessionService(sessionRepo, linkRepo, accountRepo, cfg.SessionSecret)
	accessService := service.NewAccessService(
		accountRepo, linkRepo, inviteRepo, sessionRepo, businessRepo,
		auditor, sender, cfg.PortalBaseURL,
	)

	staffAuth := middleware.NewStaffKeyAuth(cfg.StaffAPIKeyHash)
	ipRateLimit := middleware.NewIPRateLimitMiddleware(
		rateLimiter, config.PortalAPILimit, config.PortalAPIWindow, "portal",
	)
	bodyLimit := middleware.NewBodyLimitMiddleware(0)
	securityHeaders := middleware.NewSecurityHeadersMiddleware(isProduction)

	portalAuthHandler := handler.NewPortalAuthHandler(
		magicLinkService, passwordService, sessionService, accessService, staffAuth,
	)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimit.Handler)
	r.Use(securityHeaders.Handler)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Api-Key"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Route("/portal/api", func(r chi.Router) {
		r.Use(ipRateLimit.Handler)
		r.Mount("/", portalAuthHandler.Routes())
	})

	cleanupJob := jobs.NewCleanupJob(inviteRepo, sessionRepo, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
