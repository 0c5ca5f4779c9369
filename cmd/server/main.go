package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/robfig/cron/v3"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"kidoova/internal/config"
	"kidoova/internal/database"
	"kidoova/internal/handlers"
	"kidoova/internal/logger"
	"kidoova/internal/security"
	"kidoova/internal/service"
	"kidoova/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to initialize database", "error", err)
	}
	defer db.Close()

	log.Info("Database connection established", "type", cfg.DatabaseType)

	if err := db.RunMigrations(ctx, func(filename string) {
		log.Info("Applied migration", "file", filename)
	}); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}
	if err := db.SeedReferenceData(ctx); err != nil {
		log.Fatal("Failed to seed reference data", "error", err)
	}

	loc := cfg.Location()

	// Media uploads are optional
	var presigner service.Presigner
	if cfg.MediaEnabled() {
		bucket, err := storage.NewBucket(ctx, storage.Options{
			Endpoint:        cfg.R2Endpoint,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			Bucket:          cfg.R2BucketName,
		})
		if err != nil {
			log.Fatal("Failed to configure media storage", "error", err)
		}
		presigner = bucket
	} else {
		log.Warn("Media storage not configured; uploads are disabled")
	}

	// Identity providers
	httpClient := &http.Client{Timeout: 10 * time.Second}
	var verifiers []service.IdentityVerifier
	if cfg.GoogleClientID != "" {
		verifiers = append(verifiers, security.NewGoogleVerifier(cfg.GoogleClientID, httpClient))
	}
	if cfg.AppleClientID != "" {
		verifiers = append(verifiers, security.NewAppleVerifier(cfg.AppleClientID, httpClient))
	}
	if len(verifiers) == 0 {
		log.Warn("No identity provider configured; sign-in is disabled")
	}

	var googleOAuth *oauth2.Config
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		googleOAuth = &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		}
	}

	// Initialize services
	tokens := security.NewTokenVerifier(cfg.JWTSecret, cfg.TokenTTL)
	authService := service.NewAuthService(db, tokens, log, verifiers...)
	familyService := service.NewFamilyService(db, cfg.InviteTTL, cfg.FrontendURL, log)
	childService := service.NewChildService(db, log)
	rewardService := service.NewRewardService(db, loc, log)
	mediaService := service.NewMediaService(db, presigner, log)

	limiter := security.NewRateLimiter(cfg.AuthRateLimit, time.Minute)
	go limiter.Run(ctx, 5*time.Minute)

	// Initialize handlers
	routes := handlers.Routes{
		Middleware: handlers.NewMiddleware(authService, limiter, log),
		Auth:       handlers.NewAuthHandler(authService, googleOAuth, cfg.OAuthRedirectBaseURL, cfg.FrontendURL, log),
		Family:     handlers.NewFamilyHandler(familyService, log),
		Child: handlers.NewChildHandler(
			childService,
			service.NewProgressService(db, loc, log),
			rewardService,
			service.NewScoringService(db, log),
			mediaService,
			log,
		),
		Catalog:    handlers.NewCatalogHandler(service.NewCatalogService(db, loc, log), rewardService, log),
		Completion: handlers.NewCompletionHandler(service.NewCompletionService(db, loc, log), log),
		Media:      handlers.NewMediaHandler(mediaService, log),
		Practice:   handlers.NewPracticeHandler(service.NewPracticeService(db, log), log),
		DB:         db,
	}

	// Scheduled cleanup of expired family invites
	scheduler := cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := scheduler.AddFunc("@hourly", func() {
		if _, err := familyService.PurgeExpiredInvites(ctx); err != nil {
			log.Error("Failed to purge expired invites", "error", err)
		}
	}); err != nil {
		log.Fatal("Failed to schedule invite cleanup", "error", err)
	}
	scheduler.Start()

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      routes.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", addr, "timezone", loc.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	log.Info("Server shutting down...")

	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", "error", err)
	}
}
