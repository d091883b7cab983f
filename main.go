package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"travel-backend/config"
	"travel-backend/controllers"
	"travel-backend/routes"
	"travel-backend/services"
	"travel-backend/telemetry"
	"travel-backend/utils"
)

func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "travel-backend").Logger()
		gin.SetMode(gin.ReleaseMode)
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env not found or couldn't load it; continuing with environment variables")
	}

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogger(cfg)

	shutdownTracing, err := telemetry.Init(ctx, "travel-backend", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal().Err(err).Msg("telemetry init failed")
	}

	db, err := config.ConnectDatabase(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("database connection established and migrations applied")

	mailer := utils.NewSMTPMailer(utils.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
	})
	if !mailer.Configured() {
		log.Warn().Msg("SMTP_HOST not set; emails will be logged instead of sent")
	}

	var geocoder services.Geocoder
	if cfg.GeocoderEnabled {
		geocoder = services.NewNominatimGeocoder(cfg.GeocoderURL, cfg.GeocoderUserAgent)
	}

	// Initialize services
	otpService := services.NewOTPService(db, mailer)
	accountService := services.NewAccountService(db, otpService)
	tokenService := services.NewTokenService(db, cfg.JWTSigningKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	categoryService := services.NewCategoryService(db)
	destinationService := services.NewDestinationService(db, geocoder)
	rateService := services.NewRateService(db)
	tourService := services.NewTourService(db)

	limiter := routes.DefaultLimiter()
	sweepDone := make(chan struct{})
	go limiter.Run(5*time.Minute, sweepDone)

	router := routes.SetupRouter(routes.Controllers{
		Auth:         controllers.NewAuthController(accountService, tokenService),
		Categories:   controllers.NewCategoryController(categoryService),
		Destinations: controllers.NewDestinationController(destinationService),
		Rates:        controllers.NewRateController(rateService),
		Tours:        controllers.NewTourController(tourService),
	}, routes.Options{
		CORSOrigins: cfg.CORSOriginList(),
		Tokens:      tokenService,
		Users:       accountService,
		Limiter:     limiter,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with timeout
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received, shutting down server...")
	close(sweepDone)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("tracer shutdown failed")
	}
	if err := config.CloseDatabase(db); err != nil {
		log.Error().Err(err).Msg("database close failed")
	}

	log.Info().Msg("server stopped gracefully")
}
