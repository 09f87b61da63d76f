package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/nanooptics/internal/api"
	"github.com/RMahshie/nanooptics/internal/catalog"
	"github.com/RMahshie/nanooptics/internal/config"
	"github.com/RMahshie/nanooptics/internal/logging"
	"github.com/RMahshie/nanooptics/internal/predictor"
	"github.com/RMahshie/nanooptics/internal/processing"
	"github.com/RMahshie/nanooptics/internal/repository/postgres"
	"github.com/RMahshie/nanooptics/internal/storage"
	"github.com/RMahshie/nanooptics/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Configure zerolog for structured logging
	closeLog, err := logging.Setup(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up logging")
	}
	defer closeLog()

	log.Info().
		Str("environment", cfg.Server.Env).
		Strs("allowed_origins", cfg.Server.AllowedOrigins).
		Str("predictor", cfg.Predictor.URL).
		Msg("Configuration loaded")

	// Database
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	if err := db.PingContext(startupCtx); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := migrations.Up(startupCtx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Object storage
	s3Service, err := storage.NewS3Service(storage.S3Config{
		Bucket:    cfg.AWS.S3Bucket,
		Endpoint:  cfg.AWS.S3Endpoint,
		Region:    cfg.AWS.Region,
		AccessKey: cfg.AWS.AccessKeyID,
		SecretKey: cfg.AWS.SecretAccessKey,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create S3 service")
	}

	// External prediction service
	predictorClient, err := predictor.NewClient(predictor.Config{
		BaseURL: cfg.Predictor.URL,
		Timeout: cfg.Predictor.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create prediction client")
	}
	if err := predictorClient.Health(startupCtx); err != nil {
		log.Warn().Err(err).Msg("Prediction service not reachable, uploads will fail until it is")
	}
	cancelStartup()

	repo := postgres.NewPostgresPredictionRepository(db)
	sampleCatalog := catalog.NewSampleCatalog()
	processingSvc := processing.NewProcessingService(s3Service, repo, predictorClient, sampleCatalog, processing.Options{
		SimulationLatency: cfg.Processing.SimulationLatency,
	})

	// Create Chi router
	router := chi.NewRouter()

	// Middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logging.RequestLogger())
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Create Huma API
	humaConfig := huma.DefaultConfig("NanoOptics API", api.Version)
	humaConfig.DocsPath = "/api/docs"
	humaAPI := humachi.New(router, humaConfig)

	api.RegisterRoutes(humaAPI, api.Services{
		Repo:         repo,
		S3:           s3Service,
		Catalog:      sampleCatalog,
		Predictor:    predictorClient,
		Processing:   processingSvc,
		DefaultModel: cfg.Predictor.Model,
	})

	// Start server
	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("addr", addr).Msg("Starting NanoOptics API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
