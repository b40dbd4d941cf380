package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/chanpio/honbob/internal/api"
	"github.com/chanpio/honbob/internal/config"
	"github.com/chanpio/honbob/internal/database"
	"github.com/chanpio/honbob/internal/repository"
	"github.com/chanpio/honbob/internal/service"
	"github.com/chanpio/honbob/internal/session"
	"github.com/chanpio/honbob/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting honbob server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "./migrations"
	}
	if err := db.RunMigrations(migrationsPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize session cache
	redisClient := session.NewRedisClient(cfg.Redis)
	if err := session.Ping(context.Background(), redisClient); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	sessions := session.NewRedisStore(redisClient)

	// Initialize repositories
	repos, err := repository.New(db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize repositories")
	}
	defer repos.Records.Close()

	// Initialize services
	services := service.NewServices(repos, sessions, cfg, log)
	defer services.Roster.Stop()

	// Start the weekly reset checker
	go services.Reset.Start(context.Background())
	log.Info().Msg("Weekly reset checker started")

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Stop the reset checker
	services.Reset.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}
