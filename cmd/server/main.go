package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/church-content-api/internal/api"
	"github.com/church-content-api/internal/config"
	"github.com/church-content-api/internal/database"
	"github.com/church-content-api/internal/repository"
	"github.com/church-content-api/internal/service"
	"github.com/church-content-api/internal/storage"
	"github.com/church-content-api/pkg/logger"
	"github.com/rs/zerolog"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting church content API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database; a failed connect is not fatal, the reconnect
	// supervisor keeps retrying while reads degrade to placeholders
	db := database.New(&cfg.Database, log)
	if err := db.Connect(ctx); err != nil {
		log.Warn().Err(err).Msg("No backing store reachable, starting in degraded mode")
	}
	defer db.Close()

	// Initialize image storage
	store, err := newStore(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize image storage")
	}

	// Initialize repositories and services
	repos := repository.New(db)
	services := service.NewServices(repos, store, cfg, log)

	// Bootstrap seed accounts when the store is reachable
	if _, connected := db.State(); connected {
		if err := services.User.EnsureSeedUsers(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to ensure seed users")
		}
	}

	// The supervisor re-runs the seed bootstrap after a recovered outage, so
	// a degraded start still ends up with working admin accounts
	reconnector := database.NewReconnector(db, database.ReconnectPolicy{
		Interval:    cfg.Database.ReconnectInterval,
		MaxAttempts: cfg.Database.ReconnectMaxAttempts,
	}, log)
	reconnector.OnRestore(func(ctx context.Context) {
		if err := services.User.EnsureSeedUsers(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to ensure seed users after reconnect")
		}
	})
	reconnector.Start(ctx)
	defer reconnector.Stop()

	// Start the orphaned-image sweeper
	services.Sweeper.Start(ctx)
	log.Info().Msg("Orphan sweeper started")

	// Initialize router
	router := api.NewRouter(services, db, cfg, log)

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

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Stop background workers before the listener closes
	services.Sweeper.Stop()
	reconnector.Stop()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

// newStore selects the configured image storage backend
func newStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storage.Store, error) {
	if cfg.Storage.Backend == "minio" {
		return storage.NewMinIOStore(ctx, &cfg.Storage.MinIO, log)
	}
	return storage.NewLocalStore(cfg.Storage.LocalDir, log)
}
