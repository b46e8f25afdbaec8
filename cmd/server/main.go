package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"carpool/internal/app"
	"carpool/internal/config"
	"carpool/internal/handler"
	"carpool/internal/logging"
	internalRedis "carpool/internal/redis"
	"carpool/internal/repository"
	"carpool/internal/repository/memory"
	"carpool/internal/repository/postgres"
	"carpool/internal/service"
)

func main() {
	// Load configuration, then let flags override the environment.
	cfg := config.Load()

	flags := pflag.NewFlagSet("server", pflag.ExitOnError)
	flags.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "HTTP listen port")
	flags.StringVar(&cfg.Store.Backend, "store", cfg.Store.Backend, "storage backend: memory or postgres")
	flags.BoolVar(&cfg.SeedDemoData, "seed", cfg.SeedDemoData, "load demo users and trips at startup")
	flags.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level: debug, info, warn or error")
	flags.BoolVar(&cfg.Redis.Enabled, "redis", cfg.Redis.Enabled, "use Redis for sessions, trip cache and idempotency")
	_ = flags.Parse(os.Args[1:])

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}

	os.Exit(serve(cfg, logger))
}

// serve runs the server and returns the process exit code. The logger is
// flushed here because os.Exit skips deferred calls.
func serve(cfg *config.Config, logger *zap.Logger) int {
	code := 0
	if err := run(cfg, logger); err != nil {
		logger.Error("server failed", zap.Error(err))
		code = 1
	}
	_ = logger.Sync()
	return code
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		var err error
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Warn("failed to initialize New Relic", zap.Error(err))
		} else {
			logger.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
			defer nrApp.Shutdown(cfg.Server.ShutdownTimeout)
		}
	}

	var (
		userRepo repository.UserRepository
		tripRepo repository.TripRepository
	)
	switch cfg.Store.Backend {
	case config.StoreMemory:
		userRepo = memory.NewUserRepository()
		tripRepo = memory.NewTripRepository()
		logger.Info("using in-memory store")
	case config.StorePostgres:
		db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		userRepo, tripRepo = postgresRepositories(db)
		logger.Info("connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))
	default:
		return fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		var err error
		redisClient, err = app.NewRedisClient(ctx, cfg.Redis, nrApp)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		logger.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	if cfg.SeedDemoData {
		if err := service.NewSeeder(userRepo, tripRepo).Seed(ctx); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		logger.Info("demo data loaded")
	}

	// Wire dependencies.
	server := wireServer(userRepo, tripRepo, redisClient, nrApp, cfg, logger)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}
	logger.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

func postgresRepositories(db *sql.DB) (repository.UserRepository, repository.TripRepository) {
	return postgres.NewUserRepository(db), postgres.NewTripRepository(db)
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(
	userRepo repository.UserRepository,
	tripRepo repository.TripRepository,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	cfg *config.Config,
	logger *zap.Logger,
) *http.Server {
	// Sessions and the trip cache live in Redis when it is enabled.
	var (
		sessions internalRedis.SessionStoreInterface = memory.NewSessionStore()
		cache    internalRedis.TripCacheInterface
	)
	if redisClient != nil {
		sessions = internalRedis.NewSessionStore(redisClient)
		cache = internalRedis.NewCacheStore(redisClient)
	}

	// Initialize services.
	notificationService := service.NewNotificationService(logger)
	authService := service.NewAuthService(userRepo, tripRepo, sessions, notificationService, service.AuthOptions{
		SessionTTL: cfg.Auth.SessionTTL,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	tripService := service.NewTripService(tripRepo, userRepo, cache, notificationService, logger)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		AuthHandler:   handler.NewAuthHandler(authService),
		UserHandler:   handler.NewUserHandler(authService),
		TripHandler:   handler.NewTripHandler(tripService),
		Authenticator: authService,
		RedisClient:   redisClient,
		NewRelicApp:   nrApp,
		Logger:        logger,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
