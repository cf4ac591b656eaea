// Package main provides the main entry point for the TrafficDen campaign tracker
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/trafficden/trafficden/app/handlers"
	"github.com/trafficden/trafficden/app/router"
	businessflow "github.com/trafficden/trafficden/business_flow"
	"github.com/trafficden/trafficden/cache"
	"github.com/trafficden/trafficden/config"
	"github.com/trafficden/trafficden/repository"
	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting TrafficDen application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// initializeCacheStore builds the cache backend selected by configuration.
// A disabled cache still returns a store so the flows stay uniform; the
// memory store costs nothing when unused.
func initializeCacheStore(cfg config.CacheConfig) (cache.Store, error) {
	if !cfg.Enabled || cfg.Provider == "memory" {
		log.Printf("Using in-memory cache store (enabled=%t)", cfg.Enabled)
		return cache.NewMemoryStore(), nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	store := cache.NewRedisStore(redis.NewClient(opt), cfg.RedisPrefix, cfg.OpTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return store, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings
// the cache store to detect connectivity issues. The returned cancel function
// stops the monitor.
func startCacheHealthMonitor(parent context.Context, store cache.Store, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := store.Ping(ctx); err != nil {
					log.Printf("Cache healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	// Initialize cache store
	store, err := initializeCacheStore(cfg.Cache)
	if err != nil {
		return nil, err
	}
	stopFuncs = append(stopFuncs, func() { _ = store.Close() })

	cancel := startCacheHealthMonitor(context.Background(), store, cfg.Cache.CleanupInterval)
	stopFuncs = append(stopFuncs, cancel)

	entityCache := cache.NewEntityCache(store, cfg.Cache.DefaultTTL)

	// Initialize repositories
	campaignRepo := repository.NewCampaignRepository(db)
	streamRepo := repository.NewStreamRepository(db)
	filterRepo := repository.NewFilterRepository(db)
	trafficSourceRepo := repository.NewTrafficSourceRepository(db)

	// Initialize flows
	campaignFlow := businessflow.NewCampaignFlow(campaignRepo, trafficSourceRepo, entityCache)
	streamFlow := businessflow.NewStreamFlow(streamRepo, campaignRepo, entityCache)
	filterFlow := businessflow.NewFilterFlow(filterRepo, streamRepo, entityCache)
	trafficSourceFlow := businessflow.NewTrafficSourceFlow(trafficSourceRepo, entityCache)

	// Initialize handlers
	campaignHandler := handlers.NewCampaignHandler(campaignFlow)
	streamHandler := handlers.NewStreamHandler(streamFlow)
	filterHandler := handlers.NewFilterHandler(filterFlow)
	trafficSourceHandler := handlers.NewTrafficSourceHandler(trafficSourceFlow)

	// Initialize router
	appRouter := router.NewFiberRouter(
		campaignHandler,
		streamHandler,
		filterHandler,
		trafficSourceHandler,
		cfg.Metrics.Enabled,
		cfg.Metrics.Path,
	)

	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
