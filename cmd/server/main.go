package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/SumitJoshiGIT/distributed-task-runner/internal/artifacts"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/dispatch"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/heartbeat"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/repository"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/config"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/server/metrics"
	"github.com/SumitJoshiGIT/distributed-task-runner/internal/wallet"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/database"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/logging"
	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/redis"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := config.Init(); err != nil {
		panic(fmt.Sprintf("Failed to initialize config: %v", err))
	}

	logConfig := logging.LoggerConfig{
		ProcessName:   logging.ServerProcess,
		IsDevelopment: config.IsDevMode(),
	}
	if err := logging.InitServiceLogger(logConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	logger := logging.GetServiceLogger()
	defer logging.Shutdown()

	logger.Info("Starting task runner backend...",
		"devMode", config.IsDevMode(),
		"port", config.GetServerPort(),
	)

	// Persistent store: ScyllaDB when reachable; in dev mode a failed
	// connection falls back to the in-memory store.
	store, storeMode, closeStore := openStore(logger)
	defer closeStore()

	artifactStore, err := artifacts.NewStore(config.GetArtifactsDir(), logger)
	if err != nil {
		logger.Fatalf("Failed to initialize artifact store: %v", err)
	}

	seedBalance := 0.0
	if config.IsDevMode() {
		seedBalance = config.GetDevInitialWallet()
	}
	walletSvc := wallet.NewService(store, wallet.Config{
		SandboxEnabled: config.IsWalletSandboxEnabled(),
		SeedBalance:    seedBalance,
	}, logger)

	tracker := heartbeat.NewTracker(config.GetWorkerTimeout())

	engine := dispatch.NewEngine(store, walletSvc, tracker, artifactStore, dispatch.Config{
		LeaseTTL:            config.GetLeaseTTL(),
		DefaultMaxBuckets:   config.GetDefaultMaxBuckets(),
		DefaultBucketBytes:  config.GetDefaultBucketBytes(),
		DefaultFeePercent:   config.GetPlatformFeePercent(),
		DisableBudgetChecks: config.BudgetChecksDisabled(),
	}, logger)

	var redisClient *redis.Client
	if config.GetRedisURL() != "" {
		redisClient, err = redis.NewClient(config.GetRedisURL(), logger)
		if err != nil {
			logger.Errorf("Failed to initialize Redis client: %v", err)
			redisClient = nil
		}
	}

	srv := server.NewServer(engine, walletSvc, artifactStore, redisClient, storeMode, logger)
	srv.StartHub()

	metrics.StartSystemMetricsCollection()

	// Periodic sweeps: stale heartbeat entries and expired leases. Lazy
	// detection on the hot path keeps these purely latency improvements.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc("@every 60s", func() { tracker.Sweep() }); err != nil {
		logger.Fatalf("Failed to schedule heartbeat sweep: %v", err)
	}
	if _, err := sweeper.AddFunc("@every 60s", func() { engine.SweepAllExpired(context.Background()) }); err != nil {
		logger.Fatalf("Failed to schedule lease sweep: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", config.GetServerPort()),
		Handler: srv.GetRouter(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Infof("HTTP server listening on port %d (store: %s)", config.GetServerPort(), storeMode)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("Server error received", "error", err)
	case sig := <-shutdown:
		logger.Info("Received shutdown signal", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("Graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}
	srv.Shutdown()
	logger.Info("Server stopped")
}

// openStore connects to ScyllaDB and initialises the schema. In dev mode a
// connection failure degrades to the in-memory store.
func openStore(logger logging.Logger) (*repository.Store, string, func()) {
	dbConfig := database.DefaultConfig(config.GetDatabaseHosts())

	conn, err := database.NewConnection(dbConfig)
	if err != nil {
		if !config.IsDevMode() {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		logger.Warnf("Database unreachable (%v), using in-memory store", err)
		return repository.NewMemoryStore(), "memory", func() {}
	}

	if err := database.InitSchema(conn.Session()); err != nil {
		logger.Fatalf("Failed to initialize schema: %v", err)
	}

	return repository.NewScyllaStore(conn), "scylla", conn.Close
}
