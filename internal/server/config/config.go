package config

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/SumitJoshiGIT/distributed-task-runner/pkg/env"
)

type Config struct {
	devMode bool

	serverPort int

	// ScyllaDB connection settings
	databaseHosts []string

	// Optional Redis connection (event stream + rate limiter)
	redisURL string

	// Artifacts directory for uploaded code archives and data files
	artifactsDir string

	// Dispatch settings
	workerTimeout       time.Duration
	leaseTTL            time.Duration
	defaultMaxBuckets   int
	defaultBucketBytes  int64
	platformFeePercent  float64
	disableBudgetChecks bool

	// Wallet settings
	walletSandboxEnabled bool
	devInitialWallet     float64

	// Worker endpoint rate limit per session per minute (0 disables)
	workerRateLimit int
}

var cfg Config

func Init() error {
	// A missing .env file is fine in production; env vars take over.
	_ = godotenv.Load()

	cfg = Config{
		devMode:              env.GetEnvBool("DEV_MODE", false),
		serverPort:           env.GetEnvInt("SERVER_PORT", 9010),
		databaseHosts:        []string{env.GetEnvString("DATABASE_HOST", "localhost:9042")},
		redisURL:             env.GetEnvString("REDIS_URL", ""),
		artifactsDir:         env.GetEnvString("ARTIFACTS_DIR", "data/artifacts"),
		workerTimeout:        env.GetEnvDuration("WORKER_TIMEOUT", 20*time.Minute),
		leaseTTL:             env.GetEnvDuration("LEASE_TTL", 20*time.Minute),
		defaultMaxBuckets:    env.GetEnvInt("DEFAULT_MAX_BUCKETS", 10),
		defaultBucketBytes:   env.GetEnvInt64("DEFAULT_BUCKET_BYTES", 1<<20),
		platformFeePercent:   env.GetEnvFloat("PLATFORM_FEE_PERCENT", 10),
		disableBudgetChecks:  env.GetEnvBool("DISABLE_BUDGET_CHECKS", false),
		walletSandboxEnabled: env.GetEnvBool("WALLET_SANDBOX_ENABLED", false),
		devInitialWallet:     env.GetEnvFloat("DEV_INITIAL_WALLET", 100),
		workerRateLimit:      env.GetEnvInt("WORKER_RATE_LIMIT", 0),
	}

	if !cfg.devMode {
		gin.SetMode(gin.ReleaseMode)
	}
	return nil
}

func IsDevMode() bool {
	return cfg.devMode
}

func GetServerPort() int {
	return cfg.serverPort
}

func GetDatabaseHosts() []string {
	return cfg.databaseHosts
}

func GetRedisURL() string {
	return cfg.redisURL
}

func GetArtifactsDir() string {
	return cfg.artifactsDir
}

func GetWorkerTimeout() time.Duration {
	return cfg.workerTimeout
}

func GetLeaseTTL() time.Duration {
	return cfg.leaseTTL
}

func GetDefaultMaxBuckets() int {
	return cfg.defaultMaxBuckets
}

func GetDefaultBucketBytes() int64 {
	return cfg.defaultBucketBytes
}

func GetPlatformFeePercent() float64 {
	return cfg.platformFeePercent
}

func BudgetChecksDisabled() bool {
	return cfg.disableBudgetChecks
}

func IsWalletSandboxEnabled() bool {
	return cfg.walletSandboxEnabled
}

func GetDevInitialWallet() float64 {
	return cfg.devInitialWallet
}

func GetWorkerRateLimit() int {
	return cfg.workerRateLimit
}
