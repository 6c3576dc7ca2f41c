package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	JWTSecret string

	// Redis (distributed release lock)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Ledger and payment behaviour
	PlatformFeePercent int64
	EscrowHoldDuration time.Duration
	ReleaseLockTTL     time.Duration
	ReleaseLockTimeout time.Duration

	// Hold sweeper
	HoldSweepInterval  time.Duration
	HoldSweepBatchSize int

	// External payment processor
	ProcessorAPIKey        string
	ProcessorBaseURL       string
	ProcessorWebhookSecret string

	// Webhook ingress rate limit, e.g. "100-M" (100 requests per minute)
	WebhookRateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("PLATFORM_FEE_PERCENT", 15)
	viper.SetDefault("ESCROW_HOLD_DURATION", "1008h")
	viper.SetDefault("RELEASE_LOCK_TTL", "60s")
	viper.SetDefault("RELEASE_LOCK_TIMEOUT", "10s")
	viper.SetDefault("HOLD_SWEEP_INTERVAL", "5m")
	viper.SetDefault("HOLD_SWEEP_BATCH_SIZE", 100)
	viper.SetDefault("PROCESSOR_API_KEY", "")
	viper.SetDefault("PROCESSOR_BASE_URL", "https://api.processor.example.com")
	viper.SetDefault("PROCESSOR_WEBHOOK_SECRET", "")
	viper.SetDefault("WEBHOOK_RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.RedisAddr = viper.GetString("REDIS_ADDR")
	cfg.RedisPassword = viper.GetString("REDIS_PASSWORD")
	cfg.RedisDB = viper.GetInt("REDIS_DB")

	cfg.PlatformFeePercent = viper.GetInt64("PLATFORM_FEE_PERCENT")
	if cfg.PlatformFeePercent < 0 || cfg.PlatformFeePercent > 100 {
		log.Printf("Warning: Invalid value for PLATFORM_FEE_PERCENT (%d). Defaulting to 15.\n", cfg.PlatformFeePercent)
		cfg.PlatformFeePercent = 15
	}

	cfg.EscrowHoldDuration = parseDurationOr("ESCROW_HOLD_DURATION", 1008*time.Hour)
	cfg.ReleaseLockTTL = parseDurationOr("RELEASE_LOCK_TTL", 60*time.Second)
	cfg.ReleaseLockTimeout = parseDurationOr("RELEASE_LOCK_TIMEOUT", 10*time.Second)
	cfg.HoldSweepInterval = parseDurationOr("HOLD_SWEEP_INTERVAL", 5*time.Minute)

	cfg.HoldSweepBatchSize = viper.GetInt("HOLD_SWEEP_BATCH_SIZE")
	if cfg.HoldSweepBatchSize <= 0 {
		cfg.HoldSweepBatchSize = 100
	}

	cfg.ProcessorAPIKey = viper.GetString("PROCESSOR_API_KEY")
	if cfg.ProcessorAPIKey == "" {
		log.Println("Warning: PROCESSOR_API_KEY not set. Calls to the payment processor will fail.")
	}
	cfg.ProcessorBaseURL = viper.GetString("PROCESSOR_BASE_URL")
	cfg.ProcessorWebhookSecret = viper.GetString("PROCESSOR_WEBHOOK_SECRET")
	if cfg.ProcessorWebhookSecret == "" {
		log.Println("Warning: PROCESSOR_WEBHOOK_SECRET not set. Webhook signatures cannot be verified.")
	}

	cfg.WebhookRateLimit = viper.GetString("WEBHOOK_RATE_LIMIT")

	return cfg, nil
}

func parseDurationOr(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		if raw != "" {
			log.Printf("Warning: Invalid value for %s ('%s'). Defaulting to %s.\n", key, raw, fallback.String())
		}
		return fallback
	}
	return d
}
