package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// HTTP server
	ListenAddr string

	// Database configuration
	DatabaseURL string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated)

	// Redis configuration (oracle price cache); empty disables caching
	RedisAddr string

	// Ledger configuration
	StartingBalance  int64
	DailyClaimAmount int64
	DailyClaimWindow time.Duration

	// Betting limits
	MinBetAmount int64
	MaxBetAmount int64

	// Oracle configuration
	OracleBaseURL string
	OracleTimeout time.Duration
	PriceCacheTTL time.Duration

	// Signal feed configuration
	SignalFeedBaseURL  string
	SignalFetchLimit   int
	SignalMaxAge       time.Duration // signals observed before now-SignalMaxAge are ignored
	MinSignalLiquidity float64
	MinSignalVolume    float64

	// Market generation
	PriceAboveHorizon  time.Duration
	PriceChangeHorizon time.Duration
	PriceAboveMovePct  float64 // threshold above snapshot for price_above questions
	PriceChangePct     float64 // move size asked by price_change questions

	// Background cycles; zero disables the in-process ticker for that job
	GenerationInterval time.Duration
	ResolutionInterval time.Duration
	ResolutionBatch    int

	// Service token required on admin routes
	ServiceToken string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A local .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	config := &Config{
		ListenAddr:  getEnvWithDefault("LISTEN_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		NATSServers: getEnvWithDefault("NATS_SERVERS", "nats://nats:4222"),
		RedisAddr:   os.Getenv("REDIS_ADDR"),

		StartingBalance:  500,
		DailyClaimAmount: 100,
		DailyClaimWindow: 24 * time.Hour,

		MinBetAmount: 10,
		MaxBetAmount: 5000,

		OracleBaseURL: getEnvWithDefault("ORACLE_BASE_URL", "https://api.coingecko.com/api/v3"),
		OracleTimeout: 10 * time.Second,
		PriceCacheTTL: 5 * time.Second,

		SignalFeedBaseURL:  getEnvWithDefault("SIGNAL_FEED_BASE_URL", "https://api.dexscreener.com"),
		SignalFetchLimit:   30,
		SignalMaxAge:       15 * time.Minute,
		MinSignalLiquidity: 50000,
		MinSignalVolume:    100000,

		PriceAboveHorizon:  24 * time.Hour,
		PriceChangeHorizon: 6 * time.Hour,
		PriceAboveMovePct:  10,
		PriceChangePct:     5,

		GenerationInterval: 0,
		ResolutionInterval: 0,
		ResolutionBatch:    100,

		ServiceToken: os.Getenv("SERVICE_TOKEN"),
		Environment:  os.Getenv("ENVIRONMENT"),
	}

	// Override numeric defaults if environment variables are set
	if v := os.Getenv("STARTING_BALANCE"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.StartingBalance = parsed
		}
	}
	if v := os.Getenv("DAILY_CLAIM_AMOUNT"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.DailyClaimAmount = parsed
		}
	}
	if v := os.Getenv("GENERATION_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			config.GenerationInterval = parsed
		}
	}
	if v := os.Getenv("RESOLUTION_INTERVAL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			config.ResolutionInterval = parsed
		}
	}
	if v := os.Getenv("ORACLE_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			config.OracleTimeout = parsed
		}
	}
	if v := os.Getenv("MIN_SIGNAL_LIQUIDITY"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			config.MinSignalLiquidity = parsed
		}
	}
	if v := os.Getenv("MIN_SIGNAL_VOLUME"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			config.MinSignalVolume = parsed
		}
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.ServiceToken == "" {
			return nil, fmt.Errorf("SERVICE_TOKEN is required")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:        "test",
		StartingBalance:    500,
		DailyClaimAmount:   100,
		DailyClaimWindow:   24 * time.Hour,
		MinBetAmount:       10,
		MaxBetAmount:       5000,
		OracleTimeout:      time.Second,
		PriceCacheTTL:      time.Second,
		SignalFetchLimit:   30,
		SignalMaxAge:       15 * time.Minute,
		MinSignalLiquidity: 50000,
		MinSignalVolume:    100000,
		PriceAboveHorizon:  24 * time.Hour,
		PriceChangeHorizon: 6 * time.Hour,
		PriceAboveMovePct:  10,
		PriceChangePct:     5,
		ResolutionBatch:    100,
		ServiceToken:       "test-service-token",
	}
}
