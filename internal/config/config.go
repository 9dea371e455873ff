// Package config loads the service configuration from the environment.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port           int
	DatabasePath   string
	LogLevel       string
	LogPretty      bool
	JWTSecret      string
	AdminKey       string
	AllowedOrigins []string

	RefreshCooldown     time.Duration // minimum time between two non-forced refreshes
	FetchTimeout        time.Duration // per provider call
	AutoRefreshSchedule string        // cron spec, empty disables the job
	HistorySchedule     string
	PruneSchedule       string
	SnapshotRetention   int // price snapshots kept by the prune job

	Providers ProviderConfig
}

// ProviderConfig holds the endpoints of every external price source.
type ProviderConfig struct {
	FiatPageURL        string
	CryptoPageURL      string
	GoldPageURL        string
	GoldProfileURL     string
	TelegramChannelURL string
	FiatAPIURL         string
	FiatAPIKey         string
	CoinGeckoURL       string
	CoinGeckoDelay     time.Duration
	CryptoCompareURL   string
	CryptoCompareKey   string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// .env is optional, the environment always wins
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnvAsInt("PORT", 8080),
		DatabasePath:        getEnv("DATABASE_PATH", "database/portfolio.db"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogPretty:           getEnvAsBool("LOG_PRETTY", true),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		AdminKey:            getEnv("ADMIN_SECRET_KEY", ""),
		AllowedOrigins:      getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		RefreshCooldown:     getEnvAsDuration("PRICE_REFRESH_COOLDOWN", 10*time.Minute),
		FetchTimeout:        getEnvAsDuration("PRICE_FETCH_TIMEOUT", 10*time.Second),
		AutoRefreshSchedule: getEnv("PRICE_AUTO_REFRESH", "@every 15m"),
		HistorySchedule:     getEnv("PORTFOLIO_HISTORY_SCHEDULE", "@every 1h"),
		PruneSchedule:       getEnv("SNAPSHOT_PRUNE_SCHEDULE", "@daily"),
		SnapshotRetention:   getEnvAsInt("SNAPSHOT_RETENTION", 2000),
		Providers: ProviderConfig{
			FiatPageURL:        getEnv("FIAT_PAGE_URL", "https://www.bonbast.com/"),
			CryptoPageURL:      getEnv("CRYPTO_PAGE_URL", "https://www.tgju.org/crypto"),
			GoldPageURL:        getEnv("GOLD_PAGE_URL", "https://www.tgju.org/gold-chart"),
			GoldProfileURL:     getEnv("GOLD_PROFILE_URL", "https://www.tgju.org/profile/geram18"),
			TelegramChannelURL: getEnv("TELEGRAM_CHANNEL_URL", "https://t.me/s/tala_currency"),
			FiatAPIURL:         getEnv("FIAT_API_URL", "https://api.navasan.tech/latest/"),
			FiatAPIKey:         getEnv("FIAT_API_KEY", ""),
			CoinGeckoURL:       getEnv("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
			CoinGeckoDelay:     getEnvAsDuration("COINGECKO_DELAY", 1500*time.Millisecond),
			CryptoCompareURL:   getEnv("CRYPTOCOMPARE_URL", "https://min-api.cryptocompare.com"),
			CryptoCompareKey:   getEnv("CRYPTO_API_KEY", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.RefreshCooldown <= 0 {
		return errors.New("PRICE_REFRESH_COOLDOWN must be positive")
	}
	if c.FetchTimeout <= 0 {
		return errors.New("PRICE_FETCH_TIMEOUT must be positive")
	}
	if c.PruneSchedule != "" && c.SnapshotRetention <= 0 {
		return errors.New("SNAPSHOT_RETENTION must be positive when pruning is scheduled")
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
