package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	// BaseCurrency is the home currency of the exchange. Orders with a
	// leg in this currency get the inverted-rate sanity check.
	BaseCurrency string

	// MaxTxRetries bounds automatic retries on transient storage
	// conflicts (deadlocks, serialization failures).
	MaxTxRetries int

	// RateLimit is the request rate limit in ulule/limiter format,
	// e.g. "100-M" for 100 requests per minute per client IP.
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("BASE_CURRENCY", "IRR")
	viper.SetDefault("MAX_TX_RETRIES", 3)
	viper.SetDefault("RATE_LIMIT", "300-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.BaseCurrency = viper.GetString("BASE_CURRENCY")
	if cfg.BaseCurrency == "" {
		cfg.BaseCurrency = "IRR"
		log.Printf("Warning: BASE_CURRENCY not set. Defaulting to %s\n", cfg.BaseCurrency)
	}

	cfg.MaxTxRetries = viper.GetInt("MAX_TX_RETRIES")
	if cfg.MaxTxRetries < 0 {
		cfg.MaxTxRetries = 0
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	if cfg.RateLimit == "" {
		cfg.RateLimit = "300-M"
	}

	return cfg, nil
}
