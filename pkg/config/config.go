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

	// RateLimit is a ulule/limiter formatted rate, e.g. "100-M".
	RateLimit string

	// AllowedOrigins is the comma-separated CORS origin list. "*" allows all.
	AllowedOrigins []string

	// Matcher thresholds. Scores at or above AutoMatchThreshold auto-match,
	// scores between ReviewThreshold and AutoMatchThreshold queue for review,
	// and candidates within AmbiguityWindow of the leader force review.
	AutoMatchThreshold float64
	ReviewThreshold    float64
	AmbiguityWindow    float64

	// Accounts the matcher posts settlement entries against.
	SettlementCashAccount       string
	SettlementReceivableAccount string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("RATE_LIMIT", "300-M")
	viper.SetDefault("ALLOWED_ORIGINS", []string{"*"})
	viper.SetDefault("AUTO_MATCH_THRESHOLD", 0.7)
	viper.SetDefault("REVIEW_THRESHOLD", 0.4)
	viper.SetDefault("AMBIGUITY_WINDOW", 0.05)
	viper.SetDefault("SETTLEMENT_CASH_ACCOUNT", "1000")
	viper.SetDefault("SETTLEMENT_RECEIVABLE_ACCOUNT", "1100")

	// Environment variables override defaults and .env values.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.RateLimit = viper.GetString("RATE_LIMIT")
	cfg.AllowedOrigins = viper.GetStringSlice("ALLOWED_ORIGINS")

	cfg.AutoMatchThreshold = viper.GetFloat64("AUTO_MATCH_THRESHOLD")
	cfg.ReviewThreshold = viper.GetFloat64("REVIEW_THRESHOLD")
	cfg.AmbiguityWindow = viper.GetFloat64("AMBIGUITY_WINDOW")
	if cfg.ReviewThreshold > cfg.AutoMatchThreshold {
		log.Printf("Warning: REVIEW_THRESHOLD (%.2f) exceeds AUTO_MATCH_THRESHOLD (%.2f); every candidate will queue for review.\n",
			cfg.ReviewThreshold, cfg.AutoMatchThreshold)
	}

	cfg.SettlementCashAccount = viper.GetString("SETTLEMENT_CASH_ACCOUNT")
	cfg.SettlementReceivableAccount = viper.GetString("SETTLEMENT_RECEIVABLE_ACCOUNT")

	return cfg, nil
}
