package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// defaultTokenSecret signs device tokens when TOKEN_SECRET is not configured.
// Fine for local development; set TOKEN_SECRET in any shared deployment.
const defaultTokenSecret = "prepdeck-staging-signing-key-2026"

// Config holds application configuration loaded from files and environment variables.
type Config struct {
	Port           string   `mapstructure:"port"`            // HTTP listen port
	DatabaseURL    string   `mapstructure:"-"`               // Postgres connection string; empty selects the local store
	SQLitePath     string   `mapstructure:"sqlite_path"`     // path to the local sqlite database file
	TokenSecret    string   `mapstructure:"-"`               // HMAC key for device tokens
	AllowedOrigins []string `mapstructure:"allowed_origins"` // CORS origins
	LedgerSweepAt  string   `mapstructure:"ledger_sweep_at"` // daily time (HH:MM) for the stale-ledger sweep
}

// Load reads configuration from config files and environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")

	v.SetDefault("port", "8080")
	v.SetDefault("sqlite_path", "data/prepdeck.db")
	v.SetDefault("allowed_origins", []string{"*"})
	v.SetDefault("ledger_sweep_at", "00:05")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("port", "PORT")
	_ = v.BindEnv("database_url", "DATABASE_URL")
	_ = v.BindEnv("sqlite_path", "SQLITE_PATH")
	_ = v.BindEnv("token_secret", "TOKEN_SECRET")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error loading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	cfg.DatabaseURL = v.GetString("database_url")

	cfg.TokenSecret = v.GetString("token_secret")
	if cfg.TokenSecret == "" {
		cfg.TokenSecret = defaultTokenSecret
	}

	return &cfg, nil
}
