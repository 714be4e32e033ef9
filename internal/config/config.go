package config

import (
	"os"
	"strings"
	"time"
)

// Config keeps runtime settings for the server.
type Config struct {
	ListenAddr    string
	DatabaseURL   string
	SweepInterval time.Duration
}

// Load reads configuration from environment variables with sane defaults.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:    strings.TrimSpace(os.Getenv("LISTEN_ADDR")),
		DatabaseURL:   strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SweepInterval: parseInterval(strings.TrimSpace(os.Getenv("SWEEP_INTERVAL_MINUTES"))),
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8000"
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "sentinel.db"
	}

	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = time.Minute
	}

	return cfg, nil
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	minutes, err := time.ParseDuration(raw + "m")
	if err != nil || minutes <= 0 {
		return 0
	}
	return minutes
}
