package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config carries everything the serve and sweep commands need. Values come
// from the environment; a .env file is loaded by the CLI before FromEnv runs.
type Config struct {
	HTTPAddr    string
	DatabaseURL string
	CORSOrigins []string

	HoldTTL                time.Duration
	ExpirySweepInterval    time.Duration
	LifecycleSweepInterval time.Duration

	CleaningBufferDays    int
	CalendarSeedDays      int
	CalendarRetentionDays int
}

func FromEnv() (Config, error) {
	cfg := Config{
		HTTPAddr:    envDefault("HTTP_ADDR", ":8080"),
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CORSOrigins: splitCSV(os.Getenv("CORS_ORIGINS")),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}

	var err error
	if cfg.HoldTTL, err = envDuration("HOLD_TTL", 15*time.Minute); err != nil {
		return cfg, err
	}
	if cfg.ExpirySweepInterval, err = envDuration("EXPIRY_SWEEP_INTERVAL", time.Minute); err != nil {
		return cfg, err
	}
	if cfg.LifecycleSweepInterval, err = envDuration("LIFECYCLE_SWEEP_INTERVAL", time.Hour); err != nil {
		return cfg, err
	}
	if cfg.CleaningBufferDays, err = envInt("CLEANING_BUFFER_DAYS", 1); err != nil {
		return cfg, err
	}
	if cfg.CalendarSeedDays, err = envInt("CALENDAR_SEED_DAYS", 365); err != nil {
		return cfg, err
	}
	if cfg.CalendarRetentionDays, err = envInt("CALENDAR_RETENTION_DAYS", 365); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func envInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
