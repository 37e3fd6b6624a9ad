package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env               string
	DataDir           string
	SessionSecret     string
	SessionExpiry     time.Duration
	LoginDelay        time.Duration
	PollInterval      time.Duration
	MaxProofSizeBytes int64
}

func Load() Config {
	cfg := Config{
		Env:               getEnv("APP_ENV", "development"),
		DataDir:           getEnv("DATA_DIR", "./data"),
		SessionSecret:     getEnv("SESSION_SECRET", "dev-insecure-session-secret"),
		SessionExpiry:     getEnvDuration("SESSION_EXPIRY", 12*time.Hour),
		LoginDelay:        getEnvDuration("LOGIN_DELAY", 500*time.Millisecond),
		PollInterval:      getEnvDuration("POLL_INTERVAL", 2*time.Second),
		MaxProofSizeBytes: getEnvInt64("MAX_PROOF_SIZE", 1024*1024),
	}

	if cfg.MaxProofSizeBytes <= 0 {
		cfg.MaxProofSizeBytes = 1024 * 1024
	}

	return cfg
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
