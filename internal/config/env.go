package config

import (
	"os"
	"time"
)

// Environment overrides
const (
	EnvAPIKey      = "MOVIEGRIP_API_KEY"
	EnvEndpoint    = "MOVIEGRIP_ENDPOINT"
	EnvTimeout     = "MOVIEGRIP_TIMEOUT"
	EnvMetricsAddr = "MOVIEGRIP_METRICS_ADDR"
)

// GetEnv returns the environment variable value or a default.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDurationEnv returns a duration environment variable or a default.
func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ApplyEnv overlays MOVIEGRIP_* environment variables on cfg
func ApplyEnv(cfg *Config) {
	cfg.API.APIKey = GetEnv(EnvAPIKey, cfg.API.APIKey)
	cfg.API.Endpoint = GetEnv(EnvEndpoint, cfg.API.Endpoint)
	cfg.API.Timeout = Duration(GetDurationEnv(EnvTimeout, cfg.API.Timeout.Std()))
	cfg.Metrics.Addr = GetEnv(EnvMetricsAddr, cfg.Metrics.Addr)
}
