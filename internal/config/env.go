package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvPort     = "PORT"
	EnvAddr     = "QRBADGE_ADDR"
	EnvConfig   = "QRBADGE_CONFIG"
	EnvLogLevel = "QRBADGE_LOG_LEVEL"
	EnvWorkers  = "QRBADGE_WORKERS"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
func ApplyEnvironment(cfg *Config) {
	if port := os.Getenv(EnvPort); port != "" {
		cfg.Server.Addr = ":" + port
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Batch.Workers = n
		}
	}
}
