package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-statcard/internal/config"
)

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath string        // STATCARD_CONFIG: config file name or path
	Timeout    time.Duration // STATCARD_TIMEOUT: export timeout per visual
	OutputDir  string        // STATCARD_OUTPUT_DIR: default output directory
	BaseURL    string        // STATCARD_BASE_URL: base for relative resources
	Watermark  string        // STATCARD_WATERMARK: watermark text
	StoreDir   string        // STATCARD_STORE_DIR: upload directory
	LogLevel   string        // STATCARD_LOG_LEVEL: trace, debug, info, warn, error
	Workers    int           // STATCARD_WORKERS: parallel workers
}

// knownEnvVars lists valid STATCARD_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"STATCARD_CONFIG":     true,
	"STATCARD_TIMEOUT":    true,
	"STATCARD_OUTPUT_DIR": true,
	"STATCARD_BASE_URL":   true,
	"STATCARD_WATERMARK":  true,
	"STATCARD_STORE_DIR":  true,
	"STATCARD_LOG_LEVEL":  true,
	"STATCARD_WORKERS":    true,
	"STATCARD_CONTAINER":  true, // read by the doctor command
}

// loadEnvConfig reads configuration from environment variables.
// Malformed durations and counts are ignored.
func loadEnvConfig() *envConfig {
	cfg := &envConfig{
		ConfigPath: os.Getenv("STATCARD_CONFIG"),
		OutputDir:  os.Getenv("STATCARD_OUTPUT_DIR"),
		BaseURL:    os.Getenv("STATCARD_BASE_URL"),
		Watermark:  os.Getenv("STATCARD_WATERMARK"),
		StoreDir:   os.Getenv("STATCARD_STORE_DIR"),
		LogLevel:   os.Getenv("STATCARD_LOG_LEVEL"),
	}

	if timeout := os.Getenv("STATCARD_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := os.Getenv("STATCARD_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars prints a warning for each unrecognized STATCARD_* variable.
func warnUnknownEnvVars(w io.Writer) {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "STATCARD_") {
			name, _, _ := strings.Cut(env, "=")
			if !knownEnvVars[name] {
				fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
			}
		}
	}
}

// applyEnvConfig fills config values left empty by the config file.
// Precedence: CLI flags > env vars > config file > defaults.
// The timeout is resolved separately by resolveTimeoutWithEnv.
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.BaseURL != "" && cfg.Export.BaseURL == "" {
		cfg.Export.BaseURL = env.BaseURL
	}
	if env.Watermark != "" && cfg.Export.Watermark == "" {
		cfg.Export.Watermark = env.Watermark
	}
	// Setting a store directory enables uploads.
	if env.StoreDir != "" && cfg.Store.Dir == "" {
		cfg.Store.Dir = env.StoreDir
		cfg.Store.Enabled = true
	}
	// DefaultConfig always sets a level, so the variable overrides it.
	if env.LogLevel != "" {
		cfg.Log.Level = env.LogLevel
	}
	if env.Workers > 0 && cfg.Workers == 0 {
		cfg.Workers = env.Workers
	}
}
