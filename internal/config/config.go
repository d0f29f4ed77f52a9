// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/j-veylop/speed-dashboard/internal/loader"
	"github.com/j-veylop/speed-dashboard/internal/models"
	"github.com/j-veylop/speed-dashboard/internal/parser"
)

// Config holds the application configuration.
type Config struct {
	DataPath        string
	DatabasePath    string
	Source          models.Source
	Timezone        string
	RecoveryPolicy  loader.RecoveryPolicy
	PersistOnLoad   bool
	WatchData       bool
	NotifyOutages   bool
	HTTPAddr        string
	RefreshInterval time.Duration
	LogLevel        string
	LogFile         string
}

// Default values
const (
	defaultRefreshInterval = 5 * time.Minute
	defaultHTTPAddr        = "127.0.0.1:8050"
	appDirName             = "speed-dashboard"
)

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	policy, err := loader.ParseRecoveryPolicy(getEnvString("RECOVERY_POLICY", loader.RecoveryTimestampOnly.String()))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataPath:        expandHome(getEnvString("DATA_PATH", getDefaultDataPath())),
		DatabasePath:    expandHome(getEnvString("DATABASE_PATH", getDefaultDatabasePath())),
		Source:          models.Source(strings.ToLower(getEnvString("DATA_SOURCE", string(models.SourceJSON)))),
		Timezone:        getEnvString("TIMEZONE", ""),
		RecoveryPolicy:  policy,
		PersistOnLoad:   getEnvBool("PERSIST_ON_LOAD", false),
		WatchData:       getEnvBool("WATCH_DATA", true),
		NotifyOutages:   getEnvBool("NOTIFY_OUTAGES", false),
		HTTPAddr:        getEnvString("HTTP_ADDR", defaultHTTPAddr),
		RefreshInterval: getEnvDuration("REFRESH_INTERVAL", defaultRefreshInterval),
		LogLevel:        getEnvString("LOG_LEVEL", "info"),
		LogFile:         expandHome(getEnvString("LOG_FILE", "")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	// Ensure data directory exists so it can be watched
	if err := ensureDir(filepath.Dir(cfg.DataPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataPath) == "" {
		return fmt.Errorf("DATA_PATH must not be empty")
	}
	if _, err := filepath.Match(c.DataPath, ""); err != nil {
		return fmt.Errorf("DATA_PATH is not a valid glob: %w", err)
	}
	if c.Source != models.SourceJSON && c.Source != models.SourceSQL {
		return fmt.Errorf("DATA_SOURCE must be %q or %q, got %q", models.SourceJSON, models.SourceSQL, c.Source)
	}
	if _, err := parser.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	if c.RefreshInterval <= 0 {
		return fmt.Errorf("REFRESH_INTERVAL must be positive")
	}
	return nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appDirName, ".env"))
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// getDefaultDatabasePath returns the default path for the SQLite database.
func getDefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "speed-daemon.db"
	}
	return filepath.Join(home, ".config", appDirName, "speed-daemon.db")
}

// getDefaultDataPath returns the default glob for the speed test JSON files.
func getDefaultDataPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("data", "*.json")
	}
	return filepath.Join(home, ".config", appDirName, "data", "*.json")
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns the default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
