/*
Package configs loads the application's configuration from environment variables.

An optional .env file in the working directory is read first; real environment
variables always win over it.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"focusroom/internal/app/room"
)

const devJWTSecret = "your_default_insecure_secret_key_change_me"

// AppConfig contains all configuration parameters required for the application to run.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string
	JWTSecret      string

	// Database Settings. Empty in development selects the in-memory user store.
	DatabaseDSN string

	// Room Settings
	RoomDeletionGrace time.Duration
	TimerTickInterval time.Duration
	DefaultSettings   room.Settings
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}

// LoadConfig reads .env (if present) and then parses the environment.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv parses the configuration from the process environment, applying defaults
// and validating every value.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}
	var err error

	// --- General Server Settings ---
	cfg.Environment = getEnv("ENVIRONMENT", "development")

	cfg.Port, err = getInt("PORT", 8080)
	if err != nil {
		return nil, err
	}
	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	cfg.AllowedOrigins = []string{}
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required in %s environment for security", cfg.Environment)
		}
		cfg.JWTSecret = devJWTSecret
	}

	// --- Database Settings ---
	cfg.DatabaseDSN = os.Getenv("DATABASE_URL")
	if cfg.DatabaseDSN == "" && !cfg.IsDevelopment() {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required in %s environment", cfg.Environment)
	}

	// --- Room Settings ---
	cfg.RoomDeletionGrace, err = getDuration("ROOM_DELETION_GRACE", 2*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.TimerTickInterval, err = getDuration("TIMER_TICK_INTERVAL", time.Second)
	if err != nil {
		return nil, err
	}

	defaults := room.DefaultSettings()
	if defaults.FocusDurationSeconds, err = getInt("DEFAULT_FOCUS_SECONDS", defaults.FocusDurationSeconds); err != nil {
		return nil, err
	}
	if defaults.BreakDurationSeconds, err = getInt("DEFAULT_BREAK_SECONDS", defaults.BreakDurationSeconds); err != nil {
		return nil, err
	}
	if defaults.StrictMode, err = getBool("DEFAULT_STRICT_MODE", defaults.StrictMode); err != nil {
		return nil, err
	}
	if defaults.AutoPhaseChange, err = getBool("DEFAULT_AUTO_PHASE_CHANGE", defaults.AutoPhaseChange); err != nil {
		return nil, err
	}
	if err := defaults.Validate(); err != nil {
		return nil, fmt.Errorf("invalid default room settings: %w", err)
	}
	cfg.DefaultSettings = defaults

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	return value, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, value)
	}
	return value, nil
}
