// Package config loads settings for both binaries: a YAML file with a
// dashboard section and an api section, then environment overrides.
// A .env file in the working directory, when present, is loaded into the
// environment first.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sakif/scholarship-globe/internal/apperror"
	"github.com/sakif/scholarship-globe/internal/geo"
)

// Config is the full configuration.
type Config struct {
	LogLevel  string          `yaml:"log_level"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	API       APIConfig       `yaml:"api"`
}

// DashboardConfig configures cmd/globe.
type DashboardConfig struct {
	Port         int           `yaml:"port"`
	APIBase      string        `yaml:"api_base"`
	GeometryURL  string        `yaml:"geometry_url"`
	Width        float64       `yaml:"width"`
	Height       float64       `yaml:"height"`
	DragFactor   float64       `yaml:"drag_factor"`
	RotateStep   float64       `yaml:"rotate_step"`
	TickInterval time.Duration `yaml:"tick_interval"`
	// RequestTimeout bounds each call to the scholarship API.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// IdleTimeout drops a session's workspace after this long without a
	// request; MaxWorkspaces caps how many exist at once.
	IdleTimeout   time.Duration `yaml:"idle_timeout"`
	MaxWorkspaces int           `yaml:"max_workspaces"`
}

// APIConfig configures cmd/scholarapi.
type APIConfig struct {
	Port        int           `yaml:"port"`
	DatabaseURL string        `yaml:"database_url"`
	JWTSecret   string        `yaml:"jwt_secret"`
	JWTIssuer   string        `yaml:"jwt_issuer"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	GeminiKey   string        `yaml:"gemini_api_key"`
	GeminiModel string        `yaml:"gemini_model"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Dashboard: DashboardConfig{
			Port:           8080,
			APIBase:        "http://127.0.0.1:5000",
			GeometryURL:    geo.DefaultWorldURL,
			Width:          960,
			Height:         600,
			DragFactor:     0.5,
			RotateStep:     0.2,
			TickInterval:   16 * time.Millisecond,
			RequestTimeout: 30 * time.Second,
			IdleTimeout:    5 * time.Minute,
			MaxWorkspaces:  500,
		},
		API: APIConfig{
			Port:        5000,
			DatabaseURL: "data/scholarships.db",
			JWTSecret:   "dev-secret-change-me",
			JWTIssuer:   "scholarship-globe",
			TokenTTL:    24 * time.Hour,
			GeminiModel: "gemini-2.5-flash",
		},
	}
}

// Load reads .env (if any), then the YAML file at path (if any), then
// applies environment overrides and validates. An empty path or a missing
// file means defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	if v := os.Getenv("GLOBE_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return apperror.ValidationFailed("GLOBE_PORT", "must be a number")
		}
		c.Dashboard.Port = port
	}
	if v := os.Getenv("GLOBE_API_BASE"); v != "" {
		c.Dashboard.APIBase = v
	}
	if v := os.Getenv("GLOBE_GEOMETRY_URL"); v != "" {
		c.Dashboard.GeometryURL = v
	}

	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return apperror.ValidationFailed("PORT", "must be a number")
		}
		c.API.Port = port
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.API.DatabaseURL = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.API.JWTSecret = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.API.GeminiKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.API.GeminiModel = v
	}
	return nil
}

// Validate checks the values both binaries depend on.
func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	d := c.Dashboard
	switch {
	case d.Port <= 0 || d.Port > 65535:
		return apperror.ValidationFailed("dashboard.port", "must be between 1 and 65535")
	case d.APIBase == "":
		return apperror.ValidationFailed("dashboard.api_base", "is required")
	case d.Width <= 0 || d.Height <= 0:
		return apperror.ValidationFailed("dashboard.width", "canvas size must be positive")
	case d.TickInterval <= 0:
		return apperror.ValidationFailed("dashboard.tick_interval", "must be positive")
	case d.IdleTimeout < time.Second:
		return apperror.ValidationFailed("dashboard.idle_timeout", "must be at least 1s")
	case d.MaxWorkspaces <= 0:
		return apperror.ValidationFailed("dashboard.max_workspaces", "must be positive")
	}

	a := c.API
	switch {
	case a.Port <= 0 || a.Port > 65535:
		return apperror.ValidationFailed("api.port", "must be between 1 and 65535")
	case a.DatabaseURL == "":
		return apperror.ValidationFailed("api.database_url", "is required")
	case a.JWTSecret == "":
		return apperror.ValidationFailed("api.jwt_secret", "is required")
	case a.TokenTTL <= 0:
		return apperror.ValidationFailed("api.token_ttl", "must be positive")
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, apperror.ValidationFailed("log_level", "must be one of debug, info, warn, error")
	}
}

// NewLogger builds the text logger both binaries use.
func (c *Config) NewLogger() *slog.Logger {
	level, _ := c.SlogLevel()
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
