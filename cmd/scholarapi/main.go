// Package main is the entry point for the scholarship API.
//
// The main package stays minimal. Its job is to:
// 1. Read configuration (config.Load: .env, optional YAML file, env vars)
// 2. Create the logger
// 3. Build and start the server
//
// All actual logic lives in internal/server, internal/handler, and below.
//
// CONFIGURATION:
//
//	PORT            listen port (default 5000)
//	DATABASE_URL    SQLite path or postgres:// URL (default data/scholarships.db)
//	JWT_SECRET      token signing secret, at least 16 characters
//	GEMINI_API_KEY  enables real search results; without it every search
//	                returns a demo listing
//	CONFIG          optional YAML file with an "api:" section
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/sakif/scholarship-globe/internal/config"
	"github.com/sakif/scholarship-globe/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	cfg, err := config.Load(os.Getenv("CONFIG"))
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	logger := cfg.NewLogger()

	if cfg.API.JWTSecret == config.DefaultConfig().API.JWTSecret {
		logger.Warn("JWT_SECRET not set, using the development secret")
	}

	// === 3. CREATE AND START THE SERVER ===
	srv, err := server.NewAPI(context.Background(), cfg.API, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
