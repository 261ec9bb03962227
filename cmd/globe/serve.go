package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/scholarship-globe/internal/geo"
	"github.com/sakif/scholarship-globe/internal/server"
)

// geometryTimeout bounds the one-shot world geometry download at startup.
const geometryTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the globe dashboard",
	Long: `Downloads the world geometry once, then serves the dashboard until
interrupted. If the geometry cannot be loaded the globe still renders its
sphere and graticule, without countries.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := cfg.NewLogger()

	ctx, cancel := context.WithTimeout(cmd.Context(), geometryTimeout)
	countries, err := geo.NewLoader(cfg.Dashboard.GeometryURL, nil, logger).Load(ctx)
	cancel()
	if err != nil {
		logger.Warn("serving the globe without countries", slog.String("error", err.Error()))
		countries = nil
	}

	srv, err := server.NewDashboard(cfg.Dashboard, countries, logger)
	if err != nil {
		return err
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	return srv.Start()
}
