// Command globe serves the scholarship globe dashboard and drives the same
// search and saved-list pipelines from a terminal.
//
//	globe serve                  # dashboard on :8080
//	globe login --email a@b.c    # print a session for the commands below
//	globe search Kenya           # search like clicking Kenya on the globe
//	globe saved                  # list saved scholarships
//	globe unsave <id>            # remove one saved scholarship
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/scholarship-globe/internal/apiclient"
	"github.com/sakif/scholarship-globe/internal/config"
	"github.com/sakif/scholarship-globe/internal/session"
)

var (
	// Global flags
	configPath string
	token      string
	name       string

	// Set by PersistentPreRunE
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "globe",
	Short: "Scholarship globe dashboard and CLI",
	Long: `globe renders an interactive world globe. Clicking a country (or typing
a keyword) searches the scholarship API and lists the results, each of which
can be saved to your collection.

The terminal commands use the same session as the dashboard: a bearer token
from --token or GLOBE_TOKEN, and a display name from --name or GLOBE_NAME.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if token == "" {
			token = os.Getenv("GLOBE_TOKEN")
		}
		if name == "" {
			name = os.Getenv("GLOBE_NAME")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "globe.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "bearer token for the scholarship API (default $GLOBE_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&name, "name", "", "display name (default $GLOBE_NAME)")

	rootCmd.AddCommand(serveCmd, loginCmd, searchCmd, savedCmd, unsaveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// cliLogger logs to stderr so command output on stdout stays clean.
func cliLogger() *slog.Logger {
	level, _ := cfg.SlogLevel()
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// newClient builds a request client for the flag/env session.
func newClient(logger *slog.Logger) *apiclient.Client {
	return apiclient.New(cfg.Dashboard.APIBase, session.New(token, name), logger,
		apiclient.WithTimeout(cfg.Dashboard.RequestTimeout),
	)
}
