package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/scholarship-globe/internal/auth"
	"github.com/sakif/scholarship-globe/internal/config"
	"github.com/sakif/scholarship-globe/internal/finder"
	"github.com/sakif/scholarship-globe/internal/handler"
	"github.com/sakif/scholarship-globe/internal/middleware"
	"github.com/sakif/scholarship-globe/internal/repository/sqlstore"
	"github.com/sakif/scholarship-globe/internal/service"
)

// NewAPI builds the scholarship API server.
//
// DEPENDENCY CHAIN:
//
//	sqlstore.DB  → implements UserRepository and ScholarshipRepository
//	AuthService  ← users, TokenService, PasswordService
//	ScholarshipService ← Finder, saved scholarships
//	handlers     ← services
//
// ROUTE STRUCTURE:
//
//	POST   /auth/signup
//	POST   /auth/login
//	POST   /fetch-scholarships
//	GET    /me                        (bearer token)
//	POST   /scholarships/save         (bearer token)
//	GET    /scholarships/saved        (bearer token)
//	DELETE /scholarships/saved/{id}   (bearer token)
//
// The server owns the database connection and closes it on shutdown.
func NewAPI(ctx context.Context, cfg config.APIConfig, logger *slog.Logger) (*Server, error) {
	db, err := sqlstore.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	accounts := service.NewAuthService(db, tokens, auth.NewPasswordService(), logger)
	scholarships := service.NewScholarshipService(newFinder(ctx, cfg, logger), db, logger)

	authHandler := handler.NewAuthHandler(accounts, logger)
	scholarshipHandler := handler.NewScholarshipHandler(scholarships, logger)

	s := newServer("api", cfg.Port, logger)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.CORS)

	s.router.Post("/auth/signup", authHandler.HandleSignup)
	s.router.Post("/auth/login", authHandler.HandleLogin)
	s.router.Post("/fetch-scholarships", scholarshipHandler.HandleFetch)

	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)
		r.Post("/scholarships/save", scholarshipHandler.HandleSave)
		r.Get("/scholarships/saved", scholarshipHandler.HandleListSaved)
		r.Delete("/scholarships/saved/{id}", scholarshipHandler.HandleDeleteSaved)
	})

	s.onShutdown = append(s.onShutdown, func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", slog.String("error", err.Error()))
		}
	})

	logger.Info("api configured",
		slog.String("driver", db.Driver()),
		slog.Bool("gemini", cfg.GeminiKey != ""),
	)
	return s, nil
}

// newFinder picks the scholarship finder: Gemini with a demo fallback when
// a key is configured, the demo finder otherwise.
func newFinder(ctx context.Context, cfg config.APIConfig, logger *slog.Logger) finder.Finder {
	if cfg.GeminiKey == "" {
		logger.Warn("GEMINI_API_KEY not set, serving the demo listing")
		return finder.Demo{}
	}

	g, err := finder.NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel, logger)
	if err != nil {
		logger.Warn("Gemini unavailable, serving the demo listing",
			slog.String("error", err.Error()),
		)
		return finder.Demo{}
	}
	return finder.WithFallback(g, logger)
}
