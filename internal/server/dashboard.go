package server

import (
	"fmt"
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/scholarship-globe/internal/config"
	"github.com/sakif/scholarship-globe/internal/dashboard"
	"github.com/sakif/scholarship-globe/internal/geo"
	"github.com/sakif/scholarship-globe/internal/globe"
	"github.com/sakif/scholarship-globe/internal/middleware"
)

// NewDashboard builds the globe dashboard server. countries is the loaded
// world geometry; an empty slice serves a globe with only the sphere and
// graticule.
//
// ROUTE STRUCTURE (all behind the session middleware):
//
//	GET  /                        → dashboard page
//	GET  /globe.svg               → current globe frame
//	POST /globe/pointer/{down,move,up}
//	POST /globe/rotation/toggle   → pause/resume auto-rotation
//	GET  /globe/rotation          → rotation status
//	POST /globe/hover, /globe/leave → tooltip state
//	POST /globe/click             → hit test, then search the country
//	POST /search                  → search a typed query
//	GET  /list                    → current country list fragment
//	POST /list/save               → save one row
//	GET  /saved, /saved/list      → saved-list page and fragment
func NewDashboard(cfg config.DashboardConfig, countries []geo.CountryFeature, logger *slog.Logger) (*Server, error) {
	scheduler := globe.NewScheduler(cfg.TickInterval, logger)

	workspaces := dashboard.NewWorkspaces(dashboard.Options{
		APIBase:        cfg.APIBase,
		RequestTimeout: cfg.RequestTimeout,
		Width:          cfg.Width,
		Height:         cfg.Height,
		Engine: globe.Config{
			DragFactor: cfg.DragFactor,
			Step:       cfg.RotateStep,
			AutoRotate: true,
		},
		IdleTimeout:   cfg.IdleTimeout,
		MaxWorkspaces: cfg.MaxWorkspaces,
	}, countries, scheduler, logger)

	h, err := dashboard.NewHandler(workspaces, logger)
	if err != nil {
		return nil, fmt.Errorf("creating dashboard handler: %w", err)
	}

	s := newServer("dashboard", cfg.Port, logger)

	// === Global Middleware ===
	// RequestID first so the logger can report it; Recoverer turns a panic
	// into a 500 instead of killing the process.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(logger, "/globe/", "/globe.svg"))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Group(func(r chi.Router) {
		r.Use(h.RequireSession)

		r.Get("/", h.HandlePage)
		r.Get("/globe.svg", h.HandleGlobeSVG)

		r.Route("/globe", func(r chi.Router) {
			r.Post("/pointer/down", h.HandlePointerDown)
			r.Post("/pointer/move", h.HandlePointerMove)
			r.Post("/pointer/up", h.HandlePointerUp)
			r.Post("/rotation/toggle", h.HandleToggleRotation)
			r.Get("/rotation", h.HandleRotation)
			r.Post("/hover", h.HandleHover)
			r.Post("/leave", h.HandleLeave)
			r.Post("/click", h.HandleClick)
		})

		r.Post("/search", h.HandleSearch)
		r.Get("/list", h.HandleList)
		r.Post("/list/save", h.HandleListSave)
		r.Get("/saved", h.HandleSavedPage)
		r.Get("/saved/list", h.HandleSavedList)
	})

	s.background = append(s.background, scheduler.Run, workspaces.Run)
	s.onShutdown = append(s.onShutdown, h.Wait)
	return s, nil
}
