// Package dashboard serves the globe page: the rendered globe, its pointer
// and rotation controls, the hover tooltip, country search and the two
// scholarship lists. State lives server-side in one Workspace per session;
// the browser only forwards input and swaps in rendered fragments.
package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sync"

	"github.com/sakif/scholarship-globe/internal/apperror"
	"github.com/sakif/scholarship-globe/internal/geo"
	"github.com/sakif/scholarship-globe/internal/listview"
	"github.com/sakif/scholarship-globe/internal/selection"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler serves every dashboard route.
type Handler struct {
	workspaces *Workspaces
	pages      map[string]*template.Template
	logger     *slog.Logger

	// pending tracks searches still resolving after their request returned.
	pending sync.WaitGroup
}

// NewHandler parses the page templates. Each page is parsed together with
// base.html, which pulls in the page's "content" block.
func NewHandler(workspaces *Workspaces, logger *slog.Logger) (*Handler, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"dashboard", "saved"} {
		tmpl, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s page: %w", name, err)
		}
		pages[name] = tmpl
	}

	return &Handler{
		workspaces: workspaces,
		pages:      pages,
		logger:     logger,
	}, nil
}

// Wait blocks until every background search has committed or been
// discarded.
func (h *Handler) Wait() {
	h.pending.Wait()
}

func (h *Handler) renderPage(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages[name].ExecuteTemplate(&buf, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// HandlePage serves the dashboard.
//
// HTTP: GET /
func (h *Handler) HandlePage(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)

	var svg, list bytes.Buffer
	if err := ws.Scene.WriteSVG(&svg); err != nil {
		h.writeError(w, err)
		return
	}
	view := ws.Countries.View()
	if err := listview.Render(&list, view); err != nil {
		h.writeError(w, err)
		return
	}

	h.renderPage(w, "dashboard", map[string]any{
		"Title":       "Scholarship Globe",
		"Name":        ws.Session().DisplayName(),
		"Label":       ws.Engine.Status().Label,
		"Globe":       template.HTML(svg.String()),
		"ListVisible": view.Visible(),
		"List":        template.HTML(list.String()),
	})
}

// HandleGlobeSVG serves the current frame of the globe.
//
// HTTP: GET /globe.svg
func (h *Handler) HandleGlobeSVG(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := workspaceFrom(r).Scene.WriteSVG(&buf); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

// PointerRequest is a pointer position on the globe canvas, with the page
// position alongside for placing the tooltip.
type PointerRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	PageX float64 `json:"page_x"`
	PageY float64 `json:"page_y"`
	// ID, when set, names the country under the pointer and skips hit
	// testing.
	ID string `json:"id"`
}

func (p PointerRequest) point() geo.Point {
	return geo.Point{X: p.X, Y: p.Y}
}

// HandlePointerDown starts a drag.
//
// HTTP: POST /globe/pointer/down
func (h *Handler) HandlePointerDown(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	ws := workspaceFrom(r)
	ws.Engine.PointerDown(req.point())
	h.writeJSON(w, http.StatusOK, ws.Engine.Status())
}

// HandlePointerMove drags the globe. Moves outside a drag are accepted and
// ignored.
//
// HTTP: POST /globe/pointer/move
func (h *Handler) HandlePointerMove(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	ws := workspaceFrom(r)
	ws.Engine.PointerMove(req.point())
	h.writeJSON(w, http.StatusOK, ws.Engine.Status())
}

// HandlePointerUp ends a drag.
//
// HTTP: POST /globe/pointer/up
func (h *Handler) HandlePointerUp(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	ws.Engine.PointerUp()
	h.writeJSON(w, http.StatusOK, ws.Engine.Status())
}

// HandleToggleRotation pauses or resumes auto-rotation.
//
// HTTP: POST /globe/rotation/toggle
func (h *Handler) HandleToggleRotation(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	ws.Engine.ToggleAutoRotate()
	h.writeJSON(w, http.StatusOK, ws.Engine.Status())
}

// HandleRotation reports the engine state.
//
// HTTP: GET /globe/rotation
func (h *Handler) HandleRotation(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, workspaceFrom(r).Engine.Status())
}

// HandleHover shows the tooltip for the country under the pointer, or hides
// it when the pointer is over no country.
//
// HTTP: POST /globe/hover
func (h *Handler) HandleHover(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	ws := workspaceFrom(r)
	id, ok := req.ID, req.ID != ""
	if !ok {
		id, ok = ws.Scene.HitTest(req.X, req.Y)
	}
	if !ok {
		h.writeJSON(w, http.StatusOK, ws.Tooltip.Leave())
		return
	}
	h.writeJSON(w, http.StatusOK, ws.Tooltip.Enter(id, req.PageX, req.PageY))
}

// HandleLeave hides the tooltip.
//
// HTTP: POST /globe/leave
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, workspaceFrom(r).Tooltip.Leave())
}

// HandleClick selects the clicked country and starts a search for it.
//
// HTTP: POST /globe/click
func (h *Handler) HandleClick(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	ws := workspaceFrom(r)
	id := req.ID
	if id == "" {
		var ok bool
		if id, ok = ws.Scene.HitTest(req.X, req.Y); !ok {
			h.writeError(w, &apperror.AppError{
				Err:     apperror.ErrNotFound,
				Message: fmt.Sprintf("no country at %.0f,%.0f", req.X, req.Y),
			})
			return
		}
	}

	h.startSearch(w, r, ws, selection.FromClick(id))
}
