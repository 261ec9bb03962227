package dashboard

import (
	"bytes"
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sakif/scholarship-globe/internal/apperror"
	"github.com/sakif/scholarship-globe/internal/listview"
	"github.com/sakif/scholarship-globe/internal/selection"
)

// Response headers describing a list fragment, so the page knows when to
// stop polling.
const (
	HeaderListKind = "X-List-Kind"
	HeaderListSeq  = "X-List-Seq"
)

// startSearch shows Loading for sel and resolves the search in the
// background. The search outlives the request that started it; it is
// bounded by the API client's timeout instead.
func (h *Handler) startSearch(w http.ResponseWriter, r *http.Request, ws *Workspace, sel selection.Selection) {
	ticket := ws.Countries.Begin(sel.Query)
	view := ws.Countries.View()

	h.logger.Info("search started",
		slog.String("query", sel.Query),
		slog.String("source", sel.Source.String()),
		slog.Uint64("seq", ticket.Seq),
	)

	ctx := context.WithoutCancel(r.Context())
	h.pending.Add(1)
	go func() {
		defer h.pending.Done()
		ws.Countries.Resolve(ctx, ticket)
	}()

	h.writeList(w, http.StatusAccepted, view)
}

func (h *Handler) writeList(w http.ResponseWriter, status int, view listview.View) {
	var buf bytes.Buffer
	if err := listview.Render(&buf, view); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(HeaderListKind, view.Kind.String())
	w.Header().Set(HeaderListSeq, strconv.FormatUint(view.Seq, 10))
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// SearchRequest is the search box. Key is the key that submitted it, empty
// for the search button.
type SearchRequest struct {
	Query string `json:"query"`
	Key   string `json:"key"`
}

// HandleSearch searches for free text.
//
// HTTP: POST /search
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if req.Key != "" && !selection.IsSubmitKey(req.Key) {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	sel, err := selection.FromSearch(req.Query)
	if err != nil {
		h.writeError(w, apperror.ValidationFailed("query", "enter a country or keyword"))
		return
	}

	h.startSearch(w, r, workspaceFrom(r), sel)
}

// HandleList serves the current country list fragment.
//
// HTTP: GET /list
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	h.writeList(w, http.StatusOK, workspaceFrom(r).Countries.View())
}

// SaveRequest names one row of one rendered list.
type SaveRequest struct {
	Seq uint64 `json:"seq"`
	Row int    `json:"row"`
}

// HandleListSave saves one row. A failed save answers 502 with an alert
// message rather than changing the list.
//
// HTTP: POST /list/save
func (h *Handler) HandleListSave(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	ws := workspaceFrom(r)
	err := ws.Countries.Save(r.Context(), req.Seq, req.Row)

	var saveErr *listview.SaveError
	switch {
	case err == nil:
		h.writeList(w, http.StatusOK, ws.Countries.View())
	case errors.As(err, &saveErr):
		h.writeJSON(w, http.StatusBadGateway, AlertResponse{Alert: saveErr.Alert()})
	case errors.Is(err, listview.ErrStaleRow):
		h.writeError(w, apperror.Conflict("list", "results changed, search again"))
	case errors.Is(err, listview.ErrNoSuchRow):
		h.writeError(w, apperror.NotFound("row", strconv.Itoa(req.Row)))
	default:
		h.writeError(w, err)
	}
}

// HandleSavedPage serves the saved-scholarships page. Every visit is a new
// view and loads the collection afresh.
//
// HTTP: GET /saved
func (h *Handler) HandleSavedPage(w http.ResponseWriter, r *http.Request) {
	ws := workspaceFrom(r)
	list := ws.OpenSaved()

	var buf bytes.Buffer
	if err := listview.RenderSaved(&buf, list.View()); err != nil {
		h.writeError(w, err)
		return
	}

	h.renderPage(w, "saved", map[string]any{
		"Title": "Saved Scholarships",
		"Name":  ws.Session().DisplayName(),
		"List":  template.HTML(buf.String()),
	})
}

// HandleSavedList loads (once per view) and serves the saved list fragment.
//
// HTTP: GET /saved/list
func (h *Handler) HandleSavedList(w http.ResponseWriter, r *http.Request) {
	view := workspaceFrom(r).Saved().Load(context.WithoutCancel(r.Context()))

	var buf bytes.Buffer
	if err := listview.RenderSaved(&buf, view); err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set(HeaderListKind, view.Kind.String())
	_, _ = buf.WriteTo(w)
}
