package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/scholarship-globe/internal/apperror"
	"github.com/sakif/scholarship-globe/internal/auth"
	"github.com/sakif/scholarship-globe/internal/model"
	"github.com/sakif/scholarship-globe/internal/service"
)

// ScholarshipHandler serves search and the saved-list endpoints.
type ScholarshipHandler struct {
	scholarships *service.ScholarshipService
	logger       *slog.Logger
}

// NewScholarshipHandler creates a new ScholarshipHandler.
func NewScholarshipHandler(scholarships *service.ScholarshipService, logger *slog.Logger) *ScholarshipHandler {
	return &ScholarshipHandler{
		scholarships: scholarships,
		logger:       logger,
	}
}

// FetchRequest is the body of POST /fetch-scholarships. Country may be a
// country name or any keyword the user typed.
type FetchRequest struct {
	Country string `json:"country"`
}

// HandleFetch returns listings for a country, in finder order.
//
// HTTP: POST /fetch-scholarships
// RESPONSE: [{"name": "...", "provider": "...", "deadline": "...", "url": "..."}]
func (h *ScholarshipHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	var req FetchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	listings, err := h.scholarships.Search(r.Context(), req.Country)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, listings)
}

// HandleSave adds a listing to the caller's saved list.
//
// HTTP: POST /scholarships/save (behind auth.RequireAuth)
// RESPONSE: {"message": "Saved", "id": "..."}
func (h *ScholarshipHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Invalid auth token"))
		return
	}

	var req model.Scholarship
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	rec, err := h.scholarships.Save(r.Context(), userID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Saved", ID: rec.ID})
}

// HandleListSaved returns the caller's saved listings, newest first.
//
// HTTP: GET /scholarships/saved (behind auth.RequireAuth)
func (h *ScholarshipHandler) HandleListSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Invalid auth token"))
		return
	}

	saved, err := h.scholarships.ListSaved(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	listings := make([]model.Scholarship, 0, len(saved))
	for _, s := range saved {
		listings = append(listings, s.Listing())
	}
	writeJSON(w, http.StatusOK, listings)
}

// HandleDeleteSaved removes one listing from the caller's saved list.
//
// HTTP: DELETE /scholarships/saved/{id} (behind auth.RequireAuth)
//
// URL PARAMETERS:
// chi.URLParam reads the {id} segment of the matched route pattern.
func (h *ScholarshipHandler) HandleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, apperror.Unauthorized("Invalid auth token"))
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.scholarships.DeleteSaved(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Deleted"})
}
