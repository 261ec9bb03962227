package handler

// RESPONSE HELPERS:
// Every endpoint of the scholarship API answers JSON, so the encoding and
// the error mapping live here instead of being repeated in each handler:
//
//   writeJSON(w, http.StatusOK, data)
//   writeError(w, err)
//
// ERROR FORMAT:
// Every error response has the same shape:
//   {"error": "not_found", "message": "scholarship not found with id abc123"}
//
// The dashboard's request client reads "message" (or "detail") from any
// non-2xx body and shows it to the user, so the message must be readable
// on its own.

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/scholarship-globe/internal/apperror"
)

// ErrorResponse is the error body returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // apperror.Kind, e.g. "not_found"
	Message string `json:"message"` // shown to the user
}

// MessageResponse is the body of endpoints that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// writeJSON sends a JSON response with the given status code.
//
// Headers and status go out before the body: once Encode writes, later
// header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent, all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError sends err as an ErrorResponse, with the status chosen by
// apperror.Status. Errors that are not *AppError get a generic 500 and are
// logged here; their text might contain SQL, file paths, or upstream API
// responses.
func writeError(w http.ResponseWriter, err error) {
	status, kind, message, ok := apperror.Status(err)
	if !ok {
		slog.Error("request failed", slog.String("error", err.Error()))
	}
	writeJSON(w, status, ErrorResponse{Error: string(kind), Message: message})
}

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

// decodeJSON decodes the request body into v. Malformed JSON and oversized
// bodies are reported as validation errors so writeError answers 400.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.ValidationFailed("body", "Invalid JSON body")
	}
	return nil
}
