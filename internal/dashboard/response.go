package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/scholarship-globe/internal/apperror"
)

// ErrorResponse is the JSON error body, the same shape the scholarship API
// uses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// AlertResponse carries a message for a blocking browser notification.
type AlertResponse struct {
	Alert string `json:"alert"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError answers with the status apperror.Status picks for err.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status, kind, message, ok := apperror.Status(err)
	if !ok {
		h.logger.Error("request failed", slog.String("error", err.Error()))
	}
	h.writeJSON(w, status, ErrorResponse{Error: string(kind), Message: message})
}

// decodeJSON reads a small JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<16)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperror.ValidationFailed("body", "invalid JSON body")
	}
	return nil
}
