package dashboard

import (
	"context"
	"net/http"

	"github.com/sakif/scholarship-globe/internal/apperror"
	"github.com/sakif/scholarship-globe/internal/session"
)

type contextKey string

const workspaceKey contextKey = "workspace"

// RequireSession resolves the caller's workspace from their session token.
// Requests without a token get 401; sending the user to a login page is the
// sign-in flow's job, not the dashboard's.
func (h *Handler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.FromRequest(r)
		if !sess.HasToken() {
			h.writeError(w, apperror.Unauthorized("sign in to use the dashboard"))
			return
		}

		ws := h.workspaces.Get(sess)
		ctx := context.WithValue(r.Context(), workspaceKey, ws)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// workspaceFrom returns the workspace RequireSession stored on the request.
func workspaceFrom(r *http.Request) *Workspace {
	ws, _ := r.Context().Value(workspaceKey).(*Workspace)
	return ws
}
