package mw

import (
	"context"
	"net/http"

	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/workspace"
)

const (
	// SessionCookie carries the workspace id for browser clients.
	SessionCookie = "folio_session"
	// SessionHeader carries the workspace id for scripted clients.
	SessionHeader = "X-Folio-Session"
)

type ctxKey struct{}

// SessionID reads the workspace id from the cookie, then the header.
func SessionID(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(SessionHeader)
}

// RequireSession rejects requests without a live workspace and stores
// the workspace in the request context.
func RequireSession(reg *workspace.Registry, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := SessionID(r)
			if id == "" {
				unauthorized(w)
				return
			}
			ws, ok := reg.Get(id)
			if !ok {
				log.Debug("RequireSession: unknown or expired session", logger.String("session", id))
				unauthorized(w)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithWorkspace(r.Context(), ws)))
		})
	}
}

// WithWorkspace returns a context carrying ws.
func WithWorkspace(ctx context.Context, ws *workspace.Workspace) context.Context {
	return context.WithValue(ctx, ctxKey{}, ws)
}

// Workspace returns the workspace stored by RequireSession, or nil.
func Workspace(ctx context.Context) *workspace.Workspace {
	ws, _ := ctx.Value(ctxKey{}).(*workspace.Workspace)
	return ws
}

func unauthorized(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "unauthorized")
}
