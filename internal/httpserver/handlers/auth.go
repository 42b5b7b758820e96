package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/MrSnakeDoc/folio/internal/apiclient"
	"github.com/MrSnakeDoc/folio/internal/domain"
	"github.com/MrSnakeDoc/folio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/folio/internal/httpserver/mw"
	"github.com/MrSnakeDoc/folio/internal/logger"
	"github.com/MrSnakeDoc/folio/internal/utils"
)

type loginResponse struct {
	Session   string     `json:"session"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Login exchanges credentials for an access token and opens a workspace.
// The token never leaves the server; the client gets the workspace id.
func Login(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var creds apiclient.Credentials
		if err := decodeBody(w, r, &creds); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		creds.Email = strings.TrimSpace(creds.Email)

		var fe domain.FieldErrors
		if creds.Email == "" {
			fe = append(fe, domain.FieldError{Field: "email", Message: "email is required"})
		}
		if creds.Password == "" {
			fe = append(fe, domain.FieldError{Field: "password", Message: "password is required"})
		}
		if len(fe) > 0 {
			writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Message: "validation failed", Errors: fe})
			return
		}

		sess, err := d.Auth.Login(r.Context(), creds)
		if err != nil {
			d.Logger.Warn("login rejected",
				logger.String("remote_ip", utils.ClientIP(r, d.TrustProxy)),
				logger.Error(err))
			writeError(w, d.Logger, err, nil)
			return
		}

		ws := d.Workspaces.Open(sess)
		cookie := &http.Cookie{
			Name:     mw.SessionCookie,
			Value:    ws.ID,
			Path:     "/",
			HttpOnly: true,
			Secure:   d.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		}
		out := loginResponse{Session: ws.ID}
		if !sess.ExpiresAt.IsZero() {
			cookie.Expires = sess.ExpiresAt
			out.ExpiresAt = &sess.ExpiresAt
		}
		http.SetCookie(w, cookie)

		d.Logger.Info("🔑 dashboard session opened", logger.Int("sessions", d.Workspaces.Count()))
		writeJSON(w, http.StatusOK, out)
	}
}

// Logout closes the caller's workspace, if any, and clears the cookie.
func Logout(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if id := mw.SessionID(r); id != "" {
			d.Workspaces.Close(id)
		}
		http.SetCookie(w, &http.Cookie{
			Name:     mw.SessionCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   d.CookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}
