package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/folio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/folio/internal/revalidate"
)

type revalidateRequest struct {
	Paths []string `json:"paths"`
}

type revalidateResponse struct {
	OK         bool              `json:"ok"`
	Paths      []string          `json:"paths"`
	Errors     map[string]string `json:"errors,omitempty"`
	DurationMS int64             `json:"duration_ms"`
}

// Revalidate invalidates an explicit path list on every target.
func Revalidate(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req revalidateRequest
		if err := decodeBody(w, r, &req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		paths := revalidate.Normalize(req.Paths)
		if len(paths) == 0 {
			writeMessage(w, http.StatusBadRequest, "paths is required")
			return
		}

		report := d.Dispatcher.Invalidate(r.Context(), paths)
		out := revalidateResponse{
			OK:         report.OK(),
			Paths:      report.Paths,
			DurationMS: report.Duration.Milliseconds(),
		}
		if !report.OK() {
			out.Errors = make(map[string]string, len(report.Errors))
			for name, err := range report.Errors {
				out.Errors[name] = err.Error()
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}
