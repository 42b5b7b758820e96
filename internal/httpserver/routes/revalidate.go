package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/folio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/folio/internal/httpserver/handlers"
)

func init() { Register("revalidate", registerRevalidate, InternalNetwork, OpsHost) }

func registerRevalidate(r chi.Router, d deps.Deps) {
	r.Post("/revalidate", handlers.Revalidate(d))
}
