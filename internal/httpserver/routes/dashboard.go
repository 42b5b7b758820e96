package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/folio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/folio/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/folio/internal/httpserver/mw"
	"github.com/MrSnakeDoc/folio/internal/revalidate"
)

func init() { Register("dashboard", registerDashboard) }

func registerDashboard(r chi.Router, d deps.Deps) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSession(d.Workspaces, d.Logger))

		for _, h := range handlers.Dashboard(d) {
			// Static listing paths win over {id} in chi's tree.
			r.Get(revalidate.ListingPath(h.Resource), h.Listing)
			r.Post(revalidate.FormPath(h.Resource), h.Create)
			r.Get(revalidate.FormPath(h.Resource)+"/{id}", h.Edit)
			r.Patch(revalidate.FormPath(h.Resource)+"/{id}", h.Update)
			r.Delete(revalidate.FormPath(h.Resource)+"/{id}", h.Delete)
		}
		r.Post(revalidate.ResumeUploadPath, handlers.ResumeUpload(d))
	})
}
