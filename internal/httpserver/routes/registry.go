package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/folio/internal/httpserver/deps"
	"github.com/MrSnakeDoc/folio/internal/httpserver/mw"
)

// Registrar mounts one group of routes.
type Registrar func(r chi.Router, d deps.Deps)

// Guard builds a middleware from the server dependencies, so route files
// can ask for a restriction before the dependencies exist.
type Guard func(d deps.Deps) func(http.Handler) http.Handler

type group struct {
	name   string
	reg    Registrar
	guards []Guard
}

var groups []group

// Register adds a named route group. Guards wrap every route of the group,
// outermost first.
func Register(name string, reg Registrar, guards ...Guard) {
	groups = append(groups, group{name: name, reg: reg, guards: guards})
}

// InternalNetwork limits a group to the configured CIDRs.
func InternalNetwork(d deps.Deps) func(http.Handler) http.Handler {
	return mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
}

// OpsHost limits a group to the configured ops host names.
func OpsHost(d deps.Deps) func(http.Handler) http.Handler {
	return mw.EnforceHost(d.AllowedHosts, d.Logger)
}

// RegisterAll mounts every group and returns their names in mount order.
// Called once from server.New().
func RegisterAll(r chi.Router, d deps.Deps) []string {
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		sub := r
		if len(g.guards) > 0 {
			mws := make([]func(http.Handler) http.Handler, len(g.guards))
			for i, guard := range g.guards {
				mws[i] = guard(d)
			}
			sub = r.With(mws...)
		}
		g.reg(sub, d)
		names = append(names, g.name)
	}
	return names
}
