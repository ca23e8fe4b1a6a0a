package groups

import (
	"github.com/go-chi/chi/v5"

	"github.com/mityasmirnov/AnyMatch/internal/app"
)

// Registrar ties the groups service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the groups service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the group routes to the router.
func (reg *Registrar) Register(r chi.Router) {
	h := NewHandler(NewService(reg.appCtx))

	r.Route("/api/groups", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Post("/join", h.Join)
		r.Get("/", h.List)
		r.Route("/{groupID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Patch("/filters", h.UpdateFilters)
			r.Get("/matches", h.Matches)
		})
	})
	r.Post("/api/matches/{matchID}/watched", h.MarkWatched)
}
