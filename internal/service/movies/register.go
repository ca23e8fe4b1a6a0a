package movies

import (
	"github.com/go-chi/chi/v5"

	"github.com/mityasmirnov/AnyMatch/internal/app"
	"github.com/mityasmirnov/AnyMatch/internal/tmdb"
)

// Registrar ties the catalog service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
	client *tmdb.Client
}

// NewRegistrar creates a new Registrar for the catalog service.
func NewRegistrar(appCtx *app.AppContext, client *tmdb.Client) *Registrar {
	return &Registrar{appCtx: appCtx, client: client}
}

// Register attaches the catalog routes to the router.
func (reg *Registrar) Register(r chi.Router) {
	h := NewHandler(NewService(reg.appCtx, reg.client))

	r.Route("/api/movies", func(r chi.Router) {
		r.Get("/discover", h.Discover)
		r.Get("/search", h.Search)
		r.Get("/genres", h.Genres)
		r.Get("/{movieID}", h.Details)
	})
}
