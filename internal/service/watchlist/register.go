package watchlist

import (
	"github.com/go-chi/chi/v5"

	"github.com/mityasmirnov/AnyMatch/internal/app"
)

// Registrar ties the watchlist service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the watchlist service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the watchlist routes to the router.
func (reg *Registrar) Register(r chi.Router) {
	h := NewHandler(NewService(reg.appCtx))

	r.Route("/api/watchlist", func(r chi.Router) {
		r.Post("/", h.Add)
		r.Get("/", h.List)
		r.Delete("/{movieID}", h.Remove)
		r.Post("/{movieID}/watched", h.MarkWatched)
	})
}
