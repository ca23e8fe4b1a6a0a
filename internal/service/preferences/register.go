package preferences

import (
	"github.com/go-chi/chi/v5"

	"github.com/mityasmirnov/AnyMatch/internal/app"
)

// Registrar ties the preferences service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the preferences service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the preference routes to the router.
func (reg *Registrar) Register(r chi.Router) {
	h := NewHandler(NewService(reg.appCtx))

	r.Route("/api/preferences", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
	})
}
