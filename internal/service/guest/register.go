package guest

import (
	"github.com/go-chi/chi/v5"

	"github.com/mityasmirnov/AnyMatch/internal/app"
)

// Registrar ties the guest-session service into the HTTP router.
type Registrar struct {
	appCtx *app.AppContext
}

// NewRegistrar creates a new Registrar for the guest-session service.
func NewRegistrar(appCtx *app.AppContext) *Registrar {
	return &Registrar{appCtx: appCtx}
}

// Register attaches the guest-session routes to the router.
func (reg *Registrar) Register(r chi.Router) {
	h := NewHandler(NewService(reg.appCtx))

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.Create)
		r.Post("/join", h.Join)
		r.Get("/code/{code}", h.Get)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Post("/swipes", h.Swipe)
			r.Get("/matches", h.Matches)
			r.Get("/participants", h.Participants)
		})
	})
}
