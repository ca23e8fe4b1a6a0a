package swipes

import (
	"github.com/go-chi/chi/v5"

	"github.com/mityasmirnov/AnyMatch/internal/app"
	"github.com/mityasmirnov/AnyMatch/internal/service/notifications"
)

// Registrar ties the swipes service into the HTTP router.
type Registrar struct {
	appCtx   *app.AppContext
	notifier *notifications.Service
}

// NewRegistrar creates a new Registrar for the swipes service.
func NewRegistrar(appCtx *app.AppContext, notifier *notifications.Service) *Registrar {
	return &Registrar{appCtx: appCtx, notifier: notifier}
}

// Register attaches the swipe routes to the router.
func (reg *Registrar) Register(r chi.Router) {
	h := NewHandler(NewService(reg.appCtx, reg.notifier))

	r.Route("/api/swipes", func(r chi.Router) {
		r.Post("/", h.Record)
		r.Post("/undo", h.Undo)
		r.Get("/history", h.History)
	})
	r.Route("/api/saved", func(r chi.Router) {
		r.Get("/", h.ListSaved)
		r.Delete("/{movieID}", h.RemoveSaved)
	})
}
