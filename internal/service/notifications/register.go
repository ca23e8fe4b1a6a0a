package notifications

import (
	"github.com/go-chi/chi/v5"
)

// Registrar ties the notification feed into the HTTP router. The write path
// (Push) is not exposed; only services produce notifications.
type Registrar struct {
	service *Service
}

// NewRegistrar creates a new Registrar around an existing service instance,
// shared with the producers wired in cmd/server.
func NewRegistrar(service *Service) *Registrar {
	return &Registrar{service: service}
}

// Register attaches the notification routes to the router.
func (reg *Registrar) Register(r chi.Router) {
	h := NewHandler(reg.service)

	r.Route("/api/notifications", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/unread", h.UnreadCount)
		r.Post("/read-all", h.MarkAllRead)
		r.Post("/{notificationID}/read", h.MarkRead)
	})
}
