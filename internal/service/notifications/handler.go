package notifications

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	svcErr "github.com/mityasmirnov/AnyMatch/internal/errors"
)

// Handler exposes the notification feed over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /api/notifications.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	var token *string
	if t := r.URL.Query().Get("token"); t != "" {
		token = &t
	}

	items, nextToken, err := h.service.List(r.Context(), userID, token, limit)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	resp := map[string]any{"notifications": items}
	if nextToken != nil {
		resp["next_token"] = *nextToken
	}
	writeJSON(w, resp)
}

// UnreadCount handles GET /api/notifications/unread.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"unread": count})
}

// MarkRead handles POST /api/notifications/{notificationID}/read.
func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	notificationID, err := strconv.ParseUint(chi.URLParam(r, "notificationID"), 10, 64)
	if err != nil || notificationID == 0 {
		svcErr.Write(w, svcErr.InvalidInput("notificationID must be a valid id"))
		return
	}

	if err := h.service.MarkRead(r.Context(), userID, notificationID); err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

// MarkAllRead handles POST /api/notifications/read-all.
func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	if err := h.service.MarkAllRead(r.Context(), userID); err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true})
}

func queryUserID(r *http.Request) (uint64, error) {
	id, err := strconv.ParseUint(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || id == 0 {
		return 0, svcErr.InvalidInput("user_id must be a valid id")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
