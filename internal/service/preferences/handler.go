package preferences

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/mityasmirnov/AnyMatch/internal/db"
	svcErr "github.com/mityasmirnov/AnyMatch/internal/errors"
)

// Handler exposes discovery preferences over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /api/preferences.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		svcErr.Write(w, err)
		return
	}

	pref, err := h.service.Get(r.Context(), userID)
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"preferences": pref})
}

// Update handles PUT /api/preferences.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID               uint64  `json:"user_id"`
		FavoriteGenres       []int64 `json:"favorite_genres"`
		DislikedGenres       []int64 `json:"disliked_genres"`
		PreferredContentType string  `json:"preferred_content_type"`
		MinRating            int     `json:"min_rating"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svcErr.Write(w, svcErr.InvalidInput("malformed request body"))
		return
	}

	pref, err := h.service.Update(r.Context(), UpdateRequest{
		UserID:               req.UserID,
		FavoriteGenres:       req.FavoriteGenres,
		DislikedGenres:       req.DislikedGenres,
		PreferredContentType: db.ContentType(req.PreferredContentType),
		MinRating:            req.MinRating,
	})
	if err != nil {
		svcErr.Write(w, err)
		return
	}
	writeJSON(w, map[string]any{"success": true, "preferences": pref})
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
